package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/flatblog/internal/render"
)

var errNameRequired = errors.New("post name is required")

func (a *app) showCmd() *Command {
	return &Command{
		Flags: flag.NewFlagSet("show", flag.ContinueOnError),
		Usage: "show <name>",
		Short: "Print a post",
		Long:  "Print a post's header fields and body. The .post extension is optional.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return a.execShow(o, args)
		},
	}
}

func (a *app) execShow(o *IO, args []string) error {
	if len(args) == 0 {
		return errNameRequired
	}

	p, ok := a.store.Load(args[0])
	if !ok {
		return notFoundError(args[0])
	}

	o.Println("name=" + p.Name)
	o.Println("title=" + p.Title)
	o.Println("date=" + p.Date)
	o.Println("author=" + p.Author)
	o.Println("")
	o.Printf("%s", p.Content)

	if p.Content[len(p.Content)-1] != '\n' {
		o.Println()
	}

	return nil
}

func notFoundError(name string) error {
	return fmt.Errorf("%s: %s", render.MsgNotFound, name)
}
