package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/flatblog/internal/render"
)

func (a *app) renderCmd() *Command {
	flags := flag.NewFlagSet("render", flag.ContinueOnError)
	flags.Bool("index", false, "Render the index page; the argument is the search pattern")

	return &Command{
		Flags: flags,
		Usage: "render <name>",
		Short: "Print a post as an HTML page",
		Exec: func(_ context.Context, o *IO, args []string) error {
			index, _ := flags.GetBool("index")
			if index {
				return a.execRenderIndex(o, args)
			}

			return a.execRender(o, args)
		},
	}
}

func (a *app) execRender(o *IO, args []string) error {
	if len(args) == 0 {
		return errNameRequired
	}

	p, ok := a.store.Load(args[0])
	if !ok {
		return notFoundError(args[0])
	}

	return a.render.Post(o.Out(), p)
}

func (a *app) execRenderIndex(o *IO, args []string) error {
	if len(args) > 1 {
		return errTooManyArgs
	}

	page := render.IndexPage{}
	if len(args) == 1 {
		page.Query = args[0]
	}

	posts, err := a.store.SearchPosts(page.Query)
	if err != nil {
		return err
	}

	page.Posts = posts

	return a.render.Index(o.Out(), page)
}
