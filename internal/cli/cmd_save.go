package cli

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/flatblog/internal/post"
	"github.com/calvinalkan/flatblog/internal/render"
)

func (a *app) saveCmd() *Command {
	flags := flag.NewFlagSet("save", flag.ContinueOnError)
	flags.StringP("name", "n", "", "Post name (default: <date>-<slug of title>)")
	flags.StringP("title", "t", "", "Post title")
	flags.StringP("date", "d", "", "Post date as YYYY-MM-DD (default: today)")
	flags.StringP("author", "a", "", "Post author (default: $USER)")
	flags.StringP("content", "m", "", "Post body (default: read from stdin)")

	return &Command{
		Flags: flags,
		Usage: "save --title <title> [flags]",
		Short: "Write a post",
		Long: `Write a post to the posts directory, replacing any post of the same name.

The body comes from --content, or from stdin when --content is not given.
Missing fields are asked for interactively when a terminal is attached.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return a.execSave(o, flags, args)
		},
	}
}

func (a *app) execSave(o *IO, flags *flag.FlagSet, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %v", errTooManyArgs, args)
	}

	d := post.Draft{}
	d.Name, _ = flags.GetString("name")
	d.Title, _ = flags.GetString("title")
	d.Date, _ = flags.GetString("date")
	d.Author, _ = flags.GetString("author")
	d.Content, _ = flags.GetString("content")

	if !flags.Changed("content") && a.in != nil {
		body, err := io.ReadAll(a.in)
		if err != nil {
			return fmt.Errorf("reading content from stdin: %w", err)
		}

		d.Content = string(body)
	}

	err := a.promptMissing(&d)
	if err != nil {
		return err
	}

	d = d.WithDefaults(a.now(), a.defaultAuthor())

	validateErr := d.Validate()
	if validateErr != nil {
		return fmt.Errorf("%s: %w", render.MsgSaveError, validateErr)
	}

	p, err := a.store.Write(d.Name, d.Title, d.Date, d.Author, d.Content)
	if err != nil {
		a.log.Warn("save post", "name", d.Name, "kind", post.Kind(err), "err", err)

		return fmt.Errorf("%s: %s", render.MsgSaveError, d.Name)
	}

	o.Println("saved", p.Filename())

	return nil
}

func (a *app) promptMissing(d *post.Draft) error {
	if a.prompter == nil {
		return nil
	}

	fields := []struct {
		label string
		dst   *string
		def   func() string
	}{
		{label: "Title", dst: &d.Title, def: func() string { return "" }},
		{label: "Author", dst: &d.Author, def: a.defaultAuthor},
		{label: "Content", dst: &d.Content, def: func() string { return "" }},
	}

	for _, f := range fields {
		if *f.dst != "" {
			continue
		}

		answer, err := a.prompter.Prompt(f.label, f.def())
		if err != nil {
			return fmt.Errorf("prompt %s: %w", f.label, err)
		}

		*f.dst = answer
	}

	return nil
}

func (a *app) defaultAuthor() string {
	if user := a.env["USER"]; user != "" {
		return user
	}

	return post.DefaultAuthor
}
