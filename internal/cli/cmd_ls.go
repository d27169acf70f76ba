package cli

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"
)

var errTooManyArgs = errors.New("too many arguments")

func (a *app) lsCmd() *Command {
	return &Command{
		Flags:   flag.NewFlagSet("ls", flag.ContinueOnError),
		Usage:   "ls [pattern]",
		Aliases: []string{"search"},
		Short:   "List posts, newest name first",
		Long: `List posts whose name contains pattern, one per line:

  <filename>  <title> by <author>

Pattern may contain letters, digits, spaces and "-_.". Posts with a hidden
marker in their name are not listed.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return a.execLs(o, args)
		},
	}
}

func (a *app) execLs(o *IO, args []string) error {
	if len(args) > 1 {
		return errTooManyArgs
	}

	pattern := ""
	if len(args) == 1 {
		pattern = args[0]
	}

	posts, err := a.store.SearchPosts(pattern)
	if err != nil {
		return err
	}

	for _, p := range posts {
		o.Printf("%s  %s by %s\n", p.Filename(), p.Title, p.Author)
	}

	return nil
}
