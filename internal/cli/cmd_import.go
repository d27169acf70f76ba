package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/flatblog/internal/post"
)

var errFilesRequired = errors.New("at least one markdown file is required")

func (a *app) importCmd() *Command {
	flags := flag.NewFlagSet("import", flag.ContinueOnError)
	flags.Bool("dry-run", false, "Validate files without saving")

	return &Command{
		Flags: flags,
		Usage: "import <file.md>...",
		Short: "Save markdown files as posts",
		Long: `Save markdown files as posts.

Each file may start with YAML (---), TOML (+++) or JSON front matter with
title, date, author and slug. A missing date is today, a missing author is
$USER and a missing slug is derived from the title. A file that fails is
reported as a warning and the rest are still imported.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			dryRun, _ := flags.GetBool("dry-run")

			return a.execImport(o, args, dryRun)
		},
	}
}

func (a *app) execImport(o *IO, args []string, dryRun bool) error {
	if len(args) == 0 {
		return errFilesRequired
	}

	for _, arg := range args {
		path := arg
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.cfg.EffectiveCwd, path)
		}

		p, err := a.importFile(path, dryRun)
		if err != nil {
			o.Warn("skipped "+arg, err.Error())

			continue
		}

		if dryRun {
			o.Println("ok", p.Filename())
		} else {
			o.Println("imported", arg, "->", p.Filename())
		}
	}

	return nil
}

func (a *app) importFile(path string, dryRun bool) (post.Post, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-supplied on purpose
	if err != nil {
		return post.Post{}, fmt.Errorf("open: %w", err)
	}

	d, parseErr := post.ParseMarkdown(f)

	closeErr := f.Close()
	if parseErr != nil || closeErr != nil {
		return post.Post{}, errors.Join(parseErr, closeErr)
	}

	d = d.WithDefaults(a.now(), a.defaultAuthor())

	err = d.Validate()
	if err != nil {
		return post.Post{}, err
	}

	if dryRun {
		return d.Post(), nil
	}

	return a.store.Write(d.Name, d.Title, d.Date, d.Author, d.Content)
}
