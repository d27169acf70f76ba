// Package cli implements the flatblog command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/flatblog/internal/config"
	"github.com/calvinalkan/flatblog/internal/fs"
	"github.com/calvinalkan/flatblog/internal/logging"
	"github.com/calvinalkan/flatblog/internal/post"
	"github.com/calvinalkan/flatblog/internal/render"
)

// Option customizes [Run].
type Option func(*runOptions)

type runOptions struct {
	prompter Prompter
	now      func() time.Time
	fs       fs.FS
}

// WithPrompter asks p for fields missing from "save".
func WithPrompter(p Prompter) Option {
	return func(o *runOptions) { o.prompter = p }
}

// WithClock overrides the clock used for default post dates.
func WithClock(now func() time.Time) Option {
	return func(o *runOptions) { o.now = now }
}

// WithFS overrides the filesystem the post store uses.
func WithFS(fsys fs.FS) Option {
	return func(o *runOptions) { o.fs = fsys }
}

// app is everything a command needs, built once per invocation.
type app struct {
	cfg      config.Config
	store    *post.Store
	render   *render.Renderer
	log      *slog.Logger
	in       io.Reader
	env      map[string]string
	prompter Prompter
	now      func() time.Time
}

// Run is the main entry point. Returns exit code.
//
// A signal on sigCh cancels the command context; serve shuts down on it.
// sigCh may be nil.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal, opts ...Option) int {
	ro := runOptions{now: time.Now, fs: fs.NewReal()}
	for _, opt := range opts {
		opt(&ro)
	}

	globalFlags := newGlobalFlagSet()

	if len(args) > 0 {
		args = args[1:]
	}

	err := globalFlags.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(out, globalFlags)

			return 0
		}

		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut, globalFlags)

		return 1
	}

	rest := globalFlags.Args()
	if len(rest) == 0 {
		printUsage(out, globalFlags)

		return 0
	}

	workDir, _ := globalFlags.GetString("cwd")
	configPath, _ := globalFlags.GetString("config")
	postsDir, _ := globalFlags.GetString("posts-dir")

	if globalFlags.Changed("posts-dir") && postsDir == "" {
		fprintln(errOut, "error:", config.ErrPostsDirEmpty)
		fprintln(errOut)
		printUsage(errOut, globalFlags)

		return 1
	}

	cfg, err := config.Load(config.Input{
		WorkDirOverride:  workDir,
		ConfigPath:       configPath,
		PostsDirOverride: postsDir,
		Env:              env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	a, err := newApp(cfg, in, errOut, env, ro)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	commands := a.commands()

	name := rest[0]

	var cmd *Command

	for _, c := range commands {
		if c.Matches(name) {
			cmd = c

			break
		}
	}

	if cmd == nil {
		fprintln(errOut, "error: unknown command:", name)
		fprintln(errOut)
		printUsage(errOut, globalFlags)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	o := NewIO(out, errOut)

	code := cmd.Run(ctx, o, rest[1:])
	if code != 0 {
		return code
	}

	return o.Finish()
}

func newApp(cfg config.Config, in io.Reader, errOut io.Writer, env map[string]string, ro runOptions) (*app, error) {
	logger, err := logging.New(errOut, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, err
	}

	store, err := post.NewStore(ro.fs, cfg.PostsDirAbs,
		post.WithHidden(cfg.Hidden...),
		post.WithLogger(logger.With("component", "store")),
	)
	if err != nil {
		return nil, err
	}

	renderer, err := render.New(render.Options{SiteTitle: cfg.SiteTitle, Markdown: cfg.Markdown})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		store:    store,
		render:   renderer,
		log:      logger,
		in:       in,
		env:      env,
		prompter: ro.prompter,
		now:      ro.now,
	}, nil
}

func (a *app) commands() []*Command {
	return []*Command{
		a.showCmd(),
		a.lsCmd(),
		a.saveCmd(),
		a.importCmd(),
		a.renderCmd(),
		a.serveCmd(),
		a.printConfigCmd(),
	}
}

func newGlobalFlagSet() *flag.FlagSet {
	flags := flag.NewFlagSet("flatblog", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.SetInterspersed(false)
	flags.StringP("cwd", "C", "", "Run as if started in `dir`")
	flags.StringP("config", "c", "", "Use specified config `file`")
	flags.String("posts-dir", "", "Override posts directory")

	return flags
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, globalFlags *flag.FlagSet) {
	fprintln(w, "flatblog - flat-file blog")
	fprintln(w)
	fprintln(w, "Usage: flatblog [flags] <command> [args]")
	fprintln(w)
	fprintln(w, "Global flags:")
	fprintln(w, strings.TrimRight(globalFlags.FlagUsages(), "\n"))
	fprintln(w, "  -h, --help                Show help")
	fprintln(w)
	fprintln(w, "Commands:")

	// Usage listing only needs names and descriptions.
	stub := &app{}
	for _, c := range stub.commands() {
		fprintln(w, c.HelpLine())
	}
}
