package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/flatblog/internal/web"
)

func (a *app) serveCmd() *Command {
	flags := flag.NewFlagSet("serve", flag.ContinueOnError)
	flags.String("addr", "", "Listen address (default: addr from config)")

	return &Command{
		Flags: flags,
		Usage: "serve [--addr host:port]",
		Short: "Serve the blog over HTTP",
		Long: `Serve the post index at / and single posts at /post?name=<name>.

Runs until interrupted, then lets in-flight requests finish.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return errTooManyArgs
			}

			addr, _ := flags.GetString("addr")
			if addr == "" {
				addr = a.cfg.Addr
			}

			o.ErrPrintln("serving", a.cfg.PostsDirAbs, "on http://"+addr)

			srv := web.New(a.store, a.render, a.log.With("component", "web"))

			return srv.ListenAndServe(ctx, addr)
		},
	}
}
