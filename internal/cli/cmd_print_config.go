package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/flatblog/internal/config"
)

func (a *app) printConfigCmd() *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			formatted, err := config.Format(a.cfg)
			if err != nil {
				return err
			}

			o.Printf("%s", formatted)
			o.Println("effective_cwd=" + a.cfg.EffectiveCwd)

			return nil
		},
	}
}
