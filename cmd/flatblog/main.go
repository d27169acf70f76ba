// Package main provides flatblog, a flat-file blog with a CLI and a small
// HTTP front end.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/calvinalkan/flatblog/internal/cli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var opts []cli.Option

	// On a terminal, ask for missing fields instead of waiting for stdin EOF.
	stdin := os.Stdin
	if isTerminal(stdin) {
		opts = append(opts, cli.WithPrompter(&linerPrompter{}))
		stdin = nil
	}

	exitCode := cli.Run(readerOrNil(stdin), os.Stdout, os.Stderr, os.Args, env, sigCh, opts...)

	os.Exit(exitCode)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}
