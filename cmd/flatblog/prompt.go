package main

import (
	"errors"
	"io"
	"os"

	"github.com/peterh/liner"

	"github.com/calvinalkan/flatblog/internal/cli"
)

// linerPrompter reads answers with line editing. A fresh liner state is
// opened per prompt so the terminal is back in cooked mode between them.
type linerPrompter struct{}

func (p *linerPrompter) Prompt(label, def string) (string, error) {
	state := liner.NewLiner()
	defer state.Close()

	state.SetCtrlCAborts(true)

	var (
		answer string
		err    error
	)

	if def != "" {
		answer, err = state.PromptWithSuggestion(label+": ", def, -1)
	} else {
		answer, err = state.Prompt(label + ": ")
	}

	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return "", cli.ErrPromptAborted
	}

	return answer, err
}

// readerOrNil keeps a nil *os.File from becoming a non-nil io.Reader.
func readerOrNil(f *os.File) io.Reader {
	if f == nil {
		return nil
	}

	return f
}
