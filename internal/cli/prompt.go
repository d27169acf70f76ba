package cli

import "errors"

// ErrPromptAborted is returned by a [Prompter] when the user cancels.
var ErrPromptAborted = errors.New("prompt aborted")

// Prompter asks the user for a value. def is offered as the initial answer.
type Prompter interface {
	Prompt(label, def string) (string, error)
}

// PrompterFunc adapts a function to [Prompter].
type PrompterFunc func(label, def string) (string, error)

// Prompt calls f.
func (f PrompterFunc) Prompt(label, def string) (string, error) {
	return f(label, def)
}
