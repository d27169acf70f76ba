package post

import (
	"errors"
	"strings"
)

// Error variables for post operations.
//
// Load and Save collapse all of these into a single "absent" result. Lookup
// and Write return them wrapped in [*Error] for callers that need the
// distinction.
var (
	ErrNotFound       = errors.New("post not found")
	ErrMalformed      = errors.New("post has no content")
	ErrWriteFailed    = errors.New("cannot write post")
	ErrInvalidPattern = errors.New("invalid search pattern")
	ErrInvalidName    = errors.New("invalid post name")
)

// Error attaches post context to an underlying error:
//
//	post not found (post_name=hello post_path=/srv/posts/hello.post)
//
// Use [errors.Is] against the sentinels above to classify it.
type Error struct {
	// Name is the requested post name as given by the caller.
	Name string

	// Path is the resolved file path, empty when resolution failed.
	Path string

	Err error
}

// Error formats as "<cause> (post_name=X post_path=Y)".
func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	var parts []string

	if e.Name != "" {
		parts = append(parts, "post_name="+e.Name)
	}

	if e.Path != "" {
		parts = append(parts, "post_path="+e.Path)
	}

	cause := ""
	if e.Err != nil {
		cause = e.Err.Error()
	}

	if len(parts) == 0 {
		return cause
	}

	suffix := "(" + strings.Join(parts, " ") + ")"
	if cause == "" {
		return suffix
	}

	return cause + " " + suffix
}

// Unwrap returns the underlying error for use with [errors.Is] and [errors.As].
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// withContext wraps err in *Error, filling missing fields of an existing one.
func withContext(err error, name, path string) error {
	if err == nil {
		return nil
	}

	existing := &Error{}
	if errors.As(err, &existing) {
		if existing.Name == "" {
			existing.Name = name
		}

		if existing.Path == "" {
			existing.Path = path
		}

		return existing
	}

	return &Error{Name: name, Path: path, Err: err}
}

// Kind returns a short, stable label for err, used in logs where the public
// API has already collapsed the distinction.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrWriteFailed):
		return "write_failed"
	case errors.Is(err, ErrInvalidPattern):
		return "invalid_pattern"
	default:
		return "io_error"
	}
}
