package post

import (
	"fmt"
	"path/filepath"
	"strings"
)

// traversalTokens are removed by [Sanitize].
var traversalTokens = []string{"../", `..\`}

// Sanitize removes every "../" (and "..\") token from path in a single pass
// over the original string. The output is not rescanned, so overlapping input
// such as "....//" still yields "../". Absolute paths, embedded separators
// and NUL bytes pass through untouched.
//
// Sanitize alone is not a containment guarantee. The store always follows it
// with [Store.resolve].
func Sanitize(path string) string {
	var builder strings.Builder

	builder.Grow(len(path))

	for i := 0; i < len(path); {
		if hasTraversalAt(path, i) {
			i += len(traversalTokens[0])

			continue
		}

		builder.WriteByte(path[i])
		i++
	}

	return builder.String()
}

func hasTraversalAt(path string, i int) bool {
	for _, token := range traversalTokens {
		if strings.HasPrefix(path[i:], token) {
			return true
		}
	}

	return false
}

// resolve sanitizes name and returns the absolute path of the file it names
// inside the posts directory. Names that still contain a separator, a NUL
// byte or a parent reference after sanitization are rejected.
func (s *Store) resolve(name string) (string, error) {
	clean := Sanitize(name)

	if clean == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}

	if clean == "." || clean == ".." {
		return "", fmt.Errorf("%w: %q is a directory reference", ErrInvalidName, clean)
	}

	if strings.ContainsAny(clean, `/\`+"\x00") {
		return "", fmt.Errorf("%w: %q contains a separator", ErrInvalidName, clean)
	}

	path := filepath.Join(s.dir, clean)

	rel, err := filepath.Rel(s.dir, path)
	if err != nil {
		return "", fmt.Errorf("%w: rel: %w", ErrInvalidName, err)
	}

	if rel != clean || strings.ContainsRune(rel, filepath.Separator) {
		return "", fmt.Errorf("%w: %q escapes posts dir", ErrInvalidName, name)
	}

	return path, nil
}
