package fs

import (
	"errors"
	iofs "io/fs"
	"sync"
)

// injectedPathErrors tracks every *fs.PathError produced by [Chaos] so
// [IsInjected] can distinguish them from real OS errors with the same errno.
var injectedPathErrors sync.Map // map[*fs.PathError]struct{}

// IsInjected reports whether err (or any wrapped error) was injected by [Chaos].
// Returns false if err is nil.
func IsInjected(err error) bool {
	if err == nil {
		return false
	}

	var pathErr *iofs.PathError
	if errors.As(err, &pathErr) {
		_, ok := injectedPathErrors.Load(pathErr)

		return ok
	}

	return false
}

func markInjectedPathError(err *iofs.PathError) {
	injectedPathErrors.Store(err, struct{}{})
}
