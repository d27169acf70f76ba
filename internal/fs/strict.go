package fs

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// TestBuilder is the subset of [testing.T] used by [StrictTestFS].
type TestBuilder interface {
	Helper()
	Cleanup(func())
	Failed() bool
	Logf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// StrictTestFS wraps an [FS] for tests. It records the last operations and
// fails the test on any real filesystem error other than "does not exist",
// which the post store probes for on purpose. Injected [Chaos] errors pass
// through.
type StrictTestFS struct {
	tb    TestBuilder
	fs    FS
	trace *traceLog
}

// NewStrictTestFS wraps fsys. On test failure the operation trace is logged.
func NewStrictTestFS(tb TestBuilder, fsys FS) *StrictTestFS {
	tb.Helper()

	s := &StrictTestFS{tb: tb, fs: fsys, trace: &traceLog{capacity: 200}}

	tb.Cleanup(func() {
		if tb.Failed() {
			if trace := s.Trace(); trace != "" {
				tb.Logf("fs trace:\n%s", trace)
			}
		}
	})

	return s
}

// Trace returns recent operations, oldest first.
func (s *StrictTestFS) Trace() string {
	return s.trace.String()
}

func (s *StrictTestFS) ReadFile(path string) ([]byte, error) {
	s.tb.Helper()
	data, err := s.fs.ReadFile(path)

	return data, s.check("readfile", path, err)
}

func (s *StrictTestFS) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	s.tb.Helper()

	return s.check("writeatomic", path, s.fs.WriteFileAtomic(path, data, perm))
}

func (s *StrictTestFS) ReadDir(path string) ([]os.DirEntry, error) {
	s.tb.Helper()
	entries, err := s.fs.ReadDir(path)

	return entries, s.check("readdir", path, err)
}

func (s *StrictTestFS) MkdirAll(path string, perm os.FileMode) error {
	s.tb.Helper()

	return s.check("mkdirall", path, s.fs.MkdirAll(path, perm))
}

func (s *StrictTestFS) Stat(path string) (os.FileInfo, error) {
	s.tb.Helper()
	info, err := s.fs.Stat(path)

	return info, s.check("stat", path, err)
}

func (s *StrictTestFS) Exists(path string) (bool, error) {
	s.tb.Helper()
	exists, err := s.fs.Exists(path)

	return exists, s.check("exists", path, err)
}

func (s *StrictTestFS) Remove(path string) error {
	s.tb.Helper()

	return s.check("remove", path, s.fs.Remove(path))
}

var _ FS = (*StrictTestFS)(nil)

func (s *StrictTestFS) check(op, path string, err error) error {
	s.tb.Helper()

	injected := IsInjected(err)
	s.trace.add(fmt.Sprintf("%s %q", op, path), err, injected)

	if err != nil && !injected && !errors.Is(err, os.ErrNotExist) {
		s.tb.Fatalf("strictfs: real filesystem error: %v\n%s", err, s.Trace())
	}

	return err
}

// traceLog is a bounded ring of formatted operations.
type traceLog struct {
	mu       sync.Mutex
	capacity int
	events   []string
	next     int
	seq      uint64
}

func (t *traceLog) add(op string, err error, injected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++

	event := fmt.Sprintf("#%d %s ok", t.seq, op)
	if err != nil {
		event = fmt.Sprintf("#%d %s err=%v injected=%t", t.seq, op, err, injected)
	}

	if len(t.events) < t.capacity {
		t.events = append(t.events, event)

		return
	}

	t.events[t.next] = event
	t.next = (t.next + 1) % t.capacity
}

func (t *traceLog) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ordered := append(append([]string(nil), t.events[t.next:]...), t.events[:t.next]...)

	return strings.Join(ordered, "\n")
}
