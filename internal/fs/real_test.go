package fs

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// =============================================================================
// Real FS Tests
//
// We're NOT testing os.ReadFile, os.ReadDir etc (that's Go's job).
// We ARE testing:
//   - Exists() - our convenience method
//   - WriteFileAtomic() - our atomic write wrapper
// =============================================================================

func TestReal_Exists_ReturnsFalseForNonExistent(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	dir := t.TempDir()

	exists, err := fs.Exists(filepath.Join(dir, "does-not-exist.post"))

	if got, want := err, error(nil); !errors.Is(got, want) {
		t.Fatalf("err=%v, want=%v", got, want)
	}

	if got, want := exists, false; got != want {
		t.Fatalf("exists=%v, want=%v", got, want)
	}
}

func TestReal_Exists_ReturnsTrueForFileAndDir(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "exists.post")

	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	for _, p := range []string{path, dir} {
		exists, err := fs.Exists(p)
		if err != nil {
			t.Fatalf("Exists(%q): %v", p, err)
		}

		if !exists {
			t.Fatalf("Exists(%q)=false, want true", p)
		}
	}
}

func TestReal_WriteFileAtomic_CreatesWithPerm(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), "new.post")

	if err := fs.WriteFileAtomic(path, []byte("TITLE=x\n\nbody"), 0o600); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if string(got) != "TITLE=x\n\nbody" {
		t.Fatalf("content=%q", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	if got, want := info.Mode().Perm(), os.FileMode(0o600); got != want {
		t.Fatalf("perm=%v, want=%v", got, want)
	}
}

func TestReal_WriteFileAtomic_OverwritesExisting(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), "over.post")

	if err := fs.WriteFileAtomic(path, []byte("first version, longer"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}

	if err := fs.WriteFileAtomic(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if string(got) != "second" {
		t.Fatalf("content=%q, want %q", got, "second")
	}
}

func TestReal_WriteFileAtomic_FailsWhenDirMissing(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), "missing", "x.post")

	if err := fs.WriteFileAtomic(path, []byte("x"), 0o644); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}

// Concurrent writers race; whichever rename lands last wins and the file is
// always one complete version, never a mix.
func TestReal_WriteFileAtomic_ConcurrentWritersLeaveOneWholeVersion(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "race.post")

	versions := []string{"aaaaaaaaaaaaaaaa", "bbbbbbbb", "cccccccccccccccccccccccc"}

	var wg sync.WaitGroup

	for _, v := range versions {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_ = fs.WriteFileAtomic(path, []byte(v), 0o644)
		}()
	}

	wg.Wait()

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	found := false

	for _, v := range versions {
		if string(got) == v {
			found = true
		}
	}

	if !found {
		t.Fatalf("content %q is not one of the written versions", got)
	}
}
