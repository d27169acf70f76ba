package post

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/calvinalkan/flatblog/internal/fs"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()

	store, err := NewStore(fs.NewStrictTestFS(t, fs.NewReal()), t.TempDir(), opts...)
	require.NoError(t, err)

	return store
}

func writeRaw(t *testing.T, store *Store, filename, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(store.Dir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), filename), []byte(content), 0o644))
}

func TestNewStore_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewStore(fs.NewReal(), "")
	require.Error(t, err)

	assert.Panics(t, func() {
		_, _ = NewStore(nil, t.TempDir())
	})

	store, err := NewStore(fs.NewReal(), "relative/posts")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(store.Dir()), "Dir()=%q", store.Dir())
}

func TestStore_SaveThenLoad(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	saved, ok := store.Save("2024-01-01-hello", "Hello", "2024-01-01", "alice", "Body text")
	require.True(t, ok)

	want := Post{
		Name:    "2024-01-01-hello",
		Title:   "Hello",
		Date:    "2024-01-01",
		Author:  "alice",
		Content: "Body text",
	}

	if diff := cmp.Diff(want, saved); diff != "" {
		t.Fatalf("Save mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir(), "2024-01-01-hello.post"))
	require.NoError(t, err)
	assert.Equal(t, "TITLE=Hello\nDATE=2024-01-01\nAUTHOR=alice\n\nBody text", string(data))

	for _, name := range []string{"2024-01-01-hello", "2024-01-01-hello.post"} {
		loaded, found := store.Load(name)
		require.True(t, found, "Load(%q)", name)

		if diff := cmp.Diff(want, loaded); diff != "" {
			t.Fatalf("Load(%q) mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestStore_Save_OverwritesExisting(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, ok := store.Save("p", "First", "2024-01-01", "a", "one")
	require.True(t, ok)

	_, ok = store.Save("p", "Second", "2024-01-02", "b", "two")
	require.True(t, ok)

	got, found := store.Load("p")
	require.True(t, found)
	assert.Equal(t, "Second", got.Title)
	assert.Equal(t, "two", got.Content)
}

func TestStore_Save_AlwaysAppendsExtension(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	saved, ok := store.Save("hello.post", "T", "2024-01-01", "a", "body")
	require.True(t, ok)
	assert.Equal(t, "hello.post", saved.Name)

	_, err := os.Stat(filepath.Join(store.Dir(), "hello.post.post"))
	require.NoError(t, err)
}

func TestStore_Save_CreatesMissingDir(t *testing.T) {
	t.Parallel()

	store, err := NewStore(fs.NewReal(), filepath.Join(t.TempDir(), "nested", "posts"))
	require.NoError(t, err)

	_, ok := store.Save("p", "T", "2024-01-01", "a", "body")
	require.True(t, ok)

	_, found := store.Load("p")
	assert.True(t, found)
}

func TestStore_Load_Absent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	writeRaw(t, store, "empty.post", "")
	writeRaw(t, store, "headeronly.post", "TITLE=T\n\n")
	require.NoError(t, os.MkdirAll(filepath.Join(store.Dir(), "adir.post"), 0o755))

	tests := []struct {
		name string
		kind string
	}{
		{name: "missing", kind: "not_found"},
		{name: "empty", kind: "malformed"},
		{name: "headeronly.post", kind: "malformed"},
		{name: "adir", kind: "not_found"},
		{name: "../../etc/passwd", kind: "invalid_name"},
		{name: "", kind: "invalid_name"},
	}

	for _, tc := range tests {
		_, found := store.Load(tc.name)
		assert.False(t, found, "Load(%q)", tc.name)

		_, err := store.Lookup(tc.name)
		assert.Equal(t, tc.kind, Kind(err), "Lookup(%q) err=%v", tc.name, err)

		var postErr *Error
		require.True(t, errors.As(err, &postErr), "Lookup(%q) err=%T", tc.name, err)
		assert.Equal(t, tc.name, postErr.Name)
	}
}

func TestStore_Load_DoesNotEscapeDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	postsDir := filepath.Join(root, "posts")
	require.NoError(t, os.MkdirAll(postsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "outside.post"), []byte("TITLE=X\n\nleak"), 0o644))

	store, err := NewStore(fs.NewReal(), postsDir)
	require.NoError(t, err)

	for _, name := range []string{"../outside", "....//outside", `..\outside`, filepath.Join(root, "outside")} {
		_, found := store.Load(name)
		assert.False(t, found, "Load(%q) escaped posts dir", name)
	}
}

func TestStore_Load_ReflectsExternalEdits(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, ok := store.Save("p", "Before", "2024-01-01", "a", "body")
	require.True(t, ok)

	writeRaw(t, store, "p.post", "TITLE=After\n\nnew body")

	got, found := store.Load("p")
	require.True(t, found)
	assert.Equal(t, "After", got.Title)
	assert.Equal(t, DefaultAuthor, got.Author)
	assert.Equal(t, "new body", got.Content)
}

func TestStore_Write_InvalidName(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	for _, name := range []string{"", "..", "../", "a/b", "/abs"} {
		_, err := store.Write(name, "T", "2024-01-01", "a", "body")
		require.ErrorIs(t, err, ErrInvalidName, "Write(%q)", name)

		_, ok := store.Save(name, "T", "2024-01-01", "a", "body")
		assert.False(t, ok, "Save(%q)", name)
	}

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_Write_Failure(t *testing.T) {
	t.Parallel()

	chaos := fs.NewChaos(fs.NewReal(), 42, fs.ChaosConfig{WriteFailRate: 1})

	store, err := NewStore(chaos, t.TempDir())
	require.NoError(t, err)

	_, ok := store.Save("p", "T", "2024-01-01", "a", "body")
	assert.False(t, ok)

	_, err = store.Write("p", "T", "2024-01-01", "a", "body")
	require.ErrorIs(t, err, ErrWriteFailed)
	assert.True(t, fs.IsInjected(err), "err=%v", err)
	assert.Equal(t, "write_failed", Kind(err))

	chaos.SetMode(fs.ChaosModePassthrough)

	_, ok = store.Load("p")
	assert.False(t, ok, "failed write must not leave a post behind")
}

func TestStore_Load_ReadFailureIsAbsent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	chaos := fs.NewChaos(fs.NewReal(), 3, fs.ChaosConfig{ReadFailRate: 1})
	chaos.SetMode(fs.ChaosModePassthrough)

	store, err := NewStore(chaos, dir)
	require.NoError(t, err)

	_, ok := store.Save("p", "T", "2024-01-01", "a", "body")
	require.True(t, ok)

	chaos.SetMode(fs.ChaosModeInject)

	_, found := store.Load("p")
	assert.False(t, found)

	_, err = store.Lookup("p")
	require.Error(t, err)
	assert.True(t, fs.IsInjected(err), "err=%v", err)
}

func TestStore_LogsCollapsedFailures(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	store := newTestStore(t, WithLogger(logger))
	writeRaw(t, store, "broken.post", "TITLE=T\n")

	_, found := store.Load("missing")
	require.False(t, found)

	_, found = store.Load("broken")
	require.False(t, found)

	_, ok := store.Save("a/b", "T", "2024-01-01", "a", "body")
	require.False(t, ok)

	var records []map[string]any

	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))

		records = append(records, rec)
	}

	require.Len(t, records, 3)

	want := []struct{ level, msg, kind string }{
		{"DEBUG", "load post", "not_found"},
		{"WARN", "load post", "malformed"},
		{"WARN", "save post", "invalid_name"},
	}

	for i, w := range want {
		assert.Equal(t, w.level, records[i]["level"], "record %d", i)
		assert.Equal(t, w.msg, records[i]["msg"], "record %d", i)
		assert.Equal(t, w.kind, records[i]["kind"], "record %d", i)
	}
}

// Unlocked writers race; the file must always hold one complete version.
func TestStore_ConcurrentSaves_LastWriterWins(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	bodies := []string{"alpha", "bravo", "charlie", "delta"}

	var wg sync.WaitGroup

	for _, body := range bodies {
		wg.Go(func() {
			for range 20 {
				store.Save("race", "T", "2024-01-01", "a", body)
			}
		})
	}

	wg.Wait()

	got, found := store.Load("race")
	require.True(t, found)
	assert.Contains(t, bodies, got.Content)
}

func TestError_Format(t *testing.T) {
	t.Parallel()

	err := &Error{Name: "hello", Path: "/srv/posts/hello.post", Err: ErrNotFound}
	assert.Equal(t, "post not found (post_name=hello post_path=/srv/posts/hello.post)", err.Error())

	assert.Equal(t, "post not found (post_name=x)", (&Error{Name: "x", Err: ErrNotFound}).Error())
	assert.Equal(t, "post not found", (&Error{Err: ErrNotFound}).Error())
	require.ErrorIs(t, err, ErrNotFound)
}
