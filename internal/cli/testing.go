package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// CLI runs commands against a temp directory in tests.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string

	// Opts are passed to every [Run] call.
	Opts []Option
}

// NewCLI creates a test CLI with a temp directory, an empty environment
// (so no global config is read) and a clock fixed at 2024-06-01.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	fixed := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	return &CLI{
		t:    t,
		Dir:  t.TempDir(),
		Env:  map[string]string{},
		Opts: []Option{WithClock(func() time.Time { return fixed })},
	}
}

// Run executes the CLI with the given args and returns stdout, stderr, and exit code.
// Args should not include "flatblog" or "--cwd"; those are added automatically.
func (c *CLI) Run(args ...string) (string, string, int) {
	return c.run(nil, args)
}

// RunWithInput executes the CLI with stdin.
// stdin must be a string or io.Reader; panics otherwise.
func (c *CLI) RunWithInput(stdin any, args ...string) (string, string, int) {
	var in io.Reader

	switch v := stdin.(type) {
	case string:
		in = strings.NewReader(v)
	case io.Reader:
		in = v
	default:
		panic(fmt.Sprintf("stdin must be string or io.Reader, got %T", stdin))
	}

	return c.run(in, args)
}

func (c *CLI) run(in io.Reader, args []string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"flatblog", "--cwd", c.Dir}, args...)
	code := Run(in, &outBuf, &errBuf, fullArgs, c.Env, nil, c.Opts...)

	return outBuf.String(), errBuf.String(), code
}

// MustRun executes the CLI and fails the test if the command returns non-zero.
// Returns trimmed stdout on success.
func (c *CLI) MustRun(args ...string) string {
	c.t.Helper()

	stdout, stderr, code := c.Run(args...)
	if code != 0 {
		c.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail executes the CLI and fails the test if the command succeeds or
// writes to stdout. Returns trimmed stderr.
func (c *CLI) MustFail(args ...string) string {
	c.t.Helper()

	stdout, stderr, code := c.Run(args...)
	if code == 0 {
		c.t.Fatalf("command %v should have failed but succeeded\nstdout: %s", args, stdout)
	}

	if stdout != "" {
		c.t.Fatalf("command %v failed but stdout should be empty\nstdout: %s", args, stdout)
	}

	return strings.TrimSpace(stderr)
}

// PostsDir returns the default posts directory.
func (c *CLI) PostsDir() string {
	return filepath.Join(c.Dir, "posts")
}

// ReadPost returns the raw content of filename in the posts directory.
func (c *CLI) ReadPost(filename string) string {
	c.t.Helper()

	content, err := os.ReadFile(filepath.Join(c.PostsDir(), filename))
	if err != nil {
		c.t.Fatalf("failed to read post %s: %v", filename, err)
	}

	return string(content)
}

// WritePost writes raw content to filename in the posts directory.
func (c *CLI) WritePost(filename, content string) {
	c.t.Helper()

	c.WriteFile(filepath.Join("posts", filename), content)
}

// WriteFile writes content to a path relative to Dir, creating parents.
func (c *CLI) WriteFile(rel, content string) {
	c.t.Helper()

	path := filepath.Join(c.Dir, rel)

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		c.t.Fatalf("failed to create dir for %s: %v", rel, err)
	}

	err = os.WriteFile(path, []byte(content), 0o644)
	if err != nil {
		c.t.Fatalf("failed to write %s: %v", rel, err)
	}
}

// AssertContains fails the test if content doesn't contain substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}

// AssertNotContains fails the test if content contains substr.
func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("content should NOT contain %q\ncontent:\n%s", substr, content)
	}
}
