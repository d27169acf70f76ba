package cli_test

import (
	"strings"
	"testing"

	"github.com/calvinalkan/flatblog/internal/cli"
)

func seedBlog(c *cli.CLI) {
	c.WritePost("2024-01-01-hello-world.post", "TITLE=Hello World\nDATE=2024-01-01\nAUTHOR=alice\n\nfirst")
	c.WritePost("2024-02-01-go-tips.post", "TITLE=Go Tips\nDATE=2024-02-01\nAUTHOR=bob\n\nsecond")
	c.WritePost("2024-03-01-hello-again.post", "TITLE=Hello Again\nDATE=2024-03-01\nAUTHOR=alice\n\nthird")
	c.WritePost("2024-04-01-secret-draft.post", "TITLE=Draft\n\nhidden")
}

func TestLsCommand_ListsNewestNameFirst(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	seedBlog(c)

	stdout := c.MustRun("ls")

	want := strings.Join([]string{
		"2024-03-01-hello-again.post  Hello Again by alice",
		"2024-02-01-go-tips.post  Go Tips by bob",
		"2024-01-01-hello-world.post  Hello World by alice",
	}, "\n")

	if stdout != want {
		t.Fatalf("ls\ngot:\n%s\nwant:\n%s", stdout, want)
	}
}

func TestLsCommand_Pattern(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	seedBlog(c)

	stdout := c.MustRun("ls", "hello")
	cli.AssertContains(t, stdout, "2024-03-01-hello-again.post")
	cli.AssertContains(t, stdout, "2024-01-01-hello-world.post")
	cli.AssertNotContains(t, stdout, "go-tips")

	stdout = c.MustRun("search", "go-tips")
	if got, want := stdout, "2024-02-01-go-tips.post  Go Tips by bob"; got != want {
		t.Fatalf("search=%q, want=%q", got, want)
	}

	if stdout := c.MustRun("ls", "secret"); stdout != "" {
		t.Fatalf("hidden post listed: %q", stdout)
	}
}

func TestLsCommand_HiddenMarkersFromConfig(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	seedBlog(c)
	c.WriteFile(".flatblog.json", `{"hidden": ["go-"]}`)

	stdout := c.MustRun("ls")
	cli.AssertContains(t, stdout, "secret-draft")
	cli.AssertNotContains(t, stdout, "go-tips")
}

func TestLsCommand_RejectsUnsafePatterns(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	seedBlog(c)

	for _, pattern := range []string{";", "; whoami; echo 1337", "*", "../", "$(id)"} {
		stderr := c.MustFail("ls", pattern)
		cli.AssertContains(t, stderr, "invalid search pattern")
	}

	stderr := c.MustFail("ls", "a", "b")
	cli.AssertContains(t, stderr, "too many arguments")
}
