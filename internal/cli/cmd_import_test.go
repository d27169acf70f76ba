package cli_test

import (
	"testing"

	"github.com/calvinalkan/flatblog/internal/cli"
)

func TestImportCommand(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("drafts/first.md", "---\ntitle: First Post\ndate: \"2024-02-03\"\nauthor: alice\nslug: first\n---\n# First\n\nHello.\n")
	c.WriteFile("drafts/second.md", "+++\ntitle = \"Second\"\n+++\nBody two\n")

	stdout := c.MustRun("import", "drafts/first.md", "drafts/second.md")
	cli.AssertContains(t, stdout, "imported drafts/first.md -> 2024-02-03-first.post")
	cli.AssertContains(t, stdout, "imported drafts/second.md -> 2024-06-01-second.post")

	if got, want := c.ReadPost("2024-02-03-first.post"), "TITLE=First Post\nDATE=2024-02-03\nAUTHOR=alice\n\n# First\n\nHello.\n"; got != want {
		t.Fatalf("first=%q, want=%q", got, want)
	}

	cli.AssertContains(t, c.ReadPost("2024-06-01-second.post"), "AUTHOR=Unknown\n\nBody two\n")
}

func TestImportCommand_PartialFailureWarns(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("good.md", "---\ntitle: Good\n---\nok\n")
	c.WriteFile("empty.md", "---\ntitle: Empty\n---\n")

	stdout, stderr, code := c.Run("import", "good.md", "empty.md", "missing.md")
	if got, want := code, 1; got != want {
		t.Fatalf("exit=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stdout, "imported good.md")
	cli.AssertContains(t, stderr, "warning: skipped empty.md")
	cli.AssertContains(t, stderr, "warning: skipped missing.md")

	cli.AssertContains(t, c.MustRun("ls"), "2024-06-01-good.post")
}

func TestImportCommand_DryRun(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("a.md", "---\ntitle: Dry\n---\nbody\n")

	stdout := c.MustRun("import", "--dry-run", "a.md")
	cli.AssertContains(t, stdout, "ok 2024-06-01-dry.post")

	if ls := c.MustRun("ls"); ls != "" {
		t.Fatalf("dry run wrote posts: %q", ls)
	}
}

func TestImportCommand_RequiresFiles(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("import")
	cli.AssertContains(t, stderr, "at least one markdown file is required")
}
