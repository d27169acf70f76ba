package post

import (
	"fmt"
	"io"

	"github.com/adrg/frontmatter"
)

// markdownMeta is the front matter accepted by [ParseMarkdown].
type markdownMeta struct {
	Title  string `yaml:"title" toml:"title" json:"title"`
	Date   string `yaml:"date" toml:"date" json:"date"`
	Author string `yaml:"author" toml:"author" json:"author"`
	Slug   string `yaml:"slug" toml:"slug" json:"slug"`
}

// ParseMarkdown reads a markdown document with optional YAML, TOML or JSON
// front matter into a draft. The body after the front matter becomes the
// content. Missing fields stay empty; see [Draft.WithDefaults].
func ParseMarkdown(r io.Reader) (Draft, error) {
	var meta markdownMeta

	body, err := frontmatter.Parse(r, &meta)
	if err != nil {
		return Draft{}, fmt.Errorf("parse front matter: %w", err)
	}

	d := Draft{
		Title:   meta.Title,
		Date:    meta.Date,
		Author:  meta.Author,
		Content: string(body),
	}

	if meta.Slug != "" && d.Date != "" {
		d.Name = NewName(d.Date, meta.Slug)
	}

	return d, nil
}
