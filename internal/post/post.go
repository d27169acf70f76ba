// Package post stores blog posts as flat files, one file per post.
//
// A post file is a header of KEY=value lines, an empty line, then the body
// verbatim:
//
//	TITLE=Hello
//	DATE=2024-01-01
//	AUTHOR=alice
//
//	Body text
//
// The header is scanned passively. Nothing in a post file is ever evaluated.
//
// The posts directory is the only source of truth. [Store] keeps no cache and
// takes no locks: every load re-reads the file and concurrent saves to the
// same name race, with the last completed write winning.
package post

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
)

// Ext is appended to post names to form file names.
const Ext = ".post"

// DateLayout is the format of [Post.Date] for posts written by this package.
const DateLayout = "2006-01-02"

// Defaults used when a header omits a field.
const (
	DefaultTitle  = "Untitled"
	DefaultDate   = "Unknown"
	DefaultAuthor = "Unknown"
)

// Post is a single content entry.
type Post struct {
	// Name is the file name stem, normally "<date>-<slug>".
	Name    string
	Title   string
	Date    string
	Author  string
	Content string
}

// Filename returns the name of the file backing p.
func (p Post) Filename() string {
	return p.Name + Ext
}

// NewName derives a post name from a date and a title: "2024-01-01-hello-world".
func NewName(date, title string) string {
	s, err := slug.Normalize(title)
	if err != nil || s == "" {
		s = "untitled"
	}

	return date + "-" + s
}

// Draft is user input for a new post, checked before it reaches the store.
//
// The store itself enforces no schema. Draft rejects what would corrupt the
// on-disk format (newlines in header values) or decode as absent (empty body).
type Draft struct {
	Name    string
	Title   string
	Date    string
	Author  string
	Content string
}

// Validate checks that every field is present and writable.
func (d Draft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.By(cleanName)),
		validation.Field(&d.Title, validation.Required, validation.By(singleLine)),
		validation.Field(&d.Date, validation.Required, validation.Date(DateLayout)),
		validation.Field(&d.Author, validation.Required, validation.By(singleLine)),
		validation.Field(&d.Content, validation.Required),
	)
}

// WithDefaults fills an empty Date from today, an empty Author from author
// and an empty Name from [NewName].
func (d Draft) WithDefaults(today time.Time, author string) Draft {
	if d.Date == "" {
		d.Date = today.Format(DateLayout)
	}

	if d.Author == "" {
		d.Author = author
	}

	if d.Name == "" && d.Title != "" {
		d.Name = NewName(d.Date, d.Title)
	}

	return d
}

// Post returns the draft as a post record.
func (d Draft) Post() Post {
	return Post{Name: d.Name, Title: d.Title, Date: d.Date, Author: d.Author, Content: d.Content}
}

func singleLine(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, "\r\n") {
		return validation.NewError("post.single_line", "must not contain line breaks")
	}

	return nil
}

func cleanName(value any) error {
	s, _ := value.(string)
	if Sanitize(s) != s || strings.ContainsAny(s, `/\`+"\x00") {
		return validation.NewError("post.clean_name", "must not contain path separators or traversal")
	}

	return nil
}
