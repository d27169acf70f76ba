// Package render turns posts into HTML pages.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/calvinalkan/flatblog/internal/post"
)

// Messages shown when a post cannot be displayed or stored.
const (
	MsgNotFound  = "Post not found"
	MsgSaveError = "Error saving post"
)

// Options configures a [Renderer].
type Options struct {
	SiteTitle string

	// Markdown converts post bodies with goldmark. Otherwise bodies are
	// emitted as stored, as raw HTML.
	Markdown bool
}

// IndexPage is the data for the post listing.
type IndexPage struct {
	Query string
	Posts []post.Post

	// Invalid marks a rejected query; no results are shown.
	Invalid bool
}

// Renderer executes the page templates. It is safe for concurrent use.
type Renderer struct {
	tmpl      *template.Template
	md        goldmark.Markdown
	siteTitle string
}

// New parses the page templates.
func New(opts Options) (*Renderer, error) {
	tmpl, err := template.New("pages").Parse(pageTemplates)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := &Renderer{tmpl: tmpl, siteTitle: opts.SiteTitle}

	if opts.Markdown {
		r.md = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		)
	}

	return r, nil
}

// Chrome is the page frame shared by every template.
type Chrome struct {
	SiteTitle string
	Title     string
}

type indexData struct {
	Chrome
	IndexPage
}

type postData struct {
	Chrome
	Post post.Post
	Body template.HTML
}

type messageData struct {
	Chrome
	Message string
}

// Index writes the listing page with the search form and one entry per post.
func (r *Renderer) Index(w io.Writer, page IndexPage) error {
	return r.execute(w, "index", indexData{Chrome: r.chrome(""), IndexPage: page})
}

// Post writes a single post page.
func (r *Renderer) Post(w io.Writer, p post.Post) error {
	body, err := r.Body(p.Content)
	if err != nil {
		return err
	}

	return r.execute(w, "post", postData{Chrome: r.chrome(p.Title), Post: p, Body: body})
}

// NotFound writes the page shown for an absent post.
func (r *Renderer) NotFound(w io.Writer) error {
	return r.execute(w, "message", messageData{Chrome: r.chrome(MsgNotFound), Message: MsgNotFound})
}

// SaveError writes the page shown when a save fails.
func (r *Renderer) SaveError(w io.Writer) error {
	return r.execute(w, "message", messageData{Chrome: r.chrome(MsgSaveError), Message: MsgSaveError})
}

// Body returns content as trusted HTML. Stored content is not escaped.
func (r *Renderer) Body(content string) (template.HTML, error) {
	if r.md == nil {
		return template.HTML(content), nil //nolint:gosec // post bodies are HTML by contract
	}

	var buf bytes.Buffer

	err := r.md.Convert([]byte(content), &buf)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	return template.HTML(buf.String()), nil //nolint:gosec // goldmark output
}

func (r *Renderer) chrome(title string) Chrome {
	return Chrome{SiteTitle: r.siteTitle, Title: title}
}

// execute renders into a buffer first so a template error never leaves a
// half-written page on w.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer

	err := r.tmpl.ExecuteTemplate(&buf, name, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	_, err = buf.WriteTo(w)
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	return nil
}

const pageTemplates = `
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{if .Title}}{{.Title}} - {{end}}{{.SiteTitle}}</title>
</head>
<body>
<header><a href="/">{{.SiteTitle}}</a></header>
<main>
{{end}}

{{define "foot"}}</main>
</body>
</html>
{{end}}

{{define "index"}}{{template "head" .Chrome}}<form method="get" action="/">
<input type="text" name="query" placeholder="Search..." value="{{.Query}}">
<input type="submit" value="Search">
</form>
{{if .Invalid}}<p class="error">Invalid search</p>
{{else}}<ul class="posts">
{{range .Posts}}<li><a href="/post?name={{.Filename}}">{{.Title}}</a> by {{.Author}} <time>{{.Date}}</time></li>
{{else}}<li>No posts</li>
{{end}}</ul>
{{end}}{{template "foot"}}{{end}}

{{define "post"}}{{template "head" .Chrome}}<article>
<h1>{{.Post.Title}}</h1>
<p class="meta">{{.Post.Date}} by {{.Post.Author}}</p>
<div class="content">{{.Body}}</div>
</article>
{{template "foot"}}{{end}}

{{define "message"}}{{template "head" .Chrome}}<p>{{.Message}}</p>
{{template "foot"}}{{end}}
`
