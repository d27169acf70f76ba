package post

import "bytes"

// Header keys.
const (
	KeyTitle  = "TITLE"
	KeyDate   = "DATE"
	KeyAuthor = "AUTHOR"
)

// Encode serializes p as a header block followed by the body.
//
// Values are written raw. A title or author containing a line break ends
// the header early and corrupts the file; validate with [Draft.Validate]
// before encoding untrusted input.
func Encode(p Post) []byte {
	var buf bytes.Buffer

	buf.Grow(len(p.Title) + len(p.Date) + len(p.Author) + len(p.Content) + 32)

	writeHeader(&buf, KeyTitle, p.Title)
	writeHeader(&buf, KeyDate, p.Date)
	writeHeader(&buf, KeyAuthor, p.Author)
	buf.WriteByte('\n')
	buf.WriteString(p.Content)

	return buf.Bytes()
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key)
	buf.WriteByte('=')
	buf.WriteString(value)
	buf.WriteByte('\n')
}

// Decode parses a post file. The returned post has no Name; the store fills
// it in from the file name.
//
// The header is the longest run of leading KEY=value lines (KEY is upper
// case letters, digits and '_'). An empty line directly after it is consumed
// as the separator. Everything after is the body, byte for byte. Unknown keys
// are ignored and a repeated key keeps its last value. Missing TITLE, DATE
// or AUTHOR fall back to the package defaults.
//
// A file with no body (empty, header only, or header never closed) returns
// [ErrMalformed].
func Decode(data []byte) (Post, error) {
	p := Post{Title: DefaultTitle, Date: DefaultDate, Author: DefaultAuthor}

	rest := data

	for len(rest) > 0 {
		line, after, found := bytes.Cut(rest, []byte("\n"))
		line = bytes.TrimSuffix(line, []byte("\r"))

		if len(line) == 0 {
			if found {
				rest = after
			} else {
				rest = nil
			}

			break
		}

		key, value, ok := parseHeaderLine(line)
		if !ok {
			break
		}

		switch key {
		case KeyTitle:
			p.Title = value
		case KeyDate:
			p.Date = value
		case KeyAuthor:
			p.Author = value
		}

		if !found {
			rest = nil

			break
		}

		rest = after
	}

	if len(rest) == 0 {
		return Post{}, ErrMalformed
	}

	p.Content = string(rest)

	return p, nil
}

func parseHeaderLine(line []byte) (string, string, bool) {
	key, value, found := bytes.Cut(line, []byte("="))
	if !found || !isHeaderKey(key) {
		return "", "", false
	}

	return string(key), string(value), true
}

func isHeaderKey(key []byte) bool {
	if len(key) == 0 || key[0] < 'A' || key[0] > 'Z' {
		return false
	}

	for _, c := range key[1:] {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '_' {
			return false
		}
	}

	return true
}
