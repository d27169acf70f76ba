package post

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// maxPatternLen bounds search input.
const maxPatternLen = 128

// Search returns the file names of posts whose name contains pattern, in
// reverse directory listing order. An empty pattern matches every post.
//
// Matching is the glob "*<pattern>*.post" evaluated in-process against the
// directory listing. Pattern may only contain letters, digits, spaces and
// "-_."; anything else returns [ErrInvalidPattern]. Dotfiles, directories
// and names containing a hidden marker are skipped. A missing posts
// directory yields no results.
//
// ReadDir lists by name, so date-prefixed names come back newest first.
// That is a property of the names, not a sort by [Post.Date].
func (s *Store) Search(pattern string) ([]string, error) {
	glob := "*" + Ext

	if pattern != "" {
		err := validatePattern(pattern)
		if err != nil {
			return nil, err
		}

		glob = "*" + pattern + "*" + Ext
	}

	entries, err := s.fs.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}

		return nil, fmt.Errorf("listing posts: %w", err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		filename := entry.Name()

		if !entry.Type().IsRegular() || strings.HasPrefix(filename, ".") {
			continue
		}

		matched, matchErr := filepath.Match(glob, filename)
		if matchErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, matchErr)
		}

		if !matched || s.isHidden(strings.TrimSuffix(filename, Ext)) {
			continue
		}

		names = append(names, filename)
	}

	slices.Reverse(names)

	return names, nil
}

// SearchPosts runs [Store.Search] and loads every match. Files that fail to
// load are skipped, as Load would report them absent anyway.
func (s *Store) SearchPosts(pattern string) ([]Post, error) {
	names, err := s.Search(pattern)
	if err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(names))

	for _, name := range names {
		if p, ok := s.Load(name); ok {
			posts = append(posts, p)
		}
	}

	return posts, nil
}

func (s *Store) isHidden(name string) bool {
	for _, marker := range s.hidden {
		if strings.Contains(name, marker) {
			return true
		}
	}

	return false
}

func validatePattern(pattern string) error {
	if len(pattern) > maxPatternLen {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidPattern, maxPatternLen)
	}

	for _, r := range pattern {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}

		switch r {
		case ' ', '-', '_', '.':
			continue
		}

		return fmt.Errorf("%w: %q is not allowed", ErrInvalidPattern, r)
	}

	return nil
}
