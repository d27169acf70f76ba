package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/calvinalkan/flatblog/internal/fs"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// DefaultHidden is the listing exclusion marker used when none is configured.
var DefaultHidden = []string{"secret"}

// Store maps post names to files in a single posts directory.
//
// Store holds no mutable state and is safe for concurrent use.
type Store struct {
	fs     fs.FS
	dir    string
	hidden []string
	log    *slog.Logger
}

// Option configures a [Store].
type Option func(*Store)

// WithHidden sets the substrings that exclude a post from [Store.Search].
// Excluded posts can still be loaded by exact name.
func WithHidden(markers ...string) Option {
	return func(s *Store) {
		s.hidden = nil

		for _, m := range markers {
			if m != "" {
				s.hidden = append(s.hidden, m)
			}
		}
	}
}

// WithLogger sets the logger that records why Load or Save came back empty.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// NewStore returns a store over dir. A relative dir is made absolute
// against the current working directory once, here.
func NewStore(fsys fs.FS, dir string, opts ...Option) (*Store, error) {
	if fsys == nil {
		panic("fs is nil")
	}

	if dir == "" {
		return nil, errors.New("posts dir is empty")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving posts dir: %w", err)
	}

	s := &Store{
		fs:     fsys,
		dir:    abs,
		hidden: DefaultHidden,
		log:    slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Dir returns the absolute posts directory.
func (s *Store) Dir() string {
	return s.dir
}

// Lookup loads the post called name.
//
// If no file exists at exactly name but one exists at name+[Ext], that file
// is used. Errors wrap [ErrInvalidName], [ErrNotFound] or [ErrMalformed];
// other read failures are returned wrapped as-is.
func (s *Store) Lookup(name string) (Post, error) {
	path, err := s.resolve(name)
	if err != nil {
		return Post{}, withContext(err, name, "")
	}

	path, err = s.pickFile(path)
	if err != nil {
		return Post{}, withContext(err, name, path)
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Post{}, withContext(ErrNotFound, name, path)
		}

		return Post{}, withContext(fmt.Errorf("reading post: %w", err), name, path)
	}

	p, err := Decode(data)
	if err != nil {
		return Post{}, withContext(err, name, path)
	}

	p.Name = strings.TrimSuffix(filepath.Base(path), Ext)

	return p, nil
}

// pickFile returns path if it is a regular file, else path+Ext if that is.
func (s *Store) pickFile(path string) (string, error) {
	for _, candidate := range []string{path, path + Ext} {
		info, err := s.fs.Stat(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}

			return candidate, fmt.Errorf("stat post: %w", err)
		}

		if info.Mode().IsRegular() {
			return candidate, nil
		}
	}

	return path, ErrNotFound
}

// Load is [Store.Lookup] with every failure collapsed to ok == false. The
// reason is logged, not returned.
func (s *Store) Load(name string) (Post, bool) {
	p, err := s.Lookup(name)
	if err != nil {
		level := slog.LevelDebug
		if Kind(err) == "malformed" || Kind(err) == "io_error" {
			level = slog.LevelWarn
		}

		s.log.Log(context.Background(), level, "load post", "name", name, "kind", Kind(err), "err", err)

		return Post{}, false
	}

	return p, true
}

// Write saves a post as name+[Ext] in the posts directory, replacing any
// existing file of that name. [Ext] is always appended, even when name
// already ends in it. The write is atomic but unlocked: concurrent writers
// to one name race and the last one wins.
//
// Errors wrap [ErrInvalidName] or [ErrWriteFailed].
func (s *Store) Write(name, title, date, author, content string) (Post, error) {
	stem, err := s.resolve(name)
	if err != nil {
		return Post{}, withContext(err, name, "")
	}

	path := stem + Ext
	p := Post{
		Name:    filepath.Base(stem),
		Title:   title,
		Date:    date,
		Author:  author,
		Content: content,
	}

	mkdirErr := s.fs.MkdirAll(s.dir, dirPerms)
	if mkdirErr != nil {
		return Post{}, withContext(fmt.Errorf("%w: creating posts dir: %w", ErrWriteFailed, mkdirErr), name, path)
	}

	writeErr := s.fs.WriteFileAtomic(path, Encode(p), filePerms)
	if writeErr != nil {
		return Post{}, withContext(fmt.Errorf("%w: %w", ErrWriteFailed, writeErr), name, path)
	}

	return p, nil
}

// Save is [Store.Write] with failures collapsed to ok == false.
func (s *Store) Save(name, title, date, author, content string) (Post, bool) {
	p, err := s.Write(name, title, date, author, content)
	if err != nil {
		s.log.Warn("save post", "name", name, "kind", Kind(err), "err", err)

		return Post{}, false
	}

	s.log.Info("saved post", "name", p.Name)

	return p, true
}
