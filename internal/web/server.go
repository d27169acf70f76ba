// Package web serves the post index and post pages over HTTP.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/calvinalkan/flatblog/internal/post"
	"github.com/calvinalkan/flatblog/internal/render"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Posts is the read side of [post.Store] the server needs.
type Posts interface {
	SearchPosts(pattern string) ([]post.Post, error)
	Load(name string) (post.Post, bool)
}

// Server handles GET / and GET /post.
type Server struct {
	posts  Posts
	render *render.Renderer
	log    *slog.Logger
	mux    *http.ServeMux
}

// New returns a server reading from posts.
func New(posts Posts, r *render.Renderer, log *slog.Logger) *Server {
	if posts == nil || r == nil {
		panic("web: posts and renderer are required")
	}

	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	s := &Server{posts: posts, render: r, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /{$}", s.index)
	s.mux.HandleFunc("GET /post", s.showPost)

	return s
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	page := render.IndexPage{Query: query}
	status := http.StatusOK

	posts, err := s.posts.SearchPosts(query)

	switch {
	case errors.Is(err, post.ErrInvalidPattern):
		s.log.Debug("rejected search", "query", query, "err", err)

		page.Invalid = true
		status = http.StatusBadRequest
	case err != nil:
		s.log.Error("search posts", "query", query, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	default:
		page.Posts = posts
	}

	s.write(w, status, func(buf *bytes.Buffer) error { return s.render.Index(buf, page) })
}

func (s *Server) showPost(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	p, ok := s.posts.Load(name)
	if !ok {
		s.write(w, http.StatusNotFound, func(buf *bytes.Buffer) error { return s.render.NotFound(buf) })

		return
	}

	s.write(w, http.StatusOK, func(buf *bytes.Buffer) error { return s.render.Post(buf, p) })
}

func (s *Server) write(w http.ResponseWriter, status int, fn func(*bytes.Buffer) error) {
	var buf bytes.Buffer

	err := fn(&buf)
	if err != nil {
		s.log.Error("render page", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully, letting in-flight requests finish within a timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.log.Info("serving", "addr", ln.Addr().String())

	errCh := make(chan error, 1)

	go func() {
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
