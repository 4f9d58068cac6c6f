// Package server exposes the form and matrix pages over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-resourceforms/pkg/page/form"
	"github.com/goliatone/go-resourceforms/pkg/page/matrix"
	"github.com/goliatone/go-resourceforms/pkg/render"
)

// FormatParam selects a renderer by name, e.g. ?format=json.
const FormatParam = "format"

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderers sets the renderers pages can be rendered with, chosen by the
// format query parameter or the Accept header. The first registered renderer
// is the default.
func WithRenderers(registry *render.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.renderers = registry
		}
	}
}

// WithTheme passes a resolved theme to every render.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(s *Server) {
		s.theme = cfg
	}
}

// WithAssets serves files from assets under prefix. Several file systems can
// be given; the first containing a file wins.
func WithAssets(prefix string, assets ...fs.FS) Option {
	return func(s *Server) {
		if prefix != "" {
			s.assetsPrefix = "/" + strings.Trim(prefix, "/")
		}
		s.assets = append(s.assets, assets...)
	}
}

// Server routes requests to the page components.
type Server struct {
	form         *form.Page
	matrix       *matrix.Page
	renderers    *render.Registry
	theme        *theme.RendererConfig
	logger       *zap.Logger
	assetsPrefix string
	assets       []fs.FS
}

// New wires the pages into a server. Both pages are required.
func New(formPage *form.Page, matrixPage *matrix.Page, options ...Option) (*Server, error) {
	if formPage == nil || matrixPage == nil {
		return nil, errors.New("server: form and matrix pages are required")
	}
	s := &Server{
		form:         formPage,
		matrix:       matrixPage,
		logger:       zap.NewNop(),
		assetsPrefix: render.DefaultAssetsPrefix,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.renderers == nil || len(s.renderers.List()) == 0 {
		return nil, errors.New("server: at least one renderer is required")
	}
	return s, nil
}

// Handler returns the routed handler wrapped with request id, logging and
// recovery middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleForm)
	mux.HandleFunc("GET /matrix", s.handleMatrix)
	mux.HandleFunc("POST /matrix/add", s.handleMatrixAdd)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if len(s.assets) > 0 {
		files := http.FileServer(http.FS(layeredFS(s.assets)))
		mux.Handle("GET "+s.assetsPrefix+"/", http.StripPrefix(s.assetsPrefix, files))
	}
	return requestID(s.logRequests(recoverPanics(s.logger, mux)))
}

// Run serves on addr until ctx is done, then shuts down gracefully within
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	renderer, ok := s.renderer(w, r)
	if !ok {
		return
	}
	if _, err := s.form.Mount(r.Context()); err != nil {
		s.fail(w, r, http.StatusServiceUnavailable, err)
		return
	}
	out, err := s.form.Render(r.Context(), renderer, s.renderOptions())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	s.write(w, renderer.ContentType(), out)
}

func (s *Server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	renderer, ok := s.renderer(w, r)
	if !ok {
		return
	}
	// A failed load is kept in the matrix state and rendered as an error.
	if err := s.matrix.Mount(r.Context()); err != nil {
		loggerFrom(r, s.logger).Warn("matrix mount failed", zap.Error(err))
	}
	out, err := s.matrix.Render(r.Context(), renderer, s.renderOptions())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	s.write(w, renderer.ContentType(), out)
}

func (s *Server) handleMatrixAdd(w http.ResponseWriter, r *http.Request) {
	placeholder, err := s.matrix.Add(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(placeholder)
		return
	}
	http.Redirect(w, r, "/matrix", http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// renderer picks the ?format renderer, falling back to Accept negotiation.
func (s *Server) renderer(w http.ResponseWriter, r *http.Request) (render.Renderer, bool) {
	var (
		renderer render.Renderer
		err      error
	)
	if format := r.URL.Query().Get(FormatParam); format != "" {
		renderer, err = s.renderers.Resolve(format)
	} else {
		renderer, err = s.renderers.Negotiate(r.Header.Get("Accept"))
	}
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return nil, false
	}
	return renderer, true
}

func (s *Server) renderOptions() render.RenderOptions {
	return render.RenderOptions{
		Standalone:   true,
		AssetsPrefix: s.assetsPrefix,
		Theme:        s.theme,
	}
}

func (s *Server) write(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	loggerFrom(r, s.logger).Error("request failed", zap.Int("status", status), zap.Error(err))
	http.Error(w, err.Error(), status)
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get(FormatParam) == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

type layeredFS []fs.FS

func (l layeredFS) Open(name string) (fs.File, error) {
	var firstErr error
	for _, fsys := range l {
		f, err := fsys.Open(name)
		if err == nil {
			return f, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return nil, firstErr
}
