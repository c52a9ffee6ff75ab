package handler

import (
	"net/http"
	"virtual-env-server/internal/config"
)

// indexPage is the file http.FileServer already serves for a directory
const indexPage = "index.html"

// CORSHeaders returns the headers added to every response
func CORSHeaders() http.Header {
	return http.Header{
		"Access-Control-Allow-Origin":  {"*"},
		"Access-Control-Allow-Methods": {"GET, POST, OPTIONS"},
		"Access-Control-Allow-Headers": {"Content-Type"},
	}
}

// Option configures a Static handler
type Option func(*Static)

// WithLanding sets the file served for requests to "/"
func WithLanding(name string) Option {
	return func(s *Static) {
		s.landing = name
	}
}

// WithHeaders replaces the headers added to every response
func WithHeaders(h http.Header) Option {
	return func(s *Static) {
		s.headers = h.Clone()
	}
}

// WithBase replaces the file-serving handler the hooks wrap
func WithBase(base http.Handler) Option {
	return func(s *Static) {
		s.base = base
	}
}

// Static serves files from a directory. Requests for "/" are rewritten
// to the landing page before the file server sees them, and the
// configured headers are added to every response right before the
// header block is written.
type Static struct {
	base    http.Handler
	landing string
	headers http.Header
}

// NewStatic creates a static handler rooted at dir
func NewStatic(dir string, opts ...Option) *Static {
	s := &Static{
		base:    http.FileServer(http.Dir(dir)),
		landing: config.DefaultLanding,
		headers: CORSHeaders(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeHTTP implements http.Handler
func (s *Static) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	hw := newHeaderWriter(w, s.headers)
	s.base.ServeHTTP(hw, s.Rewrite(r))

	// The base handler wrote nothing; net/http will send an implicit 200.
	hw.applyHeaders()
}

// Rewrite returns the request the file server should see. Only the exact
// root path is rewritten; the original request is never modified.
func (s *Static) Rewrite(r *http.Request) *http.Request {
	if r.URL.Path != "/" || s.landing == "" || s.landing == indexPage {
		return r
	}

	r2 := r.Clone(r.Context())
	r2.URL.Path = "/" + s.landing
	r2.URL.RawPath = ""
	return r2
}
