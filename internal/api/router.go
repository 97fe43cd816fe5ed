package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.StripSlashes)
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	// System Administration (no auth required)
	r.Get("/healthcheck", s.handleHealth)
	r.Get("/docs/json", s.handleOpenAPI)
	r.Get("/docs/yaml", s.handleOpenAPIYAML)

	// Redirects
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/redirect", s.handleRedirect)
		r.Get("/redirect/*", s.handleRedirect)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleRedirect sends the client to the configured redirect target, keeping
// the path below /redirect and the query string.
func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	if s.cfg.RedirectURL == nil || *s.cfg.RedirectURL == "" {
		writeError(w, r, http.StatusNotImplemented, ErrCodeNotConfigured, "redirect target is not configured")
		return
	}

	target := redirectTarget(*s.cfg.RedirectURL, chi.URLParam(r, "*"), r.URL.RawQuery)
	if c, ok := claimsFromContext(r.Context()); ok {
		s.logger.Debug("redirecting", "mechanism", c.Mechanism, "subject", c.Subject)
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// redirectTarget joins base and rest with exactly one slash and appends query.
func redirectTarget(base, rest, query string) string {
	target := base
	if rest != "" {
		target = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(rest, "/")
	}
	if query != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query
	}
	return target
}
