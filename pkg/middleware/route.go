package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// routeOf returns the matched chi route pattern, or the request path when
// no pattern is known. It must be called after the handler has run, since
// chi fills the pattern in while routing.
func routeOf(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	if r.URL.Path == "" {
		return "/"
	}
	return r.URL.Path
}
