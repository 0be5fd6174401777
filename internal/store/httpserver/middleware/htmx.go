package middleware

import (
	"context"
	"net/http"
	"strings"
)

type htmxKey struct{}

// HTMXInfo is what the storefront reads from the HX-* request headers.
type HTMXInfo struct {
	Request        bool
	Target         string
	HistoryRestore bool
}

// Partial reports whether the response may be a fragment. History restores
// re-fetch the whole page, so they need the layout.
func (i HTMXInfo) Partial() bool {
	return i.Request && !i.HistoryRestore
}

// Targets reports whether htmx will swap the response into the element with id.
func (i HTMXInfo) Targets(id string) bool {
	return i.Target != "" && strings.TrimPrefix(i.Target, "#") == id
}

// HTMX annotates the request context with HTMXInfo. Responses to htmx
// requests vary on HX-Request so caches keep fragments and pages apart.
func HTMX() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := HTMXInfo{
				Request:        headerTrue(r, "HX-Request"),
				Target:         strings.TrimSpace(r.Header.Get("HX-Target")),
				HistoryRestore: headerTrue(r, "HX-History-Restore-Request"),
			}
			if info.Request {
				w.Header().Add("Vary", "HX-Request")
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), htmxKey{}, info)))
		})
	}
}

func headerTrue(r *http.Request, name string) bool {
	return strings.EqualFold(strings.TrimSpace(r.Header.Get(name)), "true")
}

// HTMXInfoFromContext returns the zero value outside the HTMX middleware.
func HTMXInfoFromContext(ctx context.Context) HTMXInfo {
	info, _ := ctx.Value(htmxKey{}).(HTMXInfo)
	return info
}

// IsHTMXRequest is shorthand for HTMXInfoFromContext(ctx).Partial().
func IsHTMXRequest(ctx context.Context) bool {
	return HTMXInfoFromContext(ctx).Partial()
}

// RequireHTMX hides fragment endpoints from direct navigation with a 404.
func RequireHTMX() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsHTMXRequest(r.Context()) {
				http.NotFound(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
