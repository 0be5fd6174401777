package middleware

import (
	"context"
	"net/http"
)

type requestInfoKeyType int

const requestInfoKey requestInfoKeyType = iota

// RequestInfo holds lightweight request metadata exposed to templates.
type RequestInfo struct {
	Path       string
	RequestURI string
	Method     string
}

// RequestInfoMiddleware annotates the context with the current request path.
func RequestInfoMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := &RequestInfo{
				Path:       r.URL.Path,
				RequestURI: r.URL.RequestURI(),
				Method:     r.Method,
			}
			ctx := context.WithValue(r.Context(), requestInfoKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestInfoFromContext returns the request metadata stored by RequestInfoMiddleware.
func RequestInfoFromContext(ctx context.Context) (*RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey).(*RequestInfo)
	return info, ok && info != nil
}

// RequestPathFromContext returns the request path or "/" when unavailable.
func RequestPathFromContext(ctx context.Context) string {
	if info, ok := RequestInfoFromContext(ctx); ok && info.Path != "" {
		return info.Path
	}
	return "/"
}

// RequestURIFromContext returns path plus query, used as the return target of forms.
func RequestURIFromContext(ctx context.Context) string {
	if info, ok := RequestInfoFromContext(ctx); ok && info.RequestURI != "" {
		return info.RequestURI
	}
	return "/"
}
