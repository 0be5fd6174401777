package ui

import (
	"net/url"
	"path"
	"strings"
)

// safeReturnPath accepts only local absolute paths; anything else yields fallback.
func safeReturnPath(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" || parsed.User != nil {
		return fallback
	}

	p := parsed.Path
	if p == "" || !strings.HasPrefix(p, "/") {
		return fallback
	}
	unescaped, err := url.PathUnescape(p)
	if err != nil || strings.Contains(unescaped, "\\") {
		return fallback
	}
	cleaned := path.Clean(unescaped)
	if strings.HasPrefix(cleaned, "//") {
		return fallback
	}

	target := cleaned
	if parsed.RawQuery != "" {
		target += "?" + parsed.RawQuery
	}
	return target
}
