package ui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSafeReturnPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{"", "/"},
		{"/cart", "/cart"},
		{"/?category=rpg", "/?category=rpg"},
		{"  /dashboard ", "/dashboard"},
		{"/games/../cart", "/cart"},
		{"https://evil.example/", "/"},
		{"//evil.example/path", "/"},
		{"/\\evil.example", "/"},
		{"cart", "/"},
		{"javascript:alert(1)", "/"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, safeReturnPath(tc.raw, "/"), "raw %q", tc.raw)
	}
}
