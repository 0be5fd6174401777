package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"finitefield.org/boardgame-store/internal/store/catalog"
)

func TestRubles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount int64
		want   string
	}{
		{0, "0 ₽"},
		{1890, "1 890 ₽"},
		{5980, "5 980 ₽"},
		{1234567, "1 234 567 ₽"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeSpaces(Rubles(tc.amount)))
	}
}

func TestItems(t *testing.T) {
	assert.Equal(t, "0 товаров", Items(0))
	assert.Equal(t, "3 товаров", Items(3))
}

func TestCategoryPresentation(t *testing.T) {
	t.Parallel()

	for _, c := range catalog.Categories {
		assert.NotEqual(t, string(c), CategoryLabel(c), "label for %s", c)
		assert.NotEqual(t, "🎲", CategoryIcon(c), "icon for %s", c)
		assert.True(t, strings.HasPrefix(string(CategoryGradient(c)), "linear-gradient"))
	}
	assert.Equal(t, "🎲", CategoryIcon("unknown"))
	assert.Equal(t, "Ролевые", CategoryLabel(catalog.CategoryRPG))
}

func TestNavigation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path   string
		active string
	}{
		{"/", "/"},
		{"", "/"},
		{"/cart", "/cart"},
		{"/cart/", "/cart"},
		{"/cart/checkout", "/cart"},
		{"/login", "/login"},
		{"/dashboard", "/dashboard"},
		{"/games/3", ""},
	}
	for _, tc := range tests {
		var active []string
		for _, item := range Navigation(tc.path) {
			if item.Active {
				active = append(active, item.Href)
			}
		}
		if tc.active == "" {
			assert.Empty(t, active, "path %q", tc.path)
			continue
		}
		assert.Equal(t, []string{tc.active}, active, "path %q", tc.path)
	}
}

func TestMarkdownSanitises(t *testing.T) {
	t.Parallel()

	out := string(Markdown("**Тайлы** и <script>alert(1)</script>"))
	assert.Contains(t, out, "<strong>Тайлы</strong>")
	assert.NotContains(t, out, "<script>")
	assert.Empty(t, string(Markdown("")))
}
