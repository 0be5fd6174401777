package helpers

import "strings"

// NavItem is a rendered header navigation entry.
type NavItem struct {
	Href   string
	Label  string
	Active bool
}

type navEntry struct {
	path   string
	label  string
	prefix bool
}

var mainNav = []navEntry{
	{path: "/", label: "🎮 Каталог"},
	{path: "/cart", label: "🛒 Корзина", prefix: true},
	{path: "/login", label: "🔐 Вход"},
	{path: "/dashboard", label: "📊 Dashboard"},
}

// Navigation builds the header links with the active state for currentPath.
func Navigation(currentPath string) []NavItem {
	items := make([]NavItem, 0, len(mainNav))
	for _, entry := range mainNav {
		items = append(items, NavItem{
			Href:   entry.path,
			Label:  entry.label,
			Active: NavActive(currentPath, entry.path, entry.prefix),
		})
	}
	return items
}

// NavActive reports whether current should highlight the menu item for pattern.
func NavActive(current, pattern string, prefix bool) bool {
	current = NormalizeRoute(current)
	target := NormalizeRoute(pattern)

	if prefix && target != "/" {
		return current == target || strings.HasPrefix(current, target+"/")
	}
	return current == target
}

// NormalizeRoute cleans a request path for comparison.
func NormalizeRoute(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
