package theme

import "strings"

// Theme is the colour scheme chosen by the visitor.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Default is the theme used before the visitor toggles it.
const Default = Light

// Parse maps a stored value to a Theme, defaulting to Light.
func Parse(raw string) Theme {
	if Theme(strings.ToLower(strings.TrimSpace(raw))) == Dark {
		return Dark
	}
	return Light
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// IsDark reports whether t is the dark theme.
func (t Theme) IsDark() bool {
	return t == Dark
}

// ToggleIcon is the glyph shown on the toggle button: a moon offers dark mode, a sun offers light mode.
func (t Theme) ToggleIcon() string {
	if t == Dark {
		return "☀️"
	}
	return "🌙"
}

func (t Theme) String() string {
	return string(Parse(string(t)))
}
