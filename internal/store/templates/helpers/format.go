package helpers

import (
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"finitefield.org/boardgame-store/internal/store/catalog"
)

var rubPrinter = message.NewPrinter(language.Russian)

const defaultGradient = "linear-gradient(135deg, #667eea 0%, #764ba2 100%)"

// Rubles formats a whole-ruble amount with Russian digit grouping, e.g. "5 980 ₽".
func Rubles(amount int64) string {
	return rubPrinter.Sprintf("%d ₽", amount)
}

// Items renders the header item counter.
func Items(n int) string {
	return fmt.Sprintf("%d товаров", n)
}

// CategoryLabel returns the filter button caption for a category.
func CategoryLabel(c catalog.Category) string {
	switch c {
	case catalog.CategoryFamily:
		return "Семейные"
	case catalog.CategoryStrategy:
		return "Стратегии"
	case catalog.CategoryAdventure:
		return "Приключения"
	case catalog.CategoryRPG:
		return "Ролевые"
	default:
		return string(c)
	}
}

// CategoryIcon returns the emoji shown on cards and filter buttons.
func CategoryIcon(c catalog.Category) string {
	switch c {
	case catalog.CategoryFamily:
		return "👨‍👩‍👧‍👦"
	case catalog.CategoryStrategy:
		return "♟️"
	case catalog.CategoryAdventure:
		return "🗺️"
	case catalog.CategoryRPG:
		return "⚔️"
	default:
		return "🎲"
	}
}

// CategoryGradient returns the card background for a category.
func CategoryGradient(c catalog.Category) template.CSS {
	switch c {
	case catalog.CategoryFamily:
		return template.CSS(defaultGradient)
	case catalog.CategoryStrategy:
		return template.CSS("linear-gradient(135deg, #f093fb 0%, #f5576c 100%)")
	case catalog.CategoryAdventure:
		return template.CSS("linear-gradient(135deg, #4facfe 0%, #00f2fe 100%)")
	case catalog.CategoryRPG:
		return template.CSS("linear-gradient(135deg, #43e97b 0%, #38f9d7 100%)")
	default:
		return template.CSS(defaultGradient)
	}
}

// NavClass returns header link classes.
func NavClass(active bool) string {
	if active {
		return "nav-link active"
	}
	return "nav-link"
}

// FilterClass returns filter button classes.
func FilterClass(active bool) string {
	if active {
		return "filter-btn active"
	}
	return "filter-btn"
}

// NormalizeSpaces replaces the no-break spaces used in digit grouping with plain spaces.
func NormalizeSpaces(s string) string {
	return strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(s)
}
