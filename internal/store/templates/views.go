package templates

import (
	"html/template"

	"finitefield.org/boardgame-store/internal/store/cart"
	"finitefield.org/boardgame-store/internal/store/catalog"
	"finitefield.org/boardgame-store/internal/store/templates/helpers"
	"finitefield.org/boardgame-store/internal/store/theme"
)

// Summary is the header cart badge.
type Summary struct {
	Items int
	Total int64
	// OOB marks the fragment for an htmx out-of-band swap.
	OOB bool
}

// ThemeToggle is the header theme switch.
type ThemeToggle struct {
	Theme      theme.Theme
	CSRFToken  string
	ReturnPath string
}

// Base carries the layout data shared by every page.
type Base struct {
	Title       string
	CurrentPath string
	// ReturnURI is where page-level forms send the visitor back to, query included.
	ReturnURI   string
	Nav         []helpers.NavItem
	Theme       theme.Theme
	CSRFToken   string
	Flash       string
	Summary     Summary
	Email       string
}

// SignedIn reports whether the layout should show the signed-in account.
func (b Base) SignedIn() bool {
	return b.Email != ""
}

// Toggle returns the theme switch view for the current page.
func (b Base) Toggle() ThemeToggle {
	ret := b.ReturnURI
	if ret == "" {
		ret = b.CurrentPath
	}
	return ThemeToggle{Theme: b.Theme, CSRFToken: b.CSRFToken, ReturnPath: ret}
}

// FilterOption is one button of the catalog filter nav.
type FilterOption struct {
	Href   string
	Icon   string
	Label  string
	Active bool
}

// GameCard is a catalog card with its cart counter.
type GameCard struct {
	Game       catalog.Game
	Quantity   int
	CSRFToken  string
	ReturnPath string
}

// CatalogPage lists the filtered catalog.
type CatalogPage struct {
	Base
	Filters []FilterOption
	Cards   []GameCard
}

// GamePage shows a single game.
type GamePage struct {
	Base
	Card        GameCard
	Description template.HTML
}

// CartPanel is the cart listing swapped in place by htmx.
type CartPanel struct {
	Lines      []cart.Line
	TotalItems int
	TotalPrice int64
	CSRFToken  string
}

// Empty reports whether there is nothing priced in the cart.
func (p CartPanel) Empty() bool {
	return len(p.Lines) == 0
}

// CartPage wraps the cart panel in the layout.
type CartPage struct {
	Base
	Panel CartPanel
}

// CheckoutPage confirms an order.
type CheckoutPage struct {
	Base
	OrderNumber string
	TotalItems  int
	TotalPrice  int64
}

// LoginPage is the sign-in form.
type LoginPage struct {
	Base
	FormEmail string
	Error     string
}

// LoginSuccessPage confirms sign-in and forwards to RedirectTo after DelaySeconds.
type LoginSuccessPage struct {
	Base
	RedirectTo   string
	DelaySeconds int
}

// DashboardPage shows cart statistics.
type DashboardPage struct {
	Base
	TotalItems int
	TotalPrice int64
	Distinct   int
}

// NotFoundPage is rendered for unknown games and routes.
type NotFoundPage struct {
	Base
	Message string
}
