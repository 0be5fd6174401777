// Package templates renders the storefront pages and htmx fragments.
//
// Pages are html/template sets cloned from a shared layout and exposed as
// templ components, so handlers serve them with templ.Handler.
package templates

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/a-h/templ"

	"finitefield.org/boardgame-store/internal/store/templates/helpers"
	"finitefield.org/boardgame-store/internal/store/theme"
)

//go:embed layout/*.html partials/*.html pages/*.html
var files embed.FS

// Page names.
const (
	PageCatalog      = "catalog"
	PageGame         = "game"
	PageCart         = "cart"
	PageCheckout     = "checkout"
	PageLogin        = "login"
	PageLoginSuccess = "login_success"
	PageDashboard    = "dashboard"
	PageNotFound     = "not_found"
)

// Fragment names.
const (
	FragmentGameCard    = "game_card"
	FragmentCartPanel   = "cart_panel"
	FragmentCartSummary = "cart_summary"
)

// Renderer holds the parsed page and fragment sets. It is safe for concurrent use.
type Renderer struct {
	base  *template.Template
	pages map[string]*template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	base, err := template.New("root").Funcs(funcMap()).ParseFS(files, "layout/*.html", "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pageFiles, err := fs.Glob(files, "pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, file := range pageFiles {
		name := strings.TrimSuffix(path.Base(file), ".html")
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(files, file); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = clone
	}

	return &Renderer{base: base, pages: pages}, nil
}

// MustNew is New for package-level wiring and tests.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Page returns a component rendering the named page inside the layout.
func (r *Renderer) Page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		t, ok := r.pages[name]
		if !ok {
			return fmt.Errorf("templates: unknown page %q", name)
		}
		return t.ExecuteTemplate(w, "layout", data)
	})
}

// Fragment returns a component rendering a single partial without the layout.
func (r *Renderer) Fragment(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if r.base.Lookup(name) == nil {
			return fmt.Errorf("templates: unknown fragment %q", name)
		}
		return r.base.ExecuteTemplate(w, name, data)
	})
}

// Join renders components one after another.
func Join(components ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, c := range components {
			if c == nil {
				continue
			}
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"rubles":           helpers.Rubles,
		"items":            helpers.Items,
		"categoryLabel":    helpers.CategoryLabel,
		"categoryIcon":     helpers.CategoryIcon,
		"categoryGradient": helpers.CategoryGradient,
		"navClass":         helpers.NavClass,
		"filterClass":      helpers.FilterClass,
		"markdown":         helpers.Markdown,
		"toggleIcon":       func(t theme.Theme) string { return t.ToggleIcon() },
	}
}
