package ui

import (
	"context"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"finitefield.org/boardgame-store/internal/store/catalog"
	custommw "finitefield.org/boardgame-store/internal/store/httpserver/middleware"
	"finitefield.org/boardgame-store/internal/store/login"
	"finitefield.org/boardgame-store/internal/store/observability"
	"finitefield.org/boardgame-store/internal/store/session"
	"finitefield.org/boardgame-store/internal/store/templates"
	"finitefield.org/boardgame-store/internal/store/templates/helpers"
)

// Dependencies collects the services required by the UI handlers.
type Dependencies struct {
	Catalog       catalog.Service
	Renderer      *templates.Renderer
	Authenticator login.Authenticator
	// RedirectDelay is how long the login confirmation stays on screen.
	RedirectDelay time.Duration
	// OrderNumber generates checkout confirmation numbers.
	OrderNumber func() string
}

// Handlers exposes HTTP handlers for storefront pages and fragments.
type Handlers struct {
	catalog       catalog.Service
	renderer      *templates.Renderer
	authenticator login.Authenticator
	redirectDelay time.Duration
	orderNumber   func() string
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	service := deps.Catalog
	if service == nil {
		service = catalog.NewStaticService(nil)
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = templates.MustNew()
	}
	authenticator := deps.Authenticator
	if authenticator == nil {
		authenticator = login.NewStubAuthenticator(0)
	}
	delay := deps.RedirectDelay
	if delay < 0 {
		delay = 0
	}
	orderNumber := deps.OrderNumber
	if orderNumber == nil {
		orderNumber = uuid.NewString
	}
	return &Handlers{
		catalog:       service,
		renderer:      renderer,
		authenticator: authenticator,
		redirectDelay: delay,
		orderNumber:   orderNumber,
	}
}

// pageState is what every page handler needs: the session and the catalog it prices against.
type pageState struct {
	sess  *session.Session
	games []catalog.Game
}

func (h *Handlers) load(w http.ResponseWriter, r *http.Request) (pageState, bool) {
	ctx := r.Context()
	sess, ok := custommw.SessionFromContext(ctx)
	if !ok {
		observability.FromContext(ctx).Error("session missing from request context")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return pageState{}, false
	}
	games, err := h.catalog.Games(ctx)
	if err != nil {
		observability.FromContext(ctx).Error("catalog: list games failed", zap.Error(err))
		http.Error(w, "Каталог временно недоступен", http.StatusServiceUnavailable)
		return pageState{}, false
	}
	return pageState{sess: sess, games: games}, true
}

func (h *Handlers) base(ctx context.Context, st pageState, title string) templates.Base {
	path := custommw.RequestPathFromContext(ctx)
	email := ""
	if acct := st.sess.Account(); acct != nil {
		email = acct.Email
	}
	return templates.Base{
		Title:       title,
		CurrentPath: path,
		ReturnURI:   returnURI(ctx, path),
		Nav:         helpers.Navigation(path),
		Theme:       st.sess.Theme(),
		CSRFToken:   custommw.CSRFTokenFromContext(ctx),
		Flash:       st.sess.PopFlash(),
		Summary:     summary(st, false),
		Email:       email,
	}
}

// returnURI keeps the query (e.g. the catalog filter) for pages reached by GET.
// Pages rendered from a POST fall back to their path.
func returnURI(ctx context.Context, path string) string {
	if info, ok := custommw.RequestInfoFromContext(ctx); ok && info.Method == http.MethodGet {
		return safeReturnPath(custommw.RequestURIFromContext(ctx), path)
	}
	return path
}

func summary(st pageState, oob bool) templates.Summary {
	c := st.sess.Cart()
	return templates.Summary{
		Items: c.TotalItems(),
		Total: c.TotalPrice(st.games),
		OOB:   oob,
	}
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, component templ.Component, status int) {
	templ.Handler(component, templ.WithStatus(status), templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			observability.FromContext(r.Context()).Error("render failed", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		})
	})).ServeHTTP(w, r)
}

// NotFound renders the storefront 404 page.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r, "Страница не найдена")
}

func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request, message string) {
	if custommw.IsHTMXRequest(r.Context()) {
		http.Error(w, message, http.StatusNotFound)
		return
	}
	st, ok := h.load(w, r)
	if !ok {
		return
	}
	page := templates.NotFoundPage{
		Base:    h.base(r.Context(), st, "Не найдено"),
		Message: message,
	}
	h.render(w, r, h.renderer.Page(templates.PageNotFound, page), http.StatusNotFound)
}
