package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/boardgame-store/internal/store/catalog"
	custommw "finitefield.org/boardgame-store/internal/store/httpserver/middleware"
	"finitefield.org/boardgame-store/internal/store/httpserver/ui"
	"finitefield.org/boardgame-store/internal/store/login"
	"finitefield.org/boardgame-store/internal/store/observability"
	"finitefield.org/boardgame-store/internal/store/templates"
	"finitefield.org/boardgame-store/public"
)

// Config holds runtime options for the storefront HTTP server.
type Config struct {
	Address       string
	Catalog       catalog.Service
	Sessions      custommw.SessionStore
	Authenticator login.Authenticator
	Logger        *zap.Logger
	RedirectDelay time.Duration
	// OrderNumber overrides checkout number generation; nil uses random UUIDs.
	OrderNumber func() string

	CSRFCookieName   string
	CSRFCookieSecure bool
	CSRFHeaderName   string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) (*http.Server, error) {
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       durationOr(cfg.ReadTimeout, 10*time.Second),
		WriteTimeout:      durationOr(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:       durationOr(cfg.IdleTimeout, 60*time.Second),
	}, nil
}

// NewHandler builds the router without binding a listener.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("httpserver: session store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	renderer, err := templates.New()
	if err != nil {
		return nil, fmt.Errorf("httpserver: %w", err)
	}
	staticContent, err := public.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("httpserver: embed static: %w", err)
	}

	handlers := ui.NewHandlers(ui.Dependencies{
		Catalog:       cfg.Catalog,
		Renderer:      renderer,
		Authenticator: cfg.Authenticator,
		RedirectDelay: cfg.RedirectDelay,
		OrderNumber:   cfg.OrderNumber,
	})

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.TraceMiddleware())
	router.Use(observability.RequestLogger(logger))
	router.Use(observability.Recoverer(logger))
	router.Use(chimw.Timeout(60 * time.Second))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/public/static/*", http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent))))

	mountStoreRoutes(router, handlers, routeOptions{
		Sessions: cfg.Sessions,
		CSRF: custommw.CSRFConfig{
			CookieName: cfg.CSRFCookieName,
			HeaderName: cfg.CSRFHeaderName,
			Secure:     cfg.CSRFCookieSecure,
		},
	})

	return router, nil
}

type routeOptions struct {
	Sessions custommw.SessionStore
	CSRF     custommw.CSRFConfig
}

func mountStoreRoutes(router chi.Router, h *ui.Handlers, opts routeOptions) {
	router.Group(func(r chi.Router) {
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.Session(opts.Sessions))
		r.Use(custommw.CSRF(opts.CSRF))
		r.Use(custommw.RequestInfoMiddleware())

		r.Get("/", h.Catalog)
		r.Get("/games/{id}", h.Game)

		r.Get("/cart", h.Cart)
		r.Route("/cart/items/{id}", func(r chi.Router) {
			r.Post("/increase", h.IncreaseItem)
			r.Post("/decrease", h.DecreaseItem)
			r.Post("/quantity", h.SetItemQuantity)
			r.Post("/remove", h.RemoveItem)
		})
		r.Post("/cart/clear", h.ClearCart)
		r.Post("/cart/checkout", h.Checkout)

		r.Get("/login", h.LoginForm)
		r.Post("/login", h.LoginSubmit)
		r.Post("/logout", h.Logout)
		r.Get("/dashboard", h.Dashboard)
		r.Post("/theme", h.ToggleTheme)

		RegisterFragment(r, "/fragments/cart-summary", h.CartSummary)

		r.NotFound(h.NotFound)
	})
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Get(pattern, handler)
}

func durationOr(value, fallback time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return fallback
}
