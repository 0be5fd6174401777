package testutil

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"finitefield.org/boardgame-store/internal/store/catalog"
	"finitefield.org/boardgame-store/internal/store/httpserver"
	"finitefield.org/boardgame-store/internal/store/login"
	"finitefield.org/boardgame-store/internal/store/session"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithCatalog serves a custom catalog instead of the seed.
func WithCatalog(c *catalog.Catalog) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Catalog = catalog.NewStaticService(c)
	}
}

// WithAuthenticator overrides the login authenticator.
func WithAuthenticator(auth login.Authenticator) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Authenticator = auth
	}
}

// WithOrderNumber fixes checkout confirmation numbers.
func WithOrderNumber(fn func() string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.OrderNumber = fn
	}
}

// NewServer constructs an httptest server running the storefront stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	sessions, err := session.NewManager(session.Config{
		CookieName:  "store_session",
		HashKey:     []byte("12345678901234567890123456789012"),
		BlockKey:    []byte("abcdefghijklmnopqrstuvwxyzABCDEF"),
		IdleTimeout: time.Hour,
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	cfg := httpserver.Config{
		Address:        ":0",
		Catalog:        catalog.NewStaticService(nil),
		Sessions:       sessions,
		Authenticator:  login.NewStubAuthenticator(0),
		RedirectDelay:  time.Second,
		CSRFCookieName: "store_csrf",
		CSRFHeaderName: "X-CSRF-Token",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	srv, err := httpserver.New(cfg)
	if err != nil {
		t.Fatalf("httpserver: %v", err)
	}
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

// Browser is a cookie-keeping client that does not follow redirects.
type Browser struct {
	t      testing.TB
	base   string
	client *http.Client
}

// NewBrowser returns a client bound to ts with its own cookie jar.
func NewBrowser(t testing.TB, ts *httptest.Server) *Browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &Browser{
		t:    t,
		base: ts.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Doc parses the body as HTML.
func (r Response) Doc(t testing.TB) *goquery.Document {
	t.Helper()
	return ParseHTML(t, r.Body)
}

// Get issues a GET request.
func (b *Browser) Get(path string, header http.Header) Response {
	b.t.Helper()
	return b.do(http.MethodGet, path, nil, header)
}

// Post submits a form. The CSRF token from the cookie jar is added unless form already has one.
func (b *Browser) Post(path string, form url.Values, header http.Header) Response {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if _, ok := form["csrf_token"]; !ok {
		form.Set("csrf_token", b.CSRFToken())
	}
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(http.MethodPost, path, strings.NewReader(form.Encode()), header)
}

// CSRFToken returns the token cookie, fetching the catalog first when none was issued yet.
func (b *Browser) CSRFToken() string {
	b.t.Helper()
	if token := b.cookie("store_csrf"); token != "" {
		return token
	}
	b.Get("/", nil)
	return b.cookie("store_csrf")
}

// Jar exposes the cookie jar so tests can share the session with a custom client.
func (b *Browser) Jar() http.CookieJar {
	return b.client.Jar
}

// HTMX returns headers that mark a request as issued by htmx.
func HTMX(target string) http.Header {
	h := http.Header{}
	h.Set("HX-Request", "true")
	if target != "" {
		h.Set("HX-Target", target)
	}
	return h
}

func (b *Browser) cookie(name string) string {
	u, err := url.Parse(b.base)
	if err != nil {
		b.t.Fatalf("parse base url: %v", err)
	}
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (b *Browser) do(method, path string, body io.Reader, header http.Header) Response {
	b.t.Helper()
	req, err := http.NewRequest(method, b.base+path, body)
	if err != nil {
		b.t.Fatalf("new request: %v", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := b.client.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		b.t.Fatalf("read body: %v", err)
	}
	return Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: payload}
}
