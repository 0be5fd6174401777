package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"finitefield.org/boardgame-store/internal/store/cart"
	"finitefield.org/boardgame-store/internal/store/login"
	"finitefield.org/boardgame-store/internal/store/theme"
)

const (
	defaultCookieName  = "store_session"
	defaultCookiePath  = "/"
	defaultIdleTimeout = 2 * time.Hour
)

// ErrExpired indicates the stored session is no longer valid due to idle or absolute expiry.
var ErrExpired = errors.New("session expired")

// ErrInvalidConfig indicates the manager was initialised with missing or invalid options.
var ErrInvalidConfig = errors.New("session: invalid config")

// Account is the signed-in visitor persisted in the session.
type Account struct {
	Email      string    `json:"email"`
	SignedInAt time.Time `json:"signedInAt"`
}

// Data represents the full persisted session payload.
type Data struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"createdAt"`
	LastActive time.Time      `json:"lastActive"`
	ExpiresAt  time.Time      `json:"expiresAt,omitempty"`
	Cart       map[string]int `json:"cart,omitempty"`
	Theme      string         `json:"theme,omitempty"`
	Account    *Account       `json:"account,omitempty"`
	Flash      string         `json:"flash,omitempty"`
}

// Session holds mutable state for the current request lifecycle.
type Session struct {
	data      Data
	dirty     bool
	destroyed bool
}

// Config controls cookie encoding and lifecycle limits for the session manager.
type Config struct {
	CookieName     string
	HashKey        []byte
	BlockKey       []byte
	CookiePath     string
	CookieSecure   bool
	CookieSameSite http.SameSite

	// IdleTimeout expires sessions that have not been used for this long.
	IdleTimeout time.Duration
	// Lifetime is an optional absolute limit. Zero keeps the session for as
	// long as the browser keeps its session cookie.
	Lifetime time.Duration
	Now      func() time.Time
}

// Manager decodes and persists session state via signed and encrypted cookies.
type Manager struct {
	cfg   Config
	codec *securecookie.SecureCookie
	now   func() time.Time
}

// NewManager constructs a Manager using the provided configuration.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.HashKey) == 0 {
		return nil, fmt.Errorf("%w: hash key is required", ErrInvalidConfig)
	}
	switch len(cfg.BlockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: block key must be 16, 24 or 32 bytes", ErrInvalidConfig)
	}

	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = defaultCookiePath
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.CookieSameSite == http.SameSiteDefaultMode {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	// Browser-session cookies carry no Max-Age, so the codec must not reject them by age.
	codec.MaxAge(0)

	return &Manager{cfg: cfg, codec: codec, now: nowFn}, nil
}

// Load retrieves the session from the incoming request or creates a new one.
// Cookies that fail to decode are treated as absent.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return m.New(), nil
	}

	var stored Data
	if err := m.codec.Decode(m.cfg.CookieName, cookie.Value, &stored); err != nil {
		return m.New(), nil
	}

	sess := m.sessionFromData(stored)
	if m.isExpired(sess, m.now()) {
		return nil, ErrExpired
	}
	return sess, nil
}

// Save writes the session back to the response as a cookie. Destroyed sessions clear the cookie.
func (m *Manager) Save(w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return errors.New("session: nil session")
	}
	if sess.destroyed {
		http.SetCookie(w, m.expiredCookie())
		return nil
	}

	sess.Touch(m.now())

	encoded, err := m.codec.Encode(m.cfg.CookieName, sess.data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	cookie := &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    encoded,
		Path:     m.cfg.CookiePath,
		Secure:   m.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: m.cfg.CookieSameSite,
	}
	if !sess.data.ExpiresAt.IsZero() {
		expiry := sess.data.ExpiresAt.UTC()
		cookie.Expires = expiry
		if remaining := expiry.Sub(m.now()); remaining <= 0 {
			cookie.MaxAge = -1
		} else {
			cookie.MaxAge = int(remaining.Round(time.Second).Seconds())
		}
	}

	http.SetCookie(w, cookie)
	return nil
}

// Destroy invalidates the session cookie immediately.
func (m *Manager) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, m.expiredCookie())
}

// New returns a pristine session with a generated identifier.
func (m *Manager) New() *Session {
	now := m.now().UTC()
	data := Data{
		ID:         mustGenerateToken(24),
		CreatedAt:  now,
		LastActive: now,
		Theme:      string(theme.Default),
	}
	if m.cfg.Lifetime > 0 {
		data.ExpiresAt = now.Add(m.cfg.Lifetime)
	}
	return &Session{data: data, dirty: true}
}

func (m *Manager) sessionFromData(d Data) *Session {
	if d.ID == "" {
		fresh := m.New()
		fresh.data.Cart = d.Cart
		fresh.data.Theme = d.Theme
		return fresh
	}
	return &Session{data: d}
}

func (m *Manager) isExpired(sess *Session, now time.Time) bool {
	now = now.UTC()
	if !sess.data.ExpiresAt.IsZero() && now.After(sess.data.ExpiresAt.UTC()) {
		return true
	}
	last := sess.data.LastActive
	if last.IsZero() {
		last = sess.data.CreatedAt
	}
	return !last.IsZero() && now.Sub(last) > m.cfg.IdleTimeout
}

func (m *Manager) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     m.cfg.CookiePath,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: m.cfg.CookieSameSite,
	}
}

// ID returns the stable session identifier.
func (s *Session) ID() string {
	return s.data.ID
}

// CreatedAt returns the session creation timestamp.
func (s *Session) CreatedAt() time.Time {
	return s.data.CreatedAt
}

// LastActive returns the last access timestamp.
func (s *Session) LastActive() time.Time {
	return s.data.LastActive
}

// Cart returns a working copy of the stored cart. Call SetCart to persist changes.
func (s *Session) Cart() *cart.Cart {
	return cart.FromSnapshot(s.data.Cart)
}

// SetCart stores the cart contents.
func (s *Session) SetCart(c *cart.Cart) {
	if c == nil || c.Empty() {
		if len(s.data.Cart) == 0 {
			return
		}
		s.data.Cart = nil
		s.dirty = true
		return
	}
	s.data.Cart = c.Snapshot()
	s.dirty = true
}

// Theme returns the visitor's theme.
func (s *Session) Theme() theme.Theme {
	return theme.Parse(s.data.Theme)
}

// SetTheme stores the visitor's theme.
func (s *Session) SetTheme(t theme.Theme) {
	if s.data.Theme == string(t) {
		return
	}
	s.data.Theme = string(t)
	s.dirty = true
}

// Account returns the signed-in account, if any.
func (s *Session) Account() *Account {
	return s.data.Account
}

// SignIn records acct as the signed-in visitor.
func (s *Session) SignIn(acct *login.Account) {
	if acct == nil {
		return
	}
	s.data.Account = &Account{Email: acct.Email, SignedInAt: acct.SignedInAt}
	s.dirty = true
}

// SignOut forgets the signed-in account but keeps the cart and theme.
func (s *Session) SignOut() {
	if s.data.Account == nil {
		return
	}
	s.data.Account = nil
	s.dirty = true
}

// SetFlash stores a one-shot message for the next rendered page.
func (s *Session) SetFlash(msg string) {
	s.data.Flash = msg
	s.dirty = true
}

// PopFlash returns and clears the pending flash message.
func (s *Session) PopFlash() string {
	msg := s.data.Flash
	if msg != "" {
		s.data.Flash = ""
		s.dirty = true
	}
	return msg
}

// Destroy marks the session for deletion at the end of the request.
func (s *Session) Destroy() {
	s.destroyed = true
	s.dirty = true
}

// Destroyed exposes the destroy marker.
func (s *Session) Destroyed() bool {
	return s.destroyed
}

// Touch updates the last active timestamp.
func (s *Session) Touch(now time.Time) {
	now = now.UTC()
	if now.After(s.data.LastActive) {
		s.data.LastActive = now
		s.dirty = true
	}
}

// Dirty indicates whether the session contents have changed during this request.
func (s *Session) Dirty() bool {
	return s.dirty
}

func mustGenerateToken(length int) string {
	token, err := generateToken(length)
	if err != nil {
		panic(err)
	}
	return token
}

func generateToken(length int) (string, error) {
	if length <= 0 {
		length = 32
	}
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
