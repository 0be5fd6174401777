package ui

import (
	"context"
	"errors"
	"math"
	"net/http"

	"go.uber.org/zap"

	custommw "finitefield.org/boardgame-store/internal/store/httpserver/middleware"
	"finitefield.org/boardgame-store/internal/store/login"
	"finitefield.org/boardgame-store/internal/store/observability"
	"finitefield.org/boardgame-store/internal/store/templates"
)

const dashboardPath = "/dashboard"

// LoginForm renders the sign-in form.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	st, ok := h.load(w, r)
	if !ok {
		return
	}
	page := templates.LoginPage{Base: h.base(r.Context(), st, "Вход")}
	h.render(w, r, h.renderer.Page(templates.PageLogin, page), http.StatusOK)
}

// LoginSubmit signs the visitor in through the authenticator and shows the
// confirmation that forwards to the dashboard.
func (h *Handlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	st, ok := h.load(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := observability.FromContext(ctx)
	creds := login.Credentials{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	acct, err := h.authenticator.Authenticate(ctx, creds)
	switch {
	case errors.Is(err, login.ErrMissingCredentials):
		page := templates.LoginPage{
			Base:      h.base(ctx, st, "Вход"),
			FormEmail: creds.Email,
			Error:     "Введите email и пароль",
		}
		h.render(w, r, h.renderer.Page(templates.PageLogin, page), http.StatusBadRequest)
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Info("login abandoned before completion", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	case err != nil || acct == nil:
		logger.Warn("login failed", zap.Error(err))
		page := templates.LoginPage{
			Base:      h.base(ctx, st, "Вход"),
			FormEmail: creds.Email,
			Error:     "Не удалось войти. Попробуйте ещё раз",
		}
		h.render(w, r, h.renderer.Page(templates.PageLogin, page), http.StatusUnauthorized)
		return
	}

	st.sess.SignIn(acct)
	logger.Info("visitor signed in")

	page := templates.LoginSuccessPage{
		Base:         h.base(ctx, st, "Вход выполнен"),
		RedirectTo:   dashboardPath,
		DelaySeconds: int(math.Ceil(h.redirectDelay.Seconds())),
	}
	h.render(w, r, h.renderer.Page(templates.PageLoginSuccess, page), http.StatusOK)
}

// Logout forgets the signed-in account. Cart and theme stay.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := custommw.SessionFromContext(r.Context())
	if ok {
		sess.SignOut()
		sess.SetFlash("Вы вышли из системы")
	}
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Dashboard shows cart statistics.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	st, ok := h.load(w, r)
	if !ok {
		return
	}
	c := st.sess.Cart()
	page := templates.DashboardPage{
		Base:       h.base(r.Context(), st, "Dashboard"),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(st.games),
		Distinct:   c.Len(),
	}
	h.render(w, r, h.renderer.Page(templates.PageDashboard, page), http.StatusOK)
}

// ToggleTheme flips between light and dark for this visitor.
func (h *Handlers) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	sess, ok := custommw.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess.SetTheme(sess.Theme().Toggle())
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, safeReturnPath(r.PostFormValue("return"), "/"), http.StatusSeeOther)
}
