// Package login provides the storefront's placeholder sign-in. It never
// verifies credentials: any well-formed submission succeeds.
package login

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrMissingCredentials indicates the form was submitted without an email or password.
var ErrMissingCredentials = errors.New("login: email and password are required")

// DefaultRedirectDelay is how long the success view waits before moving to the dashboard.
const DefaultRedirectDelay = time.Second

// Credentials carries the submitted form values.
type Credentials struct {
	Email    string
	Password string
}

// Account is the visitor identity recorded in the session after sign-in.
type Account struct {
	Email      string
	SignedInAt time.Time
}

// Authenticator resolves submitted credentials into an Account.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (*Account, error)
}

// StubAuthenticator accepts every submission that has both fields filled in.
// Latency simulates a remote call; it is abandoned when ctx is cancelled.
type StubAuthenticator struct {
	Latency time.Duration
	Now     func() time.Time
}

// NewStubAuthenticator returns a StubAuthenticator with the given simulated latency.
func NewStubAuthenticator(latency time.Duration) *StubAuthenticator {
	return &StubAuthenticator{Latency: latency}
}

// Authenticate implements Authenticator.
func (a *StubAuthenticator) Authenticate(ctx context.Context, creds Credentials) (*Account, error) {
	email := strings.TrimSpace(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, ErrMissingCredentials
	}
	if err := Wait(ctx, a.Latency); err != nil {
		return nil, err
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	return &Account{Email: email, SignedInAt: now().UTC()}, nil
}

// Wait blocks for d or until ctx is done, whichever comes first. The timer is
// always released, so an abandoned wait leaves nothing scheduled behind.
func Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
