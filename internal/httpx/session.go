package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-coffee-shop/internal/auth"
	"github.com/ariefcatur/go-coffee-shop/internal/logging"
	"go.uber.org/zap"
)

// Policy decides which routes need a session and where the acting email
// comes from.
type Policy string

const (
	// PolicyStrict requires a session on every mutating route, takes the
	// acting email from it and enforces ownership.
	PolicyStrict Policy = "strict"
	// PolicyLegacy keeps the original route table: only addCoffee, coffee
	// update, myOrders and the cart need a session.
	PolicyLegacy Policy = "legacy"
)

const (
	cookieName = "token"

	msgNoSession      = "Unauthorized: No token provided"
	msgInvalidSession = "Forbidden: Invalid token"
)

type sessionKey struct{}

// SessionEmail returns the email of the verified session, or "".
func SessionEmail(ctx context.Context) string {
	email, _ := ctx.Value(sessionKey{}).(string)
	return email
}

// Guard applies the session policy to routes.
type Guard struct {
	Sessions *auth.Sessions
	Policy   Policy
}

func (g *Guard) strict() bool { return g.Policy != PolicyLegacy }

// Require rejects requests without a valid session cookie.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie(cookieName); err == nil {
			token = c.Value
		}
		email, err := g.Sessions.Verify(token)
		switch {
		case errors.Is(err, auth.ErrNoToken):
			writeMessage(w, http.StatusUnauthorized, msgNoSession)
			return
		case err != nil:
			logging.FromContext(r.Context()).Info("session_rejected", zap.Error(err))
			writeMessage(w, http.StatusForbidden, msgInvalidSession)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, email)
		ctx = logging.ContextWithLogger(ctx, logging.FromContext(ctx).With(zap.String("user", email)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Mutating guards routes that only the strict policy protects.
func (g *Guard) Mutating(next http.Handler) http.Handler {
	if g.strict() {
		return g.Require(next)
	}
	return next
}

// Actor is the email ownership checks run against; "" disables them.
func (g *Guard) Actor(r *http.Request) string {
	if !g.strict() {
		return ""
	}
	return SessionEmail(r.Context())
}
