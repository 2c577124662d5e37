package httpx

import (
	"net/http"
	"time"

	"github.com/ariefcatur/go-coffee-shop/internal/auth"
	"github.com/ariefcatur/go-coffee-shop/internal/logging"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AuthHandler struct {
	Sessions     *auth.Sessions
	Identity     auth.IdentityVerifier // nil when no identity provider is configured
	Guard        *Guard
	CookieSecure bool
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/jwt", h.issue)
}

type issueReq struct {
	Email string `json:"email"`
}

// issue sets the session cookie. Under the strict policy with an identity
// provider the email comes from the verified bearer token, not the body.
func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request) {
	var email string
	if h.Identity != nil && h.Guard.strict() {
		idToken := auth.BearerToken(r.Header.Get("Authorization"))
		if idToken == "" {
			writeMessage(w, http.StatusUnauthorized, "No token")
			return
		}
		verified, err := h.Identity.VerifyEmail(r.Context(), idToken)
		if err != nil {
			logging.FromContext(r.Context()).Info("identity_rejected", zap.Error(err))
			writeMessage(w, http.StatusForbidden, "Invalid Firebase token")
			return
		}
		email = verified
	} else {
		var req issueReq
		if err := decodeJSON(r, &req); err != nil || req.Email == "" {
			writeMessage(w, http.StatusBadRequest, "email is required")
			return
		}
		email = req.Email
	}

	token, err := h.Sessions.Issue(email)
	if err != nil {
		writeDomainError(w, r, err, "Error issuing token")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.ttl().Seconds()),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) ttl() time.Duration {
	if h.Sessions.TTL > 0 {
		return h.Sessions.TTL
	}
	return 7 * 24 * time.Hour
}
