package auth

import (
	"net/http"
	"time"

	"github.com/stockdesk/stockdesk/internal/platform/httpx"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// RequireToken lets the request through only with a live API token in the
// session and exposes it through shared.TokenFromContext.
func RequireToken(now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess != nil {
				if token, ok := sess.Token(now()); ok {
					next.ServeHTTP(w, r.WithContext(shared.ContextWithToken(r.Context(), token)))
					return
				}
				if sess.HasToken() {
					sess.SignOut()
					sess.AddFlash(shared.FlashMessage{Kind: "error", Message: shared.MsgSessionExpired})
				}
			}
			if httpx.WantsJSON(r) {
				httpx.RespondError(w, httpx.NewError(httpx.ErrUnauthorized, "Not authenticated"))
				return
			}
			http.Redirect(w, r, shared.LoginPath, http.StatusSeeOther)
		})
	}
}
