package httpx

import (
	"errors"
	"net/http"
	"strings"

	"bookgraph/internal/apperr"
	"bookgraph/internal/auth"
)

var errInvalidToken = apperr.AuthenticationFailed("Invalid token")

// TokenVerifier decodes a session token. *auth.Tokens implements it.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// SessionMiddleware attaches the caller's identity to the request context.
//
// The token is read from an "Authorization: Bearer" header, falling back to
// the named cookie. A request without a token, or with an expired one,
// continues anonymously. Any other invalid token is rejected with 401.
func SessionMiddleware(verifier TokenVerifier, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFrom(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := verifier.Verify(token)
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				next.ServeHTTP(w, r)
				return
			case err != nil:
				WriteError(w, r, errInvalidToken)
				return
			}

			noteUser(r.Context(), id.UserID)
			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), id)))
		})
	}
}

func tokenFrom(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
