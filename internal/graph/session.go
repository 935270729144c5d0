package graph

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// CookieConfig controls the session cookie set by signUp and login.
type CookieConfig struct {
	Name   string
	Secure bool
}

// sessionCookies collects the cookie changes resolvers request during one
// execution; the handler writes them to the response afterwards.
type sessionCookies struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	set       bool
	cleared   bool
}

type cookieKey struct{}

func withSessionCookies(ctx context.Context, c *sessionCookies) context.Context {
	return context.WithValue(ctx, cookieKey{}, c)
}

func setSessionCookie(ctx context.Context, token string, expiresAt time.Time) {
	if c, ok := ctx.Value(cookieKey{}).(*sessionCookies); ok {
		c.mu.Lock()
		c.token, c.expiresAt, c.set, c.cleared = token, expiresAt, true, false
		c.mu.Unlock()
	}
}

func clearSessionCookie(ctx context.Context) {
	if c, ok := ctx.Value(cookieKey{}).(*sessionCookies); ok {
		c.mu.Lock()
		c.token, c.set, c.cleared = "", false, true
		c.mu.Unlock()
	}
}

// write applies the collected change, if any, to w.
func (c *sessionCookies) write(w http.ResponseWriter, cfg CookieConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cookie := &http.Cookie{
		Name:     cfg.Name,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	switch {
	case c.set:
		cookie.Value = c.token
		cookie.Expires = c.expiresAt
		cookie.MaxAge = int(time.Until(c.expiresAt).Seconds())
	case c.cleared:
		cookie.MaxAge = -1
	default:
		return
	}
	http.SetCookie(w, cookie)
}
