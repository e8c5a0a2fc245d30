// AngelaMos | 2026
// cookie.go

package auth

import (
	"net/http"
	"time"

	"github.com/carterperez-dev/asmr-backend/internal/config"
)

// SessionCookies writes and clears the cookie carrying the access token.
type SessionCookies struct {
	name     string
	sameSite http.SameSite
	secure   bool
	domain   string
	now      func() time.Time
}

func NewSessionCookies(cfg config.CookieConfig, production bool) *SessionCookies {
	return &SessionCookies{
		name:     cfg.Prefix + "-token",
		sameSite: cfg.SameSiteMode(),
		secure:   cfg.Secure || production,
		domain:   cfg.Domain,
		now:      time.Now,
	}
}

func (c *SessionCookies) Name() string {
	return c.name
}

func (c *SessionCookies) Set(w http.ResponseWriter, token string, expiresAt time.Time) {
	maxAge := int(expiresAt.Sub(c.now()).Seconds())
	if maxAge <= 0 {
		c.Clear(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		Domain:   c.domain,
		Expires:  expiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}

func (c *SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		Domain:   c.domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}
