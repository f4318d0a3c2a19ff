// Package identity reads and issues the per-device client identifier that
// correlates repeat bookings. The identifier travels in a long-lived cookie;
// it is trivially spoofable and only ever used as a soft throttle.
package identity

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"
)

const (
	CookieName   = "client_id"
	CookieMaxAge = 365 * 24 * time.Hour

	maxLen = 128
)

// NewID returns 128 random bits, hex encoded.
func NewID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

type Resolver struct {
	secure bool
}

// NewResolver returns a resolver whose cookies carry the Secure flag when
// secure is set (deployments behind TLS).
func NewResolver(secure bool) *Resolver {
	return &Resolver{secure: secure}
}

// FromRequest returns the client id presented by the request, or "" when
// there is none or it is malformed.
func (r *Resolver) FromRequest(req *http.Request) string {
	c, err := req.Cookie(CookieName)
	if err != nil {
		return ""
	}
	if !valid(c.Value) {
		return ""
	}
	return c.Value
}

// SetCookie persists id on the client for a year.
func (r *Resolver) SetCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(CookieMaxAge / time.Second),
		Expires:  time.Now().Add(CookieMaxAge),
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func valid(id string) bool {
	if id == "" || len(id) > maxLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		isAlnum := c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
		if !isAlnum && c != '-' && c != '_' {
			return false
		}
	}
	return true
}
