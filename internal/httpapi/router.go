// Package httpapi is the public REST surface: customer booking, slot
// availability, and the admin console's reservation and account management.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"barber-reservation-api/internal/admins"
	"barber-reservation-api/internal/auth"
	"barber-reservation-api/internal/booking"
	"barber-reservation-api/internal/captcha"
	"barber-reservation-api/internal/identity"
	"barber-reservation-api/internal/middleware"
	"barber-reservation-api/internal/slogx"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Booking  *booking.Controller
	Admins   *admins.Service
	Tokens   *auth.Issuer
	Identity *identity.Resolver
	Captcha  captcha.Verifier
	Health   Pinger

	// LoginLimiter throttles /login per client IP.
	LoginLimiter *middleware.RateLimiter
	ClientIP     func(*http.Request) string

	AllowRegistration bool
	CORSOrigins       []string
	Log               *slog.Logger
}

type api struct {
	Deps
}

// New builds the HTTP handler with access logging and CORS applied.
func New(d Deps) http.Handler {
	if d.Captcha == nil {
		d.Captcha = captcha.Noop{}
	}
	if d.ClientIP == nil {
		d.ClientIP = middleware.ClientIP(false)
	}
	if d.Identity == nil {
		d.Identity = identity.NewResolver(false)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	a := &api{Deps: d}

	authn := middleware.NewAuthenticator(d.Tokens, d.Admins.Exists)
	admin := func(h httprouter.Handle) httprouter.Handle {
		return middleware.RequireAdmin(authn, authFailed, h)
	}

	router := httprouter.New()
	router.GET("/health", a.health)

	router.POST("/reservations", a.createReservation)
	router.GET("/slots", a.slots)
	router.GET("/reservations", admin(a.listReservations))
	router.GET("/reservations/:id", admin(a.getReservation))
	router.PUT("/reservations/:id", admin(a.updateReservation))
	router.DELETE("/reservations/:id", admin(a.deleteReservation))

	login := a.login
	if d.LoginLimiter != nil {
		login = middleware.Limit(d.LoginLimiter, d.ClientIP, tooManyRequests, login)
	}
	router.POST("/login", login)
	router.POST("/register", middleware.OptionalAdmin(authn, authFailed, a.register))

	router.GET("/admins", admin(a.listAdmins))
	router.POST("/admins", admin(a.createAdmin))
	router.PUT("/admins/:id", admin(a.updateAdmin))
	router.DELETE("/admins/:id", admin(a.deleteAdmin))
	router.POST("/admins/:id/reset-password", admin(a.resetPassword))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "No such endpoint.")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed.")
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		slogx.FromContext(r.Context()).ErrorContext(r.Context(), "panic", "value", v)
		writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong, please try again.")
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", slogx.RequestIDHeader},
		AllowCredentials: true,
	})
	return slogx.HTTPMiddleware(d.Log, d.ClientIP)(c.Handler(router))
}

func (a *api) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if a.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Health.Ping(ctx); err != nil {
			slogx.FromContext(ctx).WarnContext(ctx, "health check failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
