package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"barber-reservation-api/internal/auth"
	"barber-reservation-api/internal/slogx"
)

// ErrUnauthenticated means the request carries no usable admin token.
var ErrUnauthenticated = errors.New("unauthenticated")

// Principal is the authenticated admin behind a request.
type Principal struct {
	AdminID  int64
	Username string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// AdminLookup reports whether admin id still exists.
type AdminLookup func(ctx context.Context, id int64) (bool, error)

// Authenticator resolves bearer tokens. A token stops working as soon as the
// admin it was issued to is deleted.
type Authenticator struct {
	tokens *auth.Issuer
	exists AdminLookup
}

func NewAuthenticator(tokens *auth.Issuer, exists AdminLookup) *Authenticator {
	return &Authenticator{tokens: tokens, exists: exists}
}

// Principal checks an Authorization header value. Bad, expired and revoked
// tokens give ErrUnauthenticated; any other error is a lookup failure.
func (a *Authenticator) Principal(ctx context.Context, header string) (Principal, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return Principal{}, ErrUnauthenticated
	}
	claims, err := a.tokens.ParseToken(raw)
	if err != nil {
		return Principal{}, ErrUnauthenticated
	}
	id, err := claims.AdminID()
	if err != nil {
		return Principal{}, ErrUnauthenticated
	}
	found, err := a.exists(ctx, id)
	if err != nil {
		return Principal{}, fmt.Errorf("look up admin %d: %w", id, err)
	}
	if !found {
		return Principal{}, ErrUnauthenticated
	}
	return Principal{AdminID: id, Username: claims.Username}, nil
}

// Auth requires a valid bearer token on every method except those in open.
func Auth(authn *Authenticator, open ...string) grpc.UnaryServerInterceptor {
	skip := make(map[string]bool, len(open))
	for _, m := range open {
		skip[m] = true
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if skip[info.FullMethod] {
			return next(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		// token from Authorization: Bearer <jwt>
		raw := ""
		if vals := md.Get("authorization"); len(vals) > 0 {
			raw = vals[0]
		}
		if raw == "" {
			return nil, status.Error(codes.Unauthenticated, "no token")
		}

		p, err := authn.Principal(ctx, raw)
		if errors.Is(err, ErrUnauthenticated) {
			return nil, status.Error(codes.Unauthenticated, "bad token")
		}
		if err != nil {
			slogx.FromContext(ctx).ErrorContext(ctx, "auth lookup failed", "method", info.FullMethod, "err", err)
			return nil, status.Error(codes.Internal, "internal error")
		}
		return next(WithPrincipal(slogx.With(ctx, "admin_id", p.AdminID), p), req)
	}
}

// RequireAdmin is the HTTP twin of Auth. fail writes the response for err,
// which is ErrUnauthenticated or a lookup failure.
func RequireAdmin(authn *Authenticator, fail func(http.ResponseWriter, *http.Request, error), next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		p, err := authn.Principal(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			fail(w, r, err)
			return
		}
		ctx := slogx.With(r.Context(), "admin_id", p.AdminID)
		next(w, r.WithContext(WithPrincipal(ctx, p)), ps)
	}
}

// OptionalAdmin attaches a principal when the request carries a valid token
// and passes the request on either way. Only lookup failures reach fail.
func OptionalAdmin(authn *Authenticator, fail func(http.ResponseWriter, *http.Request, error), next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		p, err := authn.Principal(r.Context(), r.Header.Get("Authorization"))
		switch {
		case err == nil:
			ctx := slogx.With(r.Context(), "admin_id", p.AdminID)
			r = r.WithContext(WithPrincipal(ctx, p))
		case !errors.Is(err, ErrUnauthenticated):
			fail(w, r, err)
			return
		}
		next(w, r, ps)
	}
}
