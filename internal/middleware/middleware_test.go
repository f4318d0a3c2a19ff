package middleware_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"barber-reservation-api/internal/auth"
	"barber-reservation-api/internal/middleware"
)

const (
	loginMethod = "/barber.v1.AdminService/Login"
	listMethod  = "/barber.v1.AdminService/ListReservations"
)

// known treats ids below 100 as existing admins.
func known(_ context.Context, id int64) (bool, error) { return id < 100, nil }

func authenticator(tokens *auth.Issuer) *middleware.Authenticator {
	return middleware.NewAuthenticator(tokens, known)
}

func echoPrincipal(ctx context.Context, _ any) (any, error) {
	p, _ := middleware.PrincipalFrom(ctx)
	return p, nil
}

func TestAuthInterceptor(t *testing.T) {
	tokens := auth.NewIssuer("secret", time.Minute)
	intercept := middleware.Auth(authenticator(tokens), loginMethod)
	tok, err := tokens.MakeToken(3, "boss")
	require.NoError(t, err)

	call := func(ctx context.Context, method string) (any, error) {
		return intercept(ctx, nil, &grpc.UnaryServerInfo{FullMethod: method}, echoPrincipal)
	}
	withAuth := func(v string) context.Context {
		return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", v))
	}

	_, err = call(context.Background(), loginMethod)
	require.NoError(t, err, "open methods need no token")

	_, err = call(context.Background(), listMethod)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = call(withAuth("Bearer garbage"), listMethod)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = call(withAuth(tok), listMethod)
	assert.Equal(t, codes.Unauthenticated, status.Code(err), "scheme is required")

	got, err := call(withAuth("Bearer "+tok), listMethod)
	require.NoError(t, err)
	assert.Equal(t, middleware.Principal{AdminID: 3, Username: "boss"}, got)
}

func TestRateLimitInterceptor(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 2)
	t.Cleanup(rl.Close)
	intercept := middleware.RateLimit(rl, loginMethod)

	from := func(addr string) context.Context {
		ip, _ := net.ResolveTCPAddr("tcp", addr)
		return peer.NewContext(context.Background(), &peer.Peer{Addr: ip})
	}
	ok := func(context.Context, any) (any, error) { return "ok", nil }
	call := func(ctx context.Context, method string) error {
		_, err := intercept(ctx, nil, &grpc.UnaryServerInfo{FullMethod: method}, ok)
		return err
	}

	// port changes per connection; the limit is per host
	require.NoError(t, call(from("10.0.0.1:4000"), loginMethod))
	require.NoError(t, call(from("10.0.0.1:4001"), loginMethod))
	assert.Equal(t, codes.ResourceExhausted, status.Code(call(from("10.0.0.1:4002"), loginMethod)))

	require.NoError(t, call(from("10.0.0.2:4000"), loginMethod), "other hosts unaffected")
	for i := 0; i < 5; i++ {
		require.NoError(t, call(from("10.0.0.1:4000"), listMethod), "unlisted methods are not limited")
	}
}

func TestRateLimiterClose(t *testing.T) {
	rl := middleware.NewRateLimiter(1, 1)
	rl.Close()
	rl.Close()
	assert.True(t, rl.Allow("x"))
}

func TestRequireAdmin(t *testing.T) {
	tokens := auth.NewIssuer("secret", time.Minute)
	tok, err := tokens.MakeToken(9, "boss")
	require.NoError(t, err)

	deny := func(w http.ResponseWriter, _ *http.Request, _ error) { w.WriteHeader(http.StatusUnauthorized) }
	h := middleware.RequireAdmin(authenticator(tokens), deny, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		p, ok := middleware.PrincipalFrom(r.Context())
		require.True(t, ok)
		assert.Equal(t, int64(9), p.AdminID)
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/admins", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admins", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h(rec, req, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestOptionalAdmin(t *testing.T) {
	tokens := auth.NewIssuer("secret", time.Minute)
	var seen bool
	fail := func(http.ResponseWriter, *http.Request, error) { t.Fatal("lookup does not fail") }
	h := middleware.OptionalAdmin(authenticator(tokens), fail, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		_, seen = middleware.PrincipalFrom(r.Context())
	})

	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/register", nil), nil)
	assert.False(t, seen)

	tok, err := tokens.MakeToken(1, "boss")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/register", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h(httptest.NewRecorder(), req, nil)
	assert.True(t, seen)
}

func TestRevokedAdmin(t *testing.T) {
	tokens := auth.NewIssuer("secret", time.Minute)
	gone, err := tokens.MakeToken(500, "former")
	require.NoError(t, err)
	authn := authenticator(tokens)

	_, err = authn.Principal(context.Background(), "Bearer "+gone)
	assert.ErrorIs(t, err, middleware.ErrUnauthenticated)

	md := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+gone))
	_, err = middleware.Auth(authn)(md, nil, &grpc.UnaryServerInfo{FullMethod: listMethod}, echoPrincipal)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	var seen bool
	h := middleware.OptionalAdmin(authn, nil, func(_ http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		_, seen = middleware.PrincipalFrom(r.Context())
	})
	req := httptest.NewRequest(http.MethodPost, "/register", nil)
	req.Header.Set("Authorization", "Bearer "+gone)
	h(httptest.NewRecorder(), req, nil)
	assert.False(t, seen, "revoked tokens grant nothing")
}

func TestAdminLookupFailure(t *testing.T) {
	tokens := auth.NewIssuer("secret", time.Minute)
	tok, err := tokens.MakeToken(1, "boss")
	require.NoError(t, err)
	boom := errors.New("db down")
	authn := middleware.NewAuthenticator(tokens, func(context.Context, int64) (bool, error) { return false, boom })

	_, err = authn.Principal(context.Background(), "Bearer "+tok)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, middleware.ErrUnauthenticated)

	md := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+tok))
	_, err = middleware.Auth(authn)(md, nil, &grpc.UnaryServerInfo{FullMethod: listMethod}, echoPrincipal)
	assert.Equal(t, codes.Internal, status.Code(err))

	var got error
	fail := func(w http.ResponseWriter, _ *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusInternalServerError)
	}
	h := middleware.RequireAdmin(authn, fail, func(http.ResponseWriter, *http.Request, httprouter.Params) {
		t.Fatal("handler must not run")
	})
	req := httptest.NewRequest(http.MethodGet, "/admins", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h(rec, req, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.ErrorIs(t, got, boom)
}

func TestLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 1)
	t.Cleanup(rl.Close)
	deny := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }
	h := middleware.Limit(rl, middleware.ClientIP(false), deny, func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.1.1.1:5555"
		rec := httptest.NewRecorder()
		h(rec, req, nil)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	assert.Equal(t, "192.0.2.1", middleware.ClientIP(false)(req))
	assert.Equal(t, "203.0.113.7", middleware.ClientIP(true)(req))

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "198.51.100.3")
	assert.Equal(t, "198.51.100.3", middleware.ClientIP(true)(req))

	req.Header.Del("X-Real-IP")
	assert.Equal(t, "192.0.2.1", middleware.ClientIP(true)(req))
}
