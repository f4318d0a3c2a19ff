package slogx_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barber-reservation-api/internal/slogx"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func TestNew(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := slogx.New(slogx.Config{Service: "barber", Env: "test", Level: "warn", Output: &buf})
	log.Info("hidden")
	log.Warn("shown")

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "shown", got[0]["msg"])
	assert.Equal(t, "barber", got[0]["service"])
	assert.Equal(t, "test", got[0]["env"])
}

func TestFromContextFallsBack(t *testing.T) {
	assert.Equal(t, slog.Default(), slogx.FromContext(context.Background()))

	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, l, slogx.FromContext(slogx.WithContext(context.Background(), l)))
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info+2":  slog.LevelInfo + 2,
	} {
		got, err := slogx.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := slogx.ParseLevel("loud")
	assert.Error(t, err)
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	ctx := slogx.WithContext(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))
	slogx.FromContext(slogx.With(ctx, "admin_id", 7)).Info("deleted")

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, float64(7), got[0]["admin_id"])
}

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	clientIP := func(*http.Request) string { return "203.0.113.9" }

	status := http.StatusTeapot
	h := slogx.HTTPMiddleware(base, clientIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slogx.FromContext(r.Context()).Info("inside")
		w.WriteHeader(status)
		_, _ = w.Write([]byte("hello"))
	}))

	t.Run("propagates request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
		req.Header.Set(slogx.RequestIDHeader, "req-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "req-123", rec.Header().Get(slogx.RequestIDHeader))
		got := lines(t, &buf)
		require.Len(t, got, 2)
		assert.Equal(t, "inside", got[0]["msg"])
		assert.Equal(t, "req-123", got[0]["req_id"])
		assert.Equal(t, "http_request", got[1]["msg"])
		assert.Equal(t, "WARN", got[1]["level"])
		assert.Equal(t, float64(http.StatusTeapot), got[1]["status"])
		assert.Equal(t, float64(5), got[1]["bytes"])
		assert.Equal(t, "203.0.113.9", got[1]["client_ip"])
		assert.Equal(t, "/reservations", got[1]["path"])
	})

	t.Run("mints request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(slogx.RequestIDHeader, string(bytes.Repeat([]byte("x"), 100)))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		id := rec.Header().Get(slogx.RequestIDHeader)
		assert.Len(t, id, 36)
		got := lines(t, &buf)
		require.NotEmpty(t, got)
		assert.Equal(t, id, got[0]["req_id"])
	})

	t.Run("health checks stay below info", func(t *testing.T) {
		status = http.StatusOK
		buf.Reset()
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

		got := lines(t, &buf)
		require.Len(t, got, 1, "only the inner line")
		assert.Equal(t, "inside", got[0]["msg"])
	})

	t.Run("server errors log at error", func(t *testing.T) {
		status = http.StatusInternalServerError
		buf.Reset()
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

		got := lines(t, &buf)
		require.Len(t, got, 2)
		assert.Equal(t, "ERROR", got[1]["level"])
	})
}
