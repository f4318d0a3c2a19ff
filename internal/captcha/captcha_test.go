package captcha_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barber-reservation-api/internal/captcha"
)

func fakeGoogle(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "s3cret", r.PostForm.Get("secret"))
		w.Header().Set("Content-Type", "application/json")
		switch r.PostForm.Get("response") {
		case "good":
			assert.Equal(t, "1.2.3.4", r.PostForm.Get("remoteip"))
			_, _ = w.Write([]byte(`{"success":true}`))
		case "broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRecaptcha(t *testing.T) {
	srv := fakeGoogle(t)
	v := captcha.NewRecaptcha("s3cret", captcha.WithEndpoint(srv.URL), captcha.WithHTTPClient(srv.Client()))
	ctx := context.Background()

	require.NoError(t, v.Verify(ctx, "good", "1.2.3.4"))

	err := v.Verify(ctx, "forged", "1.2.3.4")
	require.ErrorIs(t, err, captcha.ErrFailed)
	assert.Contains(t, err.Error(), "invalid-input-response")

	assert.ErrorIs(t, v.Verify(ctx, "  ", ""), captcha.ErrFailed)

	err = v.Verify(ctx, "broken", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, captcha.ErrFailed, "outage is not a failed challenge")
}

func TestNoop(t *testing.T) {
	assert.NoError(t, captcha.Noop{}.Verify(context.Background(), "", ""))
}
