// Package captcha verifies the reCAPTCHA token a booking form submits.
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is Google's server-side verification URL.
const DefaultEndpoint = "https://www.google.com/recaptcha/api/siteverify"

var ErrFailed = errors.New("captcha verification failed")

type Verifier interface {
	// Verify returns ErrFailed when the token is missing or rejected, and any
	// other error when the verification service could not be reached.
	Verify(ctx context.Context, token, remoteIP string) error
}

// Noop accepts everything. Used when no secret is configured.
type Noop struct{}

func (Noop) Verify(context.Context, string, string) error { return nil }

type Recaptcha struct {
	secret   string
	endpoint string
	client   *http.Client
}

func NewRecaptcha(secret string, opts ...func(*Recaptcha)) *Recaptcha {
	r := &Recaptcha{
		secret:   secret,
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func WithEndpoint(u string) func(*Recaptcha) {
	return func(r *Recaptcha) { r.endpoint = u }
}

func WithHTTPClient(c *http.Client) func(*Recaptcha) {
	return func(r *Recaptcha) { r.client = c }
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

func (r *Recaptcha) Verify(ctx context.Context, token, remoteIP string) error {
	if strings.TrimSpace(token) == "" {
		return ErrFailed
	}

	form := url.Values{}
	form.Set("secret", r.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("siteverify: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("siteverify: status %d", resp.StatusCode)
	}

	var out siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("siteverify: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("%w: %s", ErrFailed, strings.Join(out.ErrorCodes, ","))
	}
	return nil
}
