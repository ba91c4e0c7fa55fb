package engine

import (
	"context"
	"net/http"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Retry policy and browser fingerprints come from go-stealth.
type RetryConfig = stealth.RetryConfig

var DefaultRetryConfig = stealth.DefaultRetryConfig

func RandomUserAgent() string { return stealth.RandomUserAgent() }

func RetryHTTP(ctx context.Context, rc RetryConfig, fn func() (*http.Response, error)) (*http.Response, error) {
	return stealth.RetryHTTP(ctx, rc, fn)
}

// RetryTransport retries requests with a replayable body through RetryHTTP. It is used
// where the HTTP call happens inside another client library.
type RetryTransport struct {
	Base  http.RoundTripper
	Retry RetryConfig
}

func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return base.RoundTrip(req)
	}
	attempt := 0
	return RetryHTTP(req.Context(), t.Retry, func() (*http.Response, error) {
		r := req
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			r = req.Clone(req.Context())
			r.Body = body
		}
		attempt++
		return base.RoundTrip(r)
	})
}
