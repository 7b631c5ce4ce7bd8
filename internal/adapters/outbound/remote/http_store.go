// Package remote provides the rule store transports consumed by the cache.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/openkraft/portcore/internal/domain"
)

// HTTPStore serves rule resources from a static HTTP(S) location. Existence is
// a HEAD request and fetch is a GET; both share one rate limiter.
type HTTPStore struct {
	base    *url.URL
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPStore creates a store rooted at baseURL. A zero ratePerSecond
// disables limiting; a zero timeout uses the domain default.
func NewHTTPStore(baseURL string, ratePerSecond float64, timeout time.Duration) (*HTTPStore, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = domain.DefaultRemoteTimeout
	}
	limit := rate.Inf
	burst := 1
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
		burst = int(ratePerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &HTTPStore{
		base:    u,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
	}, nil
}

// URL returns the absolute location of a resource.
func (s *HTTPStore) URL(name string) string {
	return s.base.JoinPath(name).String()
}

// Exists reports whether the resource answers a HEAD request with 2xx.
// 404 and 403 mean absent; other statuses are errors.
func (s *HTTPStore) Exists(ctx context.Context, name string) (bool, error) {
	resp, err := s.do(ctx, http.MethodHead, name)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("HEAD %s: unexpected status %s", name, resp.Status)
	}
}

// Fetch streams the resource body. The caller closes the reader.
func (s *HTTPStore) Fetch(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := s.do(ctx, http.MethodGet, name)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", name, resp.Status)
	}
	return resp.Body, nil
}

func (s *HTTPStore) do(ctx context.Context, method, name string) (*http.Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, s.URL(name), nil)
	if err != nil {
		return nil, err
	}
	return s.client.Do(req)
}
