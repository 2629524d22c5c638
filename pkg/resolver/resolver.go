// Package resolver follows redirects for media links that do not describe their provider.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/horizonti-reader/pkg/httpclient"
)

const (
	maxBodyBytes   = 2 << 20 // 2 MiB
	defaultTimeout = 8 * time.Second
)

// ErrFetchFailed marks network errors and non-2xx final statuses.
var ErrFetchFailed = errors.New("fetch failed")

// Page is the outcome of a successful resolution.
type Page struct {
	FinalURL   string
	Body       []byte
	StatusCode int
}

// Resolver fetches a URL, following redirects, and reports where it ended up.
type Resolver struct {
	client    httpclient.Client
	userAgent string
	timeout   time.Duration
}

// New builds a Resolver. A zero timeout falls back to 8s.
func New(client httpclient.Client, userAgent string, timeout time.Duration) *Resolver {
	if client == nil {
		client = httpclient.NewRestyClientWithOptions(httpclient.Options{Timeout: timeout, UserAgent: userAgent})
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Resolver{client: client, userAgent: userAgent, timeout: timeout}
}

// Resolve performs the GET. Any failure is wrapped with ErrFetchFailed.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (Page, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Page{}, fmt.Errorf("%w: empty url", ErrFetchFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	headers := map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "uk,en;q=0.8",
	}
	if r.userAgent != "" {
		headers["User-Agent"] = r.userAgent
	}

	resp, err := r.client.Get(ctx, rawURL, headers)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %s: %v", ErrFetchFailed, rawURL, err)
	}

	status := resp.StatusCode()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return Page{StatusCode: status}, fmt.Errorf("%w: %s returned status %d", ErrFetchFailed, rawURL, status)
	}

	body := resp.Body()
	if len(body) > maxBodyBytes {
		body = body[:maxBodyBytes]
	}

	final := resp.FinalURL()
	if final == "" {
		final = rawURL
	}
	return Page{FinalURL: final, Body: body, StatusCode: status}, nil
}
