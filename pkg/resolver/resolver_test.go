package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samvad-hq/horizonti-reader/pkg/httpclient"
)

type stubResponse struct {
	body     []byte
	status   int
	finalURL string
}

func (s stubResponse) Body() []byte     { return s.body }
func (s stubResponse) StatusCode() int  { return s.status }
func (s stubResponse) FinalURL() string { return s.finalURL }

type stubClient struct {
	resp    httpclient.Response
	err     error
	headers map[string]string
	ctxErr  error
}

func (s *stubClient) Get(ctx context.Context, _ string, headers map[string]string) (httpclient.Response, error) {
	s.headers = headers
	if _, ok := ctx.Deadline(); !ok {
		s.ctxErr = errors.New("no deadline")
	}
	return s.resp, s.err
}

func TestResolveReturnsFinalURLAndBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/media/abc123", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/watch?v=dQw4w9WgXcQ", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/watch", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>video</html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := httpclient.NewRestyClientWithOptions(httpclient.Options{Timeout: 2 * time.Second, AllowPrivate: true})
	page, err := New(client, "UA", 2*time.Second).Resolve(context.Background(), srv.URL+"/media/abc123")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if page.FinalURL != srv.URL+"/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("FinalURL = %q", page.FinalURL)
	}
	if string(page.Body) != "<html>video</html>" {
		t.Fatalf("Body = %q", page.Body)
	}
}

func TestResolveSendsBrowserHeadersWithDeadline(t *testing.T) {
	client := &stubClient{resp: stubResponse{status: 200, body: []byte("ok")}}
	page, err := New(client, "Mozilla/5.0", time.Second).Resolve(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if client.headers["User-Agent"] != "Mozilla/5.0" {
		t.Fatalf("missing user agent: %#v", client.headers)
	}
	if client.ctxErr != nil {
		t.Fatalf("expected request context with deadline")
	}
	if page.FinalURL != "https://example.com" {
		t.Fatalf("FinalURL should default to the request url, got %q", page.FinalURL)
	}
}

func TestResolveFailsOnNon2xx(t *testing.T) {
	client := &stubClient{resp: stubResponse{status: 404, body: []byte("missing")}}
	_, err := New(client, "", time.Second).Resolve(context.Background(), "https://example.com/x")
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestResolveWrapsTransportErrors(t *testing.T) {
	client := &stubClient{err: errors.New("dial tcp: refused")}
	_, err := New(client, "", time.Second).Resolve(context.Background(), "https://example.com/x")
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestResolveCapsBody(t *testing.T) {
	client := &stubClient{resp: stubResponse{status: 200, body: make([]byte, maxBodyBytes+10)}}
	page, err := New(client, "", time.Second).Resolve(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(page.Body) != maxBodyBytes {
		t.Fatalf("body not capped: %d", len(page.Body))
	}
}
