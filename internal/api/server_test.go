package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/samvad-hq/horizonti-reader/internal/domain"
	"github.com/samvad-hq/horizonti-reader/internal/embeds"
	"github.com/samvad-hq/horizonti-reader/internal/feed"
	"github.com/samvad-hq/horizonti-reader/internal/logger"
	"github.com/samvad-hq/horizonti-reader/internal/reader"
)

func init() { gin.SetMode(gin.TestMode) }

type stubMedia struct {
	results map[string]embeds.Result
	page    embeds.PageResult
	pageErr error
	panics  bool
}

func (s stubMedia) Resolve(_ context.Context, mediaURL string) embeds.Result {
	if s.panics {
		panic("boom")
	}
	if res, ok := s.results[mediaURL]; ok {
		return res
	}
	return embeds.Result{Status: embeds.StatusFailed, Err: embeds.ErrNoEmbed}
}

func (s stubMedia) ArticleEmbeds(context.Context, string) (embeds.PageResult, error) {
	return s.page, s.pageErr
}

type stubReader struct {
	snap      *domain.Snapshot
	err       error
	refreshed bool
}

func (s *stubReader) Feed(context.Context, string) (*domain.Snapshot, error) { return s.snap, s.err }

func (s *stubReader) Article(_ context.Context, guid string) (domain.Article, error) {
	if s.err != nil {
		return domain.Article{}, s.err
	}
	for _, a := range s.snap.Items {
		if a.GUID == guid {
			return a, nil
		}
	}
	return domain.Article{}, fmt.Errorf("%w: %s", reader.ErrArticleNotFound, guid)
}

func (s *stubReader) Refresh() { s.refreshed = true }

func serve(t *testing.T, r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestGetMediaEmbedMissingParam(t *testing.T) {
	r := NewRouter(stubMedia{}, nil, logger.NopLogger{})

	rec := serve(t, r, http.MethodGet, "/api/get-media-embed")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decode(t, rec); body["error"] != "Missing mediaUrl" {
		t.Fatalf("unexpected body %v", body)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header on error response")
	}
}

func TestGetMediaEmbedResolvedAndFailed(t *testing.T) {
	r := NewRouter(stubMedia{results: map[string]embeds.Result{
		"https://medium.com/media/tweet": {Status: embeds.StatusResolved, HTML: `<blockquote class="twitter-tweet"></blockquote>`, Twitter: true},
	}}, nil, logger.NopLogger{})

	rec := serve(t, r, http.MethodGet, "/api/get-media-embed?mediaUrl=https%3A%2F%2Fmedium.com%2Fmedia%2Ftweet")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body["embedHtml"] != `<blockquote class="twitter-tweet"></blockquote>` || body["isTwitterEmbed"] != true || body["status"] != "resolved" {
		t.Fatalf("unexpected body %v", body)
	}

	rec = serve(t, r, http.MethodGet, "/api/get-media-embed?mediaUrl=https://medium.com/media/unknown")
	if rec.Code != http.StatusOK {
		t.Fatalf("failure must still be 200, got %d", rec.Code)
	}
	body = decode(t, rec)
	if v, ok := body["embedHtml"]; !ok || v != nil {
		t.Fatalf("embedHtml should be null, got %v", body)
	}
	if body["isTwitterEmbed"] != false || body["status"] != "failed" {
		t.Fatalf("unexpected failure body %v", body)
	}
}

func TestGetMediaEmbedPanicIs500(t *testing.T) {
	r := NewRouter(stubMedia{panics: true}, nil, logger.NopLogger{})
	rec := serve(t, r, http.MethodGet, "/api/get-media-embed?mediaUrl=x")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPreflight(t *testing.T) {
	r := NewRouter(stubMedia{}, nil, logger.NopLogger{})
	rec := serve(t, r, http.MethodOptions, "/api/get-media-embed")
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("unexpected preflight response %d %v", rec.Code, rec.Header())
	}
}

func TestGetEmbeds(t *testing.T) {
	ok := NewRouter(stubMedia{page: embeds.PageResult{Embeds: []string{"<iframe></iframe>"}, HasTwitter: true}}, nil, logger.NopLogger{})

	if rec := serve(t, ok, http.MethodGet, "/api/get-embeds"); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing param status = %d", rec.Code)
	}

	rec := serve(t, ok, http.MethodGet, "/api/get-embeds?articleUrl=https://medium.com/horizonti/post")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if list, _ := body["embeds"].([]any); len(list) != 1 || body["hasTwitterEmbed"] != true {
		t.Fatalf("unexpected body %v", body)
	}

	bad := NewRouter(stubMedia{pageErr: fmt.Errorf("%w: status 404", embeds.ErrFetch)}, nil, logger.NopLogger{})
	if rec := serve(t, bad, http.MethodGet, "/api/get-embeds?articleUrl=https://medium.com/x"); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestFeedRoutes(t *testing.T) {
	rd := &stubReader{snap: &domain.Snapshot{Items: []domain.Article{{GUID: "a", Title: "First"}}}}
	r := NewRouter(stubMedia{}, rd, logger.NopLogger{})

	rec := serve(t, r, http.MethodGet, "/api/feed?category=politics")
	if rec.Code != http.StatusOK {
		t.Fatalf("feed status = %d", rec.Code)
	}
	if items, _ := decode(t, rec)["items"].([]any); len(items) != 1 {
		t.Fatalf("unexpected feed body %s", rec.Body.String())
	}

	if rec := serve(t, r, http.MethodGet, "/api/article?guid=a"); rec.Code != http.StatusOK {
		t.Fatalf("article status = %d", rec.Code)
	}
	if rec := serve(t, r, http.MethodGet, "/api/article?guid=zzz"); rec.Code != http.StatusNotFound {
		t.Fatalf("missing article status = %d", rec.Code)
	}
	if rec := serve(t, r, http.MethodGet, "/api/article"); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing guid status = %d", rec.Code)
	}
	if rec := serve(t, r, http.MethodPost, "/api/refresh"); rec.Code != http.StatusAccepted || !rd.refreshed {
		t.Fatalf("refresh not applied: %d", rec.Code)
	}

	failing := NewRouter(stubMedia{}, &stubReader{err: feed.ErrFeedFailure}, logger.NopLogger{})
	if rec := serve(t, failing, http.MethodGet, "/api/feed"); rec.Code != http.StatusBadGateway {
		t.Fatalf("feed failure status = %d", rec.Code)
	}
}

func TestHealthAndNotFound(t *testing.T) {
	r := NewRouter(stubMedia{}, nil, logger.NopLogger{})
	if rec := serve(t, r, http.MethodGet, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	if rec := serve(t, r, http.MethodGet, "/api/feed"); rec.Code != http.StatusNotFound {
		t.Fatalf("feed without reader should 404, got %d", rec.Code)
	}
}
