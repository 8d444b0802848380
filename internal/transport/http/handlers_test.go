package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shortloop/shortloop/internal/config"
	"github.com/shortloop/shortloop/internal/processing/links"
	"github.com/shortloop/shortloop/internal/ratelimit"
	"github.com/shortloop/shortloop/internal/stream/kafka"
)

type fakeLinkRepo struct {
	byCode map[string]*links.Link
}

func (f *fakeLinkRepo) Insert(ctx context.Context, link *links.Link) error {
	if _, exists := f.byCode[link.Code]; exists {
		return links.ErrCodeTaken
	}
	copied := *link
	f.byCode[link.Code] = &copied
	return nil
}

func (f *fakeLinkRepo) FindByCode(ctx context.Context, code string) (*links.Link, error) {
	link, ok := f.byCode[code]
	if !ok {
		return nil, links.ErrNotFound
	}
	copied := *link
	return &copied, nil
}

type fakeCounterStore struct {
	counts map[string]int64
}

func (f *fakeCounterStore) Incr(ctx context.Context, key string) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCounterStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "shortloop-test"},
		Shortener: config.ShortenerConfig{
			BaseURL:        "http://sl.test",
			CodeLength:     7,
			RedirectStatus: http.StatusFound,
		},
		RateLimit: config.RateLimitConfig{
			RedirectLimit:  1000,
			RedirectWindow: time.Minute,
			APILimit:       1000,
			APIWindow:      time.Minute,
		},
	}
}

func newTestRouter(t *testing.T, repo *fakeLinkRepo) http.Handler {
	t.Helper()
	cfg := testConfig()

	resolver := links.NewResolver(repo, nil)
	redirectSvc := links.NewRedirectServiceWithOptions(resolver, kafka.NoopPublisher{}, links.RedirectOptions{
		AsyncClick: false,
	})
	linkSvc := links.NewService(repo, links.NewCryptoCodeGenerator(), cfg.Shortener.CodeLength)
	limiter := ratelimit.NewFixedWindowLimiter(&fakeCounterStore{counts: make(map[string]int64)})

	return NewRouterWithOptions(cfg, RouterDeps{
		LinkService:     linkSvc,
		RedirectService: redirectSvc,
		Limiter:         limiter,
	}, RouterOptions{})
}

func newRepoWith(link *links.Link) *fakeLinkRepo {
	repo := &fakeLinkRepo{byCode: make(map[string]*links.Link)}
	if link != nil {
		repo.byCode[link.Code] = link
	}
	return repo
}

func TestRedirectEndpointFound(t *testing.T) {
	router := newTestRouter(t, newRepoWith(&links.Link{
		ID:          "link-1",
		Code:        "abc1234",
		OriginalURL: "https://example.com/a",
		IsActive:    true,
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/abc1234", nil)
	req.RemoteAddr = "203.0.113.9:4321"
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://example.com/a" {
		t.Errorf("Location = %q", loc)
	}
}

func TestRedirectEndpointNotFound(t *testing.T) {
	router := newTestRouter(t, newRepoWith(nil))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope123", nil)
	req.RemoteAddr = "203.0.113.9:4321"
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRedirectEndpointInactiveAndExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)

	inactive := &links.Link{ID: "l1", Code: "inact12", OriginalURL: "https://example.com", IsActive: false}
	expired := &links.Link{ID: "l2", Code: "expd123", OriginalURL: "https://example.com", IsActive: true, ExpiresAt: &past}

	repo := newRepoWith(inactive)
	repo.byCode[expired.Code] = expired
	router := newTestRouter(t, repo)

	for _, code := range []string{"inact12", "expd123"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/"+code, nil)
		req.RemoteAddr = "203.0.113.9:4321"
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusGone {
			t.Errorf("GET /%s status = %d, want 410", code, rec.Code)
		}
	}
}

func TestRedirectEndpointUnsafeTarget(t *testing.T) {
	router := newTestRouter(t, newRepoWith(&links.Link{
		ID:          "l1",
		Code:        "meta123",
		OriginalURL: "http://169.254.169.254/latest",
		IsActive:    true,
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/meta123", nil)
	req.RemoteAddr = "203.0.113.9:4321"
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpointNotShadowedByRedirect(t *testing.T) {
	router := newTestRouter(t, newRepoWith(nil))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "203.0.113.9:4321"
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status field = %q", body.Status)
	}
}

func TestCreateLinkEndpoint(t *testing.T) {
	router := newTestRouter(t, newRepoWith(nil))

	body := strings.NewReader(`{"originalUrl":"https://example.com/page","customAlias":"my-page"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/links", body)
	req.RemoteAddr = "203.0.113.9:4321"
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Code string `json:"code"`
		Data struct {
			LinkID   string `json:"linkId"`
			Code     string `json:"code"`
			ShortURL string `json:"shortUrl"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Code != "my-page" {
		t.Errorf("code = %q", envelope.Data.Code)
	}
	if envelope.Data.ShortURL != "http://sl.test/my-page" {
		t.Errorf("shortUrl = %q", envelope.Data.ShortURL)
	}
	if envelope.Data.LinkID == "" {
		t.Error("linkId is empty")
	}
}

func TestCreateLinkEndpointInvalidURL(t *testing.T) {
	router := newTestRouter(t, newRepoWith(nil))

	body := strings.NewReader(`{"originalUrl":"ftp://example.com/f"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/links", body)
	req.RemoteAddr = "203.0.113.9:4321"
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateLinkEndpointAliasConflict(t *testing.T) {
	router := newTestRouter(t, newRepoWith(&links.Link{
		ID:          "l1",
		Code:        "my-page",
		OriginalURL: "https://example.com",
		IsActive:    true,
	}))

	body := strings.NewReader(`{"originalUrl":"https://example.com/other","customAlias":"my-page"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/links", body)
	req.RemoteAddr = "203.0.113.9:4321"
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestCreateLinkEndpointReservedAlias(t *testing.T) {
	router := newTestRouter(t, newRepoWith(nil))

	body := strings.NewReader(`{"originalUrl":"https://example.com/page","customAlias":"api"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/links", body)
	req.RemoteAddr = "203.0.113.9:4321"
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
