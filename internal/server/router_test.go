package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/code-reviewer/internal/auth"
	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/metrics"
	"github.com/sevigo/code-reviewer/internal/ratelimit"
	"github.com/sevigo/code-reviewer/internal/storage"
	"github.com/sevigo/code-reviewer/mocks"
)

func newTestRouter(t *testing.T, reviewer core.Reviewer, limiter *ratelimit.Limiter) (http.Handler, *auth.Verifier) {
	t.Helper()
	reg := prometheus.NewRegistry()
	tokens := auth.NewVerifier("test-secret", time.Hour)
	r := NewRouter(Deps{
		Reviewer: reviewer,
		Store:    storage.NewMemoryStore(),
		Tokens:   tokens,
		Limiter:  limiter,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return r, tokens
}

func TestRouter_StaticRoutes(t *testing.T) {
	r, _ := newTestRouter(t, nil, nil)

	tests := []struct {
		path string
		want string
	}{
		{"/", "Hello World"},
		{"/health", "OK"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tt.want, rec.Body.String())
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_HistoryRequiresToken(t *testing.T) {
	r, tokens := newTestRouter(t, nil, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/review/history", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"No token provided."}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/review/history", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid token."}`, rec.Body.String())

	token, err := tokens.Sign("alice")
	require.NoError(t, err)

	save := httptest.NewRequest(http.MethodPost, "/review/save",
		strings.NewReader(`{"code":"c","review":"r","model":"gemini-pro"}`))
	save.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, save)
	require.Equal(t, http.StatusOK, rec.Code)

	list := httptest.NewRequest(http.MethodGet, "/review/history", nil)
	list.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, list)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user":"alice"`)
}

func TestRouter_ReviewRateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	reviewer := mocks.NewMockReviewer(ctrl)
	reviewer.EXPECT().Review(gomock.Any(), "x", gomock.Any()).
		Return(core.Outcome{Kind: core.OutcomeSuccess, Text: "ok", Model: core.ModelGemini20Flash}, nil).
		Times(1)

	r, _ := newTestRouter(t, reviewer, ratelimit.New(0.001, 1))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/ai/get-review", strings.NewReader(`{"code":"x"}`))
		req.RemoteAddr = "192.0.2.10:5555"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "ok", first.Body.String())

	assert.Equal(t, http.StatusTooManyRequests, send().Code)
}

func TestRouter_CORS(t *testing.T) {
	r, _ := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/ai/get-review", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimitKeyHonoursTrustProxy(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		wantSecond int
	}{
		{name: "Forwarded header ignored by default", trustProxy: false, wantSecond: http.StatusTooManyRequests},
		{name: "Forwarded header used behind a proxy", trustProxy: true, wantSecond: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			reviewer := mocks.NewMockReviewer(ctrl)
			reviewer.EXPECT().Review(gomock.Any(), "x", gomock.Any()).
				Return(core.Outcome{Kind: core.OutcomeSuccess, Text: "ok", Model: core.ModelGemini20Flash}, nil).
				AnyTimes()

			reg := prometheus.NewRegistry()
			r := NewRouter(Deps{
				Reviewer:   reviewer,
				Store:      storage.NewMemoryStore(),
				Tokens:     auth.NewVerifier("test-secret", time.Hour),
				Limiter:    ratelimit.New(0.001, 1),
				Metrics:    metrics.New(reg),
				Gatherer:   reg,
				TrustProxy: tt.trustProxy,
			}, slog.New(slog.NewTextHandler(io.Discard, nil)))

			send := func(forwardedFor string) int {
				req := httptest.NewRequest(http.MethodPost, "/ai/get-review", strings.NewReader(`{"code":"x"}`))
				req.RemoteAddr = "192.0.2.10:5555"
				req.Header.Set("X-Forwarded-For", forwardedFor)
				rec := httptest.NewRecorder()
				r.ServeHTTP(rec, req)
				return rec.Code
			}

			assert.Equal(t, http.StatusOK, send("198.51.100.1"))
			assert.Equal(t, tt.wantSecond, send("198.51.100.2"))
		})
	}
}
