package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeTokens map[string]string

func (f fakeTokens) Parse(raw string) (string, error) {
	if owner, ok := f[raw]; ok {
		return owner, nil
	}
	return "", errors.New("unknown token")
}

func TestRequireAuth(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = Owner(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireAuth(fakeTokens{"good": "alice"}, slog.New(slog.NewTextHandler(io.Discard, nil)))(next)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"missing header", "", http.StatusUnauthorized, `{"message":"No token provided."}`},
		{"scheme only", "Bearer", http.StatusUnauthorized, `{"message":"No token provided."}`},
		{"bad token", "Bearer bad", http.StatusUnauthorized, `{"message":"Invalid token."}`},
		{"valid", "Bearer good", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/review/history", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
				assert.Empty(t, seen)
			} else {
				assert.Equal(t, "alice", seen)
			}
		})
	}
}

func TestClientKey(t *testing.T) {
	assert.Equal(t, "192.0.2.1", clientKey("192.0.2.1:1234"))
	assert.Equal(t, "192.0.2.1", clientKey("192.0.2.1"))
	assert.Equal(t, "::1", clientKey("[::1]:80"))
}
