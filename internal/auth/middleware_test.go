package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(t *testing.T, mw func(http.Handler) http.Handler, header, value string) *httptest.ResponseRecorder {
	t.Helper()
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		mode, key  string
		sendHeader string
		sendValue  string
		wantCode   int
	}{
		{"mode none passes without key", "none", "secret", "", "", http.StatusOK},
		{"apikey with empty key passes", "apikey", "", "", "", http.StatusOK},
		{"correct key", "apikey", "secret", "x-api-key", "secret", http.StatusOK},
		{"wrong key", "apikey", "secret", "x-api-key", "nope", http.StatusUnauthorized},
		{"missing key", "apikey", "secret", "", "", http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mw := Middleware(tc.mode, "x-api-key", tc.key)
			rr := serve(t, mw, tc.sendHeader, tc.sendValue)
			if rr.Code != tc.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tc.wantCode)
			}
		})
	}
}
