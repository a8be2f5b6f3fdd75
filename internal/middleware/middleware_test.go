package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecurity_HeadersPresent(t *testing.T) {
	rr := httptest.NewRecorder()
	Security(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options"} {
		if rr.Header().Get(h) == "" {
			t.Fatalf("%s missing", h)
		}
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must not be sent over plain HTTP")
	}
}

func TestForceHTTPS(t *testing.T) {
	cases := []struct {
		host string
		want int
	}{
		{"localhost:8484", http.StatusOK},
		{"127.0.0.1:8484", http.StatusOK},
		{"dash.example.com", http.StatusPermanentRedirect},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/widgets", nil)
		req.Host = tc.host
		rr := httptest.NewRecorder()

		ForceHTTPS(ok).ServeHTTP(rr, req)

		if rr.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.host, rr.Code, tc.want)
		}
	}
}

func TestForceHTTPS_BehindProxy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "dash.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")
	rr := httptest.NewRecorder()

	ForceHTTPS(ok).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}
