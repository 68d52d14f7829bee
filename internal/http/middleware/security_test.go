package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newSecurityRouter(opt SecurityOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders(opt))
	r.POST("/webhook/contact", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", func(c *gin.Context) { c.String(http.StatusOK, "m") })
	return r
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	r := newSecurityRouter(SecurityOptions{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	h := w.Header()
	want := map[string]string{
		"X-Content-Type-Options":            "nosniff",
		"X-Frame-Options":                   "DENY",
		"Referrer-Policy":                   "no-referrer",
		"X-Permitted-Cross-Domain-Policies": "none",
	}
	for k, v := range want {
		if got := h.Get(k); got != v {
			t.Fatalf("%s = %q; want %q", k, got, v)
		}
	}
	if h.Get("Cache-Control") != "" || h.Get("Strict-Transport-Security") != "" {
		t.Fatalf("unexpected optional headers: %#v", h)
	}
}

func TestSecurityHeaders_NoStoreByPrefix(t *testing.T) {
	r := newSecurityRouter(SecurityOptions{NoStorePrefixes: []string{"/webhook"}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook/contact", nil))
	if w.Header().Get("Cache-Control") != "no-store" || w.Header().Get("Pragma") != "no-cache" || w.Header().Get("Expires") != "0" {
		t.Fatalf("webhook response should not be cacheable: %#v", w.Header())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Header().Get("Cache-Control") != "" {
		t.Fatalf("metrics should keep default caching, got %q", w.Header().Get("Cache-Control"))
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	r := newSecurityRouter(SecurityOptions{EnableHSTS: true, HSTSMaxAge: 365 * 24 * time.Hour})

	// Plain HTTP: never HSTS.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("HSTS on plain HTTP: %q", got)
	}

	// Direct TLS.
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.TLS = &tls.ConnectionState{}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Fatalf("HSTS = %q", got)
	}

	// Behind a TLS-terminating proxy, default max age.
	r = newSecurityRouter(SecurityOptions{EnableHSTS: true})
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("X-Forwarded-Proto", "HTTPS")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=15552000; includeSubDomains" {
		t.Fatalf("HSTS via proxy = %q", got)
	}
}

func Test_hasAnyPrefix(t *testing.T) {
	cases := []struct {
		path     string
		prefixes []string
		want     bool
	}{
		{"/webhook/call", []string{"/webhook"}, true},
		{"/health", []string{"/webhook"}, false},
		{"/health", []string{"/"}, true},
		{"/health", []string{""}, false},
		{"/health", nil, false},
	}
	for _, tc := range cases {
		if got := hasAnyPrefix(tc.path, tc.prefixes); got != tc.want {
			t.Fatalf("hasAnyPrefix(%q, %v) = %v; want %v", tc.path, tc.prefixes, got, tc.want)
		}
	}
}
