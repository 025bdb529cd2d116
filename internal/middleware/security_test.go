package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// applySecurityHeaders runs a GET / through SecurityHeadersMiddleware and returns
// the response recorder so callers can inspect headers.
func applySecurityHeaders(cfg SecurityHeadersConfig) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)
	return w
}

// ---------------------------------------------------------------------------
// APISecurityHeadersConfig
// ---------------------------------------------------------------------------

func TestAPISecurityHeadersConfig(t *testing.T) {
	cfg := APISecurityHeadersConfig()

	if !cfg.EnableHSTS {
		t.Error("APISecurityHeadersConfig().EnableHSTS = false, want true")
	}
	if cfg.HSTSMaxAge != 31536000 {
		t.Errorf("HSTSMaxAge = %d, want 31536000", cfg.HSTSMaxAge)
	}
	if cfg.FrameOptionsValue != "DENY" {
		t.Errorf("FrameOptionsValue = %q, want DENY", cfg.FrameOptionsValue)
	}
	if cfg.ContentSecurityPolicy == "" {
		t.Error("ContentSecurityPolicy is empty, want non-empty")
	}
	if cfg.ReferrerPolicy != "no-referrer" {
		t.Errorf("ReferrerPolicy = %q, want no-referrer", cfg.ReferrerPolicy)
	}
}

// ---------------------------------------------------------------------------
// SecurityHeadersMiddleware
// ---------------------------------------------------------------------------

func TestSecurityHeadersMiddleware_HSTS(t *testing.T) {
	t.Run("hsts with subdomains", func(t *testing.T) {
		cfg := SecurityHeadersConfig{
			EnableHSTS:            true,
			HSTSMaxAge:            31536000,
			HSTSIncludeSubdomains: true,
		}
		w := applySecurityHeaders(cfg)
		hsts := w.Header().Get("Strict-Transport-Security")
		if !strings.Contains(hsts, "max-age=31536000") {
			t.Errorf("HSTS = %q, want to contain max-age=31536000", hsts)
		}
		if !strings.Contains(hsts, "includeSubDomains") {
			t.Errorf("HSTS = %q, want to contain includeSubDomains", hsts)
		}
	})

	t.Run("hsts disabled", func(t *testing.T) {
		w := applySecurityHeaders(SecurityHeadersConfig{})
		if got := w.Header().Get("Strict-Transport-Security"); got != "" {
			t.Errorf("HSTS = %q, want empty when disabled", got)
		}
	})
}

func TestSecurityHeadersMiddleware_APIDefaults(t *testing.T) {
	w := applySecurityHeaders(APISecurityHeadersConfig())

	checks := map[string]string{
		"X-Frame-Options":                   "DENY",
		"X-Content-Type-Options":            "nosniff",
		"Content-Security-Policy":           "default-src 'none'; frame-ancestors 'none'",
		"Referrer-Policy":                   "no-referrer",
		"X-Permitted-Cross-Domain-Policies": "none",
		"Cross-Origin-Resource-Policy":      "same-origin",
	}
	for header, want := range checks {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}
