package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/telemetry"
)

func TestMetricsMiddleware_CountsRequests(t *testing.T) {
	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/api/v1/projects", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(telemetry.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/projects", "200"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	r.ServeHTTP(w, req)

	after := testutil.ToFloat64(telemetry.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/projects", "200"))
	if after != before+1 {
		t.Errorf("http_requests_total delta = %v, want 1", after-before)
	}
}

func TestMetricsMiddleware_UnmatchedRouteUsesPlaceholderPath(t *testing.T) {
	r := gin.New()
	r.Use(MetricsMiddleware())

	before := testutil.ToFloat64(telemetry.HTTPRequestsTotal.WithLabelValues("GET", "<no-route>", "404"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/definitely/not/registered", nil)
	r.ServeHTTP(w, req)

	after := testutil.ToFloat64(telemetry.HTTPRequestsTotal.WithLabelValues("GET", "<no-route>", "404"))
	if after != before+1 {
		t.Errorf("http_requests_total delta = %v, want 1", after-before)
	}
}
