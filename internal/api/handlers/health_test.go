package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func newHealthRouter(t *testing.T) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := NewHealthHandlers(db)

	r := gin.New()
	r.GET("/health", h.LivenessHandler())
	r.GET("/health/ready", h.ReadinessHandler())
	return mock, r
}

func TestLivenessHandler(t *testing.T) {
	_, r := newHealthRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if getJSON(w)["status"] != "ok" {
		t.Errorf("status body = %v", getJSON(w)["status"])
	}
}

func TestReadinessHandler_DatabaseUp(t *testing.T) {
	mock, r := newHealthRouter(t)

	mock.ExpectPing()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health/ready", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestReadinessHandler_DatabaseDown(t *testing.T) {
	mock, r := newHealthRouter(t)

	mock.ExpectPing().WillReturnError(errDB)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health/ready", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
