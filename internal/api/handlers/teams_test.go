package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

// newTeamRouter creates a gin router with all TeamHandlers routes registered.
func newTeamRouter(t *testing.T) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := NewTeamHandlers(db)

	r := gin.New()
	r.Use(asActor("admin@example.com"))
	r.GET("/teams", h.ListTeamsHandler())
	r.GET("/teams/:id", h.GetTeamHandler())
	r.POST("/teams", h.CreateTeamHandler())
	r.PATCH("/teams/:id", h.UpdateTeamHandler())
	r.DELETE("/teams/:id", h.DeleteTeamHandler())
	return mock, r
}

// ---------------------------------------------------------------------------
// ListTeamsHandler / GetTeamHandler
// ---------------------------------------------------------------------------

func TestListTeamsHandler_Success(t *testing.T) {
	mock, r := newTeamRouter(t)

	mock.ExpectQuery("SELECT").WillReturnRows(sampleTeamRow())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/teams", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if getJSON(w)["teams"] == nil {
		t.Error("response missing 'teams' key")
	}
}

func TestGetTeamHandler_NotFound(t *testing.T) {
	mock, r := newTeamRouter(t)

	mock.ExpectQuery("SELECT").WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(teamCols))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/teams/404", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// ---------------------------------------------------------------------------
// CreateTeamHandler
// ---------------------------------------------------------------------------

func TestCreateTeamHandler_Success(t *testing.T) {
	mock, r := newTeamRouter(t)

	mock.ExpectQuery("SELECT").WithArgs("Mobile").
		WillReturnRows(sqlmock.NewRows(teamCols))
	mock.ExpectQuery("INSERT INTO teams").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(7), time.Now(), time.Now()))
	// BusinessUnit, TeamName; empty PTL is omitted.
	expectAuditWrite(mock, 2)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/teams",
		jsonBody(map[string]string{"teamName": "Mobile", "businessUnit": "B2C"})))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if getJSON(w)["teamName"] != "Mobile" {
		t.Errorf("teamName = %v", getJSON(w)["teamName"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateTeamHandler_DuplicateName(t *testing.T) {
	mock, r := newTeamRouter(t)

	mock.ExpectQuery("SELECT").WithArgs("Mobile").
		WillReturnRows(sampleTeamRow())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/teams",
		jsonBody(map[string]string{"teamName": "Mobile", "businessUnit": "B2C"})))

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestCreateTeamHandler_MissingRequiredFields(t *testing.T) {
	_, r := newTeamRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/teams",
		jsonBody(map[string]string{"teamName": "Mobile"})))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ---------------------------------------------------------------------------
// UpdateTeamHandler
// ---------------------------------------------------------------------------

func TestUpdateTeamHandler_RenameChecksUniqueness(t *testing.T) {
	mock, r := newTeamRouter(t)

	mock.ExpectQuery("SELECT").WithArgs(int64(7)).
		WillReturnRows(sampleTeamRow())
	mock.ExpectQuery("SELECT").WithArgs("Web").
		WillReturnRows(sqlmock.NewRows(teamCols))
	mock.ExpectExec("UPDATE teams").
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAuditWrite(mock, 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("PATCH", "/teams/7",
		jsonBody(map[string]string{"teamName": "Web"})))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if getJSON(w)["teamName"] != "Web" {
		t.Errorf("teamName = %v", getJSON(w)["teamName"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateTeamHandler_RenameToTakenName(t *testing.T) {
	mock, r := newTeamRouter(t)

	mock.ExpectQuery("SELECT").WithArgs(int64(7)).
		WillReturnRows(sampleTeamRow())
	mock.ExpectQuery("SELECT").WithArgs("Web").
		WillReturnRows(sqlmock.NewRows(teamCols).
			AddRow(int64(8), "Web", "B2B", nil, time.Now(), time.Now()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("PATCH", "/teams/7",
		jsonBody(map[string]string{"teamName": "Web"})))

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestUpdateTeamHandler_NoChangesNoAudit(t *testing.T) {
	mock, r := newTeamRouter(t)

	mock.ExpectQuery("SELECT").WithArgs(int64(7)).
		WillReturnRows(sampleTeamRow())
	mock.ExpectExec("UPDATE teams").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("PATCH", "/teams/7",
		jsonBody(map[string]string{"businessUnit": "B2C"})))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// ---------------------------------------------------------------------------
// DeleteTeamHandler
// ---------------------------------------------------------------------------

func TestDeleteTeamHandler_Success(t *testing.T) {
	mock, r := newTeamRouter(t)

	mock.ExpectQuery("SELECT").WithArgs(int64(7)).
		WillReturnRows(sampleTeamRow())
	mock.ExpectExec("DELETE FROM teams").WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAuditWrite(mock, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/teams/7", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteTeamHandler_NotFound(t *testing.T) {
	mock, r := newTeamRouter(t)

	mock.ExpectQuery("SELECT").WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(teamCols))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/teams/404", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
