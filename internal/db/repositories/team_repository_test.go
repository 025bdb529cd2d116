package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/models"
)

// ---------------------------------------------------------------------------
// Column definitions and row builders
// ---------------------------------------------------------------------------

var teamCols = []string{"id", "team_name", "business_unit", "ptl", "created_at", "updated_at"}

func sampleTeamRow() *sqlmock.Rows {
	return sqlmock.NewRows(teamCols).
		AddRow(int64(1), "Unicorns", "Mobile", nil, time.Now(), time.Now())
}

func emptyTeamRow() *sqlmock.Rows {
	return sqlmock.NewRows(teamCols)
}

func newTeamRepo(t *testing.T) (*TeamRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTeamRepository(db), mock
}

// ---------------------------------------------------------------------------
// GetByID / GetByName
// ---------------------------------------------------------------------------

func TestGetTeamByID_Found(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectQuery("SELECT.*FROM teams.*WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(sampleTeamRow())

	team, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if team == nil {
		t.Fatal("expected team, got nil")
	}
	if team.TeamName != "Unicorns" {
		t.Errorf("TeamName = %s, want Unicorns", team.TeamName)
	}
}

func TestGetTeamByID_NotFound(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectQuery("SELECT.*FROM teams.*WHERE id").
		WillReturnRows(emptyTeamRow())

	team, err := repo.GetByID(context.Background(), 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if team != nil {
		t.Error("expected nil, got non-nil")
	}
}

func TestGetTeamByName_Found(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectQuery("SELECT.*FROM teams.*WHERE team_name").
		WithArgs("Unicorns").
		WillReturnRows(sampleTeamRow())

	team, err := repo.GetByName(context.Background(), "Unicorns")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if team == nil {
		t.Fatal("expected team, got nil")
	}
}

func TestGetTeamByName_NotFound(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectQuery("SELECT.*FROM teams.*WHERE team_name").
		WillReturnRows(emptyTeamRow())

	team, err := repo.GetByName(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if team != nil {
		t.Error("expected nil, got non-nil")
	}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestListTeams_Success(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectQuery("SELECT.*FROM teams.*ORDER BY team_name").
		WillReturnRows(sampleTeamRow())

	teams, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(teams) != 1 {
		t.Errorf("len(teams) = %d, want 1", len(teams))
	}
}

func TestListTeams_DBError(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectQuery("SELECT.*FROM teams").
		WillReturnError(errDB)

	_, err := repo.List(context.Background())
	if err == nil {
		t.Error("expected error")
	}
}

// ---------------------------------------------------------------------------
// Create / Update / Delete
// ---------------------------------------------------------------------------

func TestCreateTeam_Success(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectQuery("INSERT INTO teams").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(2), time.Now(), time.Now()))

	team := &models.Team{TeamName: "Unicorns", BusinessUnit: "Mobile"}
	if err := repo.Create(context.Background(), team); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if team.ID != 2 {
		t.Errorf("ID = %d, want 2", team.ID)
	}
}

func TestCreateTeam_DBError(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectQuery("INSERT INTO teams").
		WillReturnError(errDB)

	team := &models.Team{TeamName: "Unicorns"}
	if err := repo.Create(context.Background(), team); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestUpdateTeam_Success(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectExec("UPDATE teams").
		WillReturnResult(sqlmock.NewResult(0, 1))

	team := &models.Team{ID: 1, TeamName: "Unicorns", BusinessUnit: "Web"}
	if err := repo.Update(context.Background(), team); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteTeam_Success(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectExec("DELETE FROM teams").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
