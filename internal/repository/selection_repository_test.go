package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/featherpost/dashboard-core/internal/models"
)

func TestSelectionRepository_Get_ReturnsRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	saved := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "username", "display_name", "team_id", "saved_at"}).
		AddRow("a1", "alice", "Alice", "t1", saved)

	mock.ExpectQuery(`SELECT id, username, display_name, team_id, saved_at FROM selected_account`).
		WillReturnRows(rows)

	r := NewSelectionRepository(db)
	sa, err := r.Get(context.Background())
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if sa == nil || sa.ID != "a1" || sa.TeamID != "t1" {
		t.Errorf("unexpected projection: %+v", sa)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestSelectionRepository_Get_NoRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT id, username, display_name, team_id, saved_at FROM selected_account`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "display_name", "team_id", "saved_at"}))

	r := NewSelectionRepository(db)
	sa, err := r.Get(context.Background())
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if sa != nil {
		t.Errorf("expected nil projection, got %+v", sa)
	}
}

func TestSelectionRepository_Save_Upserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`INSERT INTO selected_account`).
		WithArgs("a1", "alice", "Alice", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewSelectionRepository(db)
	err = r.Save(context.Background(), &models.SelectedAccount{
		ID:          "a1",
		Username:    "alice",
		DisplayName: "Alice",
		SavedAt:     time.Now(),
	})
	if err != nil {
		t.Fatalf("Save err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestSelectionRepository_Clear(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`DELETE FROM selected_account`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewSelectionRepository(db)
	if err := r.Clear(context.Background()); err != nil {
		t.Fatalf("Clear err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestPreferenceRepository_FilterRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`INSERT INTO scheduling_filter`).
		WithArgs("a1", "failed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT filter FROM scheduling_filter`).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"filter"}).AddRow("failed"))

	r := NewPreferenceRepository(db)
	if err := r.SaveFilter(context.Background(), "a1", "failed"); err != nil {
		t.Fatalf("SaveFilter err=%v", err)
	}

	filter, err := r.GetFilter(context.Background(), "a1")
	if err != nil {
		t.Fatalf("GetFilter err=%v", err)
	}
	if filter != "failed" {
		t.Errorf("expected filter %q, got %q", "failed", filter)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestPreferenceRepository_GetFilter_Unset(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT filter FROM scheduling_filter`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"filter"}))

	r := NewPreferenceRepository(db)
	filter, err := r.GetFilter(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetFilter err=%v", err)
	}
	if filter != "" {
		t.Errorf("expected empty filter, got %q", filter)
	}
}
