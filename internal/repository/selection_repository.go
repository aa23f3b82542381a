package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/featherpost/dashboard-core/internal/models"
)

type SelectionRepository interface {
	Get(ctx context.Context) (*models.SelectedAccount, error)
	Save(ctx context.Context, sa *models.SelectedAccount) error
	Clear(ctx context.Context) error
}

type selectionRepository struct {
	db *sql.DB
}

func NewSelectionRepository(db *sql.DB) SelectionRepository {
	return &selectionRepository{db: db}
}

func (r *selectionRepository) Get(ctx context.Context) (*models.SelectedAccount, error) {
	query := "SELECT id, username, display_name, team_id, saved_at FROM selected_account WHERE slot = 1"

	var sa models.SelectedAccount
	err := r.db.QueryRowContext(ctx, query).Scan(&sa.ID, &sa.Username, &sa.DisplayName, &sa.TeamID, &sa.SavedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, fmt.Errorf("query row: %w", err)
	}

	return &sa, nil
}

func (r *selectionRepository) Save(ctx context.Context, sa *models.SelectedAccount) error {
	query := `
		INSERT INTO selected_account (slot, id, username, display_name, team_id, saved_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET
			id = excluded.id,
			username = excluded.username,
			display_name = excluded.display_name,
			team_id = excluded.team_id,
			saved_at = excluded.saved_at
	`

	_, err := r.db.ExecContext(ctx, query, sa.ID, sa.Username, sa.DisplayName, sa.TeamID, sa.SavedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *selectionRepository) Clear(ctx context.Context) error {
	query := "DELETE FROM selected_account WHERE slot = 1"

	_, err := r.db.ExecContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
