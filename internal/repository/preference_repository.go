package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type PreferenceRepository interface {
	GetFilter(ctx context.Context, accountID string) (string, error)
	SaveFilter(ctx context.Context, accountID, filter string) error
}

type preferenceRepository struct {
	db *sql.DB
}

func NewPreferenceRepository(db *sql.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) GetFilter(ctx context.Context, accountID string) (string, error) {
	query := "SELECT filter FROM scheduling_filter WHERE account_id = ?"

	var filter string
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&filter)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		slog.Info(err.Error())
		return "", fmt.Errorf("query row: %w", err)
	}

	return filter, nil
}

func (r *preferenceRepository) SaveFilter(ctx context.Context, accountID, filter string) error {
	query := `
		INSERT INTO scheduling_filter (account_id, filter, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (account_id) DO UPDATE SET
			filter = excluded.filter,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, accountID, filter, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
