package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/featherpost/dashboard-core/internal/models"
	"github.com/featherpost/dashboard-core/pkg/utils"
)

// teamStatusTTL bounds how long a derived team status survives without
// re-derivation. Invalidate skips the wait after an account connection.
const teamStatusTTL = 12 * time.Hour

type TeamStatusRepository interface {
	Get(ctx context.Context, sessionToken string) (models.TeamStatus, error)
	Save(ctx context.Context, sessionToken string, status models.TeamStatus) error
	Invalidate(ctx context.Context, sessionToken string) error
}

type teamStatusRepository struct {
	rdb *redis.Client
}

func NewTeamStatusRepository(rdb *redis.Client) TeamStatusRepository {
	return &teamStatusRepository{rdb: rdb}
}

func teamStatusKey(sessionToken string) string {
	return "dashboard:team_status:" + utils.SessionFingerprint(sessionToken)
}

// Get returns the cached status, or TeamStatusUnknown on a miss. Redis
// failures also resolve to unknown so resolution can proceed.
func (r *teamStatusRepository) Get(ctx context.Context, sessionToken string) (models.TeamStatus, error) {
	val, err := r.rdb.Get(ctx, teamStatusKey(sessionToken)).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Info(err.Error())
		}
		return models.TeamStatusUnknown, nil
	}

	switch models.TeamStatus(val) {
	case models.TeamStatusInTeam, models.TeamStatusIndividual:
		return models.TeamStatus(val), nil
	default:
		return models.TeamStatusUnknown, nil
	}
}

func (r *teamStatusRepository) Save(ctx context.Context, sessionToken string, status models.TeamStatus) error {
	err := r.rdb.Set(ctx, teamStatusKey(sessionToken), string(status), teamStatusTTL).Err()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *teamStatusRepository) Invalidate(ctx context.Context, sessionToken string) error {
	err := r.rdb.Del(ctx, teamStatusKey(sessionToken)).Err()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
