package transfer

import (
	"time"

	"github.com/featherpost/dashboard-core/internal/models"
)

const (
	ErrTypeSyncInProgress = "sync_in_progress"
	ErrTypeSyncCooldown   = "sync_cooldown"
	ErrTypeRateLimit      = "rate_limit"

	CodeReconnectRequired = "TWITTER_RECONNECT_REQUIRED"
)

type SyncStats struct {
	MetricsUpdated  int            `json:"metrics_updated"`
	Errors          int            `json:"errors"`
	TotalProcessed  int            `json:"total_processed"`
	TotalCandidates int            `json:"total_candidates"`
	Remaining       int            `json:"remaining"`
	SkipReasons     map[string]int `json:"skip_reasons"`
}

type SyncTriggerResponse struct {
	Success         bool               `json:"success"`
	RunID           string             `json:"runId"`
	Stats           SyncStats          `json:"stats"`
	SyncStatus      *models.SyncStatus `json:"syncStatus"`
	UpdatedTweetIDs []string           `json:"updatedTweetIds"`
	SkippedTweetIDs []string           `json:"skippedTweetIds"`
	RateLimited     bool               `json:"rateLimited"`
	ResetTime       *time.Time         `json:"resetTime"`
	DebugInfo       string             `json:"debugInfo"`
}

// SyncErrorResponse covers the 409/429/401/400 bodies of the sync trigger
// endpoint. Type distinguishes the internal cooldown from the external
// platform limit; Code carries the reconnect-required marker.
type SyncErrorResponse struct {
	Type        string             `json:"type"`
	Code        string             `json:"code"`
	Message     string             `json:"message"`
	SyncStatus  *models.SyncStatus `json:"syncStatus"`
	Stats       *SyncStats         `json:"stats"`
	ResetTime   *time.Time         `json:"resetTime"`
	WaitMinutes int                `json:"waitMinutes"`
}

type SyncStatusResponse struct {
	Disconnected bool               `json:"disconnected"`
	SyncStatus   *models.SyncStatus `json:"syncStatus"`
}

// Summary converts a successful trigger response into the in-memory summary.
func (r *SyncTriggerResponse) Summary() *models.SyncSummary {
	return &models.SyncSummary{
		RunID:           r.RunID,
		Updated:         r.Stats.MetricsUpdated,
		Errors:          r.Stats.Errors,
		Processed:       r.Stats.TotalProcessed,
		TotalCandidates: r.Stats.TotalCandidates,
		Remaining:       r.Stats.Remaining,
		SkipReasons:     r.Stats.SkipReasons,
		DebugInfo:       r.DebugInfo,
		At:              time.Now(),
	}
}
