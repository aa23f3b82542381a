package models

import "time"

type SyncResult string

const (
	SyncResultSuccess     SyncResult = "success"
	SyncResultRateLimited SyncResult = "rate_limited"
	SyncResultError       SyncResult = "error"
	SyncResultUnknown     SyncResult = "unknown"
)

// SyncStatus mirrors the backend's per-account synchronization state. The
// backend is the source of truth; this copy only gates the UI.
type SyncStatus struct {
	InProgress    bool       `json:"inProgress"`
	LastResult    SyncResult `json:"lastResult"`
	LastSyncAt    *time.Time `json:"lastSyncAt"`
	NextAllowedAt *time.Time `json:"nextAllowedAt"`
}

// CooldownActive reports whether the backend-imposed cooldown boundary is
// still in the future at the given instant.
func (s *SyncStatus) CooldownActive(now time.Time) bool {
	return s != nil && s.NextAllowedAt != nil && s.NextAllowedAt.After(now)
}

// SyncSummary is the outcome of one completed sync invocation. Held in memory
// only; each successful run replaces the previous summary wholesale.
type SyncSummary struct {
	RunID           string         `json:"run_id"`
	Updated         int            `json:"updated"`
	Errors          int            `json:"errors"`
	Processed       int            `json:"processed"`
	TotalCandidates int            `json:"total_candidates"`
	Remaining       int            `json:"remaining"`
	SkipReasons     map[string]int `json:"skip_reasons"`
	DebugInfo       string         `json:"debug_info"`
	At              time.Time      `json:"at"`
}
