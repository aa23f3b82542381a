package models

import "time"

type ScheduleStatus string

const (
	ScheduleStatusPending       ScheduleStatus = "pending"
	ScheduleStatusProcessing    ScheduleStatus = "processing"
	ScheduleStatusPosted        ScheduleStatus = "posted"
	ScheduleStatusPostedPartial ScheduleStatus = "posted_partial"
	ScheduleStatusFailed        ScheduleStatus = "failed"
	ScheduleStatusCancelled     ScheduleStatus = "cancelled"
)

type ScheduledTweet struct {
	ID           string         `json:"id"`
	Content      string         `json:"content"`
	ScheduledFor time.Time      `json:"scheduled_for"`
	Timezone     string         `json:"timezone,omitempty"`
	Status       ScheduleStatus `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	PostedAt     *time.Time     `json:"posted_at,omitempty"`
	MediaCount   int            `json:"media_count"`
}

// SchedulerHeartbeat is the lightweight scheduler status used for an
// informational banner. It never gates user actions.
type SchedulerHeartbeat struct {
	Started        bool      `json:"started"`
	LastTickStatus string    `json:"last_tick_status"`
	LastTickAt     time.Time `json:"last_tick_at"`
	DueNowCount    int       `json:"due_now_count"`
	NextRunIn      int64     `json:"next_run_in_ms"`
}
