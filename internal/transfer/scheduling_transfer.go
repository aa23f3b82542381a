package transfer

import (
	"time"

	"github.com/featherpost/dashboard-core/internal/models"
)

type ScheduledTweetDTO struct {
	ID           string     `json:"id"`
	Content      string     `json:"content"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	Timezone     string     `json:"timezone"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message"`
	PostedAt     *time.Time `json:"posted_at"`
	MediaCount   int        `json:"media_count"`
}

type ScheduledListResponse struct {
	ScheduledTweets []ScheduledTweetDTO `json:"scheduled_tweets"`
	Disconnected    bool                `json:"disconnected"`
}

type lastTick struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

type schedulerInfo struct {
	Started     bool     `json:"started"`
	LastTick    lastTick `json:"lastTick"`
	NextRunInMs int64    `json:"nextRunInMs"`
}

type userQueueInfo struct {
	DueNowCount int `json:"dueNowCount"`
}

type SchedulerStatusResponse struct {
	Scheduler schedulerInfo `json:"scheduler"`
	UserQueue userQueueInfo `json:"userQueue"`
}

func (r *SchedulerStatusResponse) Heartbeat() *models.SchedulerHeartbeat {
	return &models.SchedulerHeartbeat{
		Started:        r.Scheduler.Started,
		LastTickStatus: r.Scheduler.LastTick.Status,
		LastTickAt:     r.Scheduler.LastTick.At,
		DueNowCount:    r.UserQueue.DueNowCount,
		NextRunIn:      r.Scheduler.NextRunInMs,
	}
}
