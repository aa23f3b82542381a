package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
	_ "time/tzdata"

	"github.com/featherpost/dashboard-core/internal/client"
	"github.com/featherpost/dashboard-core/internal/models"
	"github.com/featherpost/dashboard-core/internal/repository"
	"github.com/featherpost/dashboard-core/internal/transfer"
)

const (
	scheduledEndpoint       = "/api/scheduling/scheduled"
	scheduleRetryEndpoint   = "/api/scheduling/retry"
	schedulerStatusEndpoint = "/api/scheduling/status"
	scheduleEndpointPrefix  = "/api/scheduling/"
)

// zoneAliases corrects legacy zone-name spellings seen in stored schedules
// before validation.
var zoneAliases = map[string]string{
	"Asia/Calcutta": "Asia/Kolkata",
	"US/Pacific":    "America/Los_Angeles",
	"US/Eastern":    "America/New_York",
}

const scheduledTimeLayout = "Jan 2, 2006 3:04 PM MST"

// NormalizeStatus maps a backend status string onto the closed display set.
// Unknown values default to pending so a newer backend vocabulary degrades
// gracefully instead of breaking the view.
func NormalizeStatus(raw string) models.ScheduleStatus {
	switch raw {
	case "pending":
		return models.ScheduleStatusPending
	case "processing":
		return models.ScheduleStatusProcessing
	case "completed", "posted":
		return models.ScheduleStatusPosted
	case "partially_completed", "posted_partial":
		return models.ScheduleStatusPostedPartial
	case "failed":
		return models.ScheduleStatusFailed
	case "cancelled", "canceled":
		return models.ScheduleStatusCancelled
	default:
		return models.ScheduleStatusPending
	}
}

// NormalizeFilter maps legacy filter query values onto the canonical set.
func NormalizeFilter(raw string) string {
	return string(NormalizeStatus(raw))
}

// FormatScheduledTime renders the instant in the schedule's zone when the
// zone name is valid, and in the viewer's local zone otherwise. Never errors.
func FormatScheduledTime(t time.Time, timezone string) string {
	loc := time.Local
	if timezone != "" {
		if alias, ok := zoneAliases[timezone]; ok {
			timezone = alias
		}
		if parsed, err := time.LoadLocation(timezone); err == nil {
			loc = parsed
		} else {
			slog.Info("invalid timezone, falling back to local", "timezone", timezone)
		}
	}
	return t.In(loc).Format(scheduledTimeLayout)
}

// SchedulingService presents scheduled-post status and timing consistently
// despite heterogeneous backend vocabularies and optional per-post timezones.
type SchedulingService interface {
	ListScheduled(ctx context.Context, filter string) ([]*models.ScheduledTweet, bool, error)
	Retry(ctx context.Context, scheduleID string) error
	Cancel(ctx context.Context, scheduleID string) error
	PollStatus(ctx context.Context) (*models.SchedulerHeartbeat, error)
}

type schedulingService struct {
	api   *client.Client
	prefs repository.PreferenceRepository
}

func NewSchedulingService(api *client.Client, prefs repository.PreferenceRepository) SchedulingService {
	return &schedulingService{
		api:   api,
		prefs: prefs,
	}
}

// ListScheduled fetches the scheduled list for the normalized filter and
// remembers the filter per account. The second return value reports the
// backend's disconnected flag.
func (s *schedulingService) ListScheduled(ctx context.Context, filter string) ([]*models.ScheduledTweet, bool, error) {
	filter = NormalizeFilter(filter)

	var payload transfer.ScheduledListResponse
	endpoint := scheduledEndpoint + "?status=" + url.QueryEscape(filter)
	if err := s.api.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, false, err
	}

	// only remember filters that produced a list; a failed fetch must not
	// clobber the last working preference
	if accountID := s.api.CurrentAccountID(); accountID != "" {
		if err := s.prefs.SaveFilter(ctx, accountID, filter); err != nil {
			slog.Info(err.Error())
		}
	}

	tweets := make([]*models.ScheduledTweet, 0, len(payload.ScheduledTweets))
	for _, dto := range payload.ScheduledTweets {
		tweets = append(tweets, &models.ScheduledTweet{
			ID:           dto.ID,
			Content:      dto.Content,
			ScheduledFor: dto.ScheduledFor,
			Timezone:     dto.Timezone,
			Status:       NormalizeStatus(dto.Status),
			ErrorMessage: dto.ErrorMessage,
			PostedAt:     dto.PostedAt,
			MediaCount:   dto.MediaCount,
		})
	}

	return tweets, payload.Disconnected, nil
}

// Retry re-queues a failed schedule. Callers remove the row optimistically
// and refresh the full list afterwards to reconcile against backend truth.
func (s *schedulingService) Retry(ctx context.Context, scheduleID string) error {
	resp, err := s.api.PostFor(ctx, scheduleRetryEndpoint, map[string]any{"schedule_id": scheduleID})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("retry returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *schedulingService) Cancel(ctx context.Context, scheduleID string) error {
	resp, err := s.api.Delete(ctx, scheduleEndpointPrefix+url.PathEscape(scheduleID))
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("cancel returned status %d", resp.StatusCode)
	}
	return nil
}

// PollStatus fetches the scheduler heartbeat for the informational banner.
// It never gates user actions.
func (s *schedulingService) PollStatus(ctx context.Context) (*models.SchedulerHeartbeat, error) {
	resp, err := s.api.Get(ctx, schedulerStatusEndpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scheduler status returned status %d", resp.StatusCode)
	}

	var payload transfer.SchedulerStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("decode scheduler status: %w", err)
	}

	return payload.Heartbeat(), nil
}
