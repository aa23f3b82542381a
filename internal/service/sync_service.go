package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/featherpost/dashboard-core/internal/client"
	"github.com/featherpost/dashboard-core/internal/models"
	"github.com/featherpost/dashboard-core/internal/transfer"
)

const (
	syncEndpoint       = "/api/analytics/sync"
	syncStatusEndpoint = "/api/analytics/sync-status"
)

// Gate refusals. Callers map these to the same user-facing strings a server
// rejection would produce; the backend remains the authoritative gate.
var (
	ErrSyncInProgress    = errors.New("sync already in progress")
	ErrCooldownActive    = errors.New("sync cooldown active")
	ErrRateLimited       = errors.New("platform rate limit reached")
	ErrReconnectRequired = errors.New("account reconnect required")
)

// Phase is the coordinator's transient per-view state. It is never persisted.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRequesting
	PhaseDisconnected
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRequesting:
		return "requesting"
	case PhaseDisconnected:
		return "disconnected"
	}
	return "unknown"
}

const (
	msgSyncRunning = "A sync is already running for this account."
	msgCooldown    = "Sync is cooling down. Try again shortly."
	msgRateLimit   = "Twitter rate limit reached. Sync will resume after the limit resets."
	msgReconnect   = "Twitter connection expired. Reconnect your account to resume syncing."
	msgSlow        = "Sync is taking longer than expected."
	msgGeneric     = "Sync failed. Please try again."
)

// SyncService drives the pull-latest-metrics job against the backend and
// exposes a safe control surface (phase, status, summary, messages) to the UI.
type SyncService interface {
	TriggerSync(ctx context.Context) (*models.SyncSummary, error)
	RefreshStatus(ctx context.Context) error

	Phase() Phase
	Status() *models.SyncStatus
	Summary() *models.SyncSummary
	Message() string
	Disconnected() bool
	RateLimitReset() *time.Time
	RemainingCooldown(now time.Time) time.Duration
	WasUpdated(tweetID string) bool
	WasSkipped(tweetID string) bool
}

type syncService struct {
	api         *client.Client
	syncTimeout time.Duration
	now         func() time.Time

	mu             sync.Mutex
	phase          Phase
	status         *models.SyncStatus
	summary        *models.SyncSummary
	message        string
	rateLimitReset *time.Time
	updatedIDs     map[string]struct{}
	skippedIDs     map[string]struct{}
}

func NewSyncService(api *client.Client, syncTimeout time.Duration) SyncService {
	return &syncService{
		api:         api,
		syncTimeout: syncTimeout,
		now:         time.Now,
		phase:       PhaseIdle,
		updatedIDs:  map[string]struct{}{},
		skippedIDs:  map[string]struct{}{},
	}
}

// TriggerSync runs one sync attempt. The pre-flight gate refuses locally when
// local state already rules the attempt out (stale-tolerant: the backend
// still rejects early triggers on its own). Whatever the outcome, the status
// is re-fetched afterwards so displayed cooldown and in-progress indicators
// reflect backend truth.
func (s *syncService) TriggerSync(ctx context.Context) (*models.SyncSummary, error) {
	if err := s.gate(); err != nil {
		return nil, err
	}

	// the context must outlive the body read, not just the round trip
	reqCtx, cancel := context.WithTimeout(ctx, s.syncTimeout)
	resp, err := s.api.PostFor(reqCtx, syncEndpoint, nil)
	summary, triggerErr := s.handleResponse(resp, err)
	cancel()

	if err := s.RefreshStatus(ctx); err != nil {
		slog.Info("sync status refresh failed", "error", err)
	}

	return summary, triggerErr
}

func (s *syncService) gate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.phase == PhaseDisconnected:
		s.message = msgReconnect
		return ErrReconnectRequired
	case s.phase == PhaseRequesting:
		s.message = msgSyncRunning
		return ErrSyncInProgress
	case s.status != nil && s.status.InProgress:
		s.message = msgSyncRunning
		return ErrSyncInProgress
	case s.status.CooldownActive(s.now()):
		s.message = msgCooldown
		return ErrCooldownActive
	}

	s.phase = PhaseRequesting
	s.message = ""
	return nil
}

func (s *syncService) handleResponse(resp *http.Response, reqErr error) (*models.SyncSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseIdle

	if reqErr != nil {
		if errors.Is(reqErr, context.DeadlineExceeded) {
			s.message = msgSlow
		} else {
			s.message = msgGeneric
		}
		slog.Info("sync request failed", "error", reqErr)
		return nil, reqErr
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return s.applySuccess(resp)
	}

	var payload transfer.SyncErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.Info(err.Error())
	}

	if payload.Code == transfer.CodeReconnectRequired {
		s.phase = PhaseDisconnected
		s.message = msgReconnect
		return nil, ErrReconnectRequired
	}

	switch {
	case resp.StatusCode == http.StatusConflict && payload.Type == transfer.ErrTypeSyncInProgress:
		if payload.SyncStatus != nil {
			s.status = payload.SyncStatus
		}
		if s.status == nil {
			s.status = &models.SyncStatus{LastResult: models.SyncResultUnknown}
		}
		s.status.InProgress = true
		s.message = msgSyncRunning
		return nil, ErrSyncInProgress

	case resp.StatusCode == http.StatusTooManyRequests && payload.Type == transfer.ErrTypeSyncCooldown:
		if payload.SyncStatus != nil {
			s.status = payload.SyncStatus
		} else if payload.WaitMinutes > 0 {
			next := s.now().Add(time.Duration(payload.WaitMinutes) * time.Minute)
			s.status = &models.SyncStatus{LastResult: models.SyncResultUnknown, NextAllowedAt: &next}
		}
		s.message = msgCooldown
		return nil, ErrCooldownActive

	case resp.StatusCode == http.StatusTooManyRequests && payload.Type == transfer.ErrTypeRateLimit:
		s.rateLimitReset = payload.ResetTime
		if payload.SyncStatus != nil {
			s.status = payload.SyncStatus
		}
		s.message = msgRateLimit
		return nil, ErrRateLimited

	default:
		s.message = msgGeneric
		return nil, fmt.Errorf("sync returned status %d", resp.StatusCode)
	}
}

// applySuccess records the run outcome. The summary and the id sets are
// replaced wholesale; two runs never merge.
func (s *syncService) applySuccess(resp *http.Response) (*models.SyncSummary, error) {
	var payload transfer.SyncTriggerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.Info(err.Error())
		s.message = msgGeneric
		return nil, fmt.Errorf("decode sync response: %w", err)
	}

	s.summary = payload.Summary()
	if payload.SyncStatus != nil {
		s.status = payload.SyncStatus
	}

	s.updatedIDs = idSet(payload.UpdatedTweetIDs)
	s.skippedIDs = idSet(payload.SkippedTweetIDs)

	if payload.RateLimited {
		s.rateLimitReset = payload.ResetTime
		s.message = msgRateLimit
	} else {
		s.rateLimitReset = nil
		s.message = ""
	}

	return s.summary, nil
}

// RefreshStatus re-fetches the backend's sync status. A disconnected payload
// locks the coordinator; a connected one releases a previous lockout.
func (s *syncService) RefreshStatus(ctx context.Context) error {
	var payload transfer.SyncStatusResponse
	if err := s.api.GetJSON(ctx, syncStatusEndpoint, &payload); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if payload.SyncStatus != nil {
		s.status = payload.SyncStatus
	}
	if payload.Disconnected {
		s.phase = PhaseDisconnected
		s.message = msgReconnect
	} else if s.phase == PhaseDisconnected {
		s.phase = PhaseIdle
		s.message = ""
	}
	return nil
}

func (s *syncService) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *syncService) Status() *models.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == nil {
		return nil
	}
	status := *s.status
	return &status
}

func (s *syncService) Summary() *models.SyncSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

func (s *syncService) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *syncService) Disconnected() bool {
	return s.Phase() == PhaseDisconnected
}

func (s *syncService) RateLimitReset() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rateLimitReset
}

// RemainingCooldown returns how long until a trigger is allowed again, zero
// when no cooldown is active.
func (s *syncService) RemainingCooldown(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.status.CooldownActive(now) {
		return 0
	}
	return s.status.NextAllowedAt.Sub(now)
}

func (s *syncService) WasUpdated(tweetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.updatedIDs[tweetID]
	return ok
}

func (s *syncService) WasSkipped(tweetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.skippedIDs[tweetID]
	return ok
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
