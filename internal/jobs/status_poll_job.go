package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron"

	"github.com/featherpost/dashboard-core/internal/models"
	"github.com/featherpost/dashboard-core/internal/service"
)

// StatusPollJob periodically refreshes the sync status and the scheduler
// heartbeat so the UI reflects backend truth without user interaction.
type StatusPollJob struct {
	ss service.SyncService
	sc service.SchedulingService

	spec string
	c    *cron.Cron

	mu        sync.Mutex
	heartbeat *models.SchedulerHeartbeat
}

func NewStatusPollJob(ss service.SyncService, sc service.SchedulingService, spec string) *StatusPollJob {
	return &StatusPollJob{
		ss:   ss,
		sc:   sc,
		spec: spec,
	}
}

func (j *StatusPollJob) Start() error {
	c := cron.New()
	if err := c.AddFunc(j.spec, j.Poll); err != nil {
		return err
	}
	c.Start()
	j.c = c
	return nil
}

func (j *StatusPollJob) Stop() {
	if j.c != nil {
		j.c.Stop()
	}
}

// Poll runs one refresh pass. Skipped while a sync request is in flight; the
// coordinator re-fetches status itself when the request settles.
func (j *StatusPollJob) Poll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if j.ss.Phase() != service.PhaseRequesting {
		if err := j.ss.RefreshStatus(ctx); err != nil {
			slog.Info("sync status poll failed", "error", err)
		}
	}

	hb, err := j.sc.PollStatus(ctx)
	if err != nil {
		slog.Info("scheduler heartbeat poll failed", "error", err)
		return
	}

	j.mu.Lock()
	j.heartbeat = hb
	j.mu.Unlock()
}

// Heartbeat returns a copy of the last observed scheduler heartbeat, nil
// before the first successful poll.
func (j *StatusPollJob) Heartbeat() *models.SchedulerHeartbeat {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.heartbeat == nil {
		return nil
	}
	hb := *j.heartbeat
	return &hb
}
