package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	config "github.com/featherpost/dashboard-core/configs"
	"github.com/featherpost/dashboard-core/internal/client"
	"github.com/featherpost/dashboard-core/internal/models"
)

type memPrefsRepo struct {
	filters map[string]string
}

func (m *memPrefsRepo) GetFilter(ctx context.Context, accountID string) (string, error) {
	return m.filters[accountID], nil
}

func (m *memPrefsRepo) SaveFilter(ctx context.Context, accountID, filter string) error {
	if m.filters == nil {
		m.filters = map[string]string{}
	}
	m.filters[accountID] = filter
	return nil
}

func newTestScheduling(t *testing.T, handler http.Handler) (SchedulingService, *memPrefsRepo) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Config{
		APIBaseURL:        srv.URL,
		SessionCookieName: "fp_session",
		AccountHeader:     "X-Account-ID",
		TeamHeader:        "X-Team-ID",
	}
	prefs := &memPrefsRepo{}
	api := client.New(cfg, "tok", accSource{acc: &models.Account{ID: "a1"}})
	return NewSchedulingService(api, prefs), prefs
}

func TestNormalizeStatus_ClosedSet(t *testing.T) {
	tests := []struct {
		raw  string
		want models.ScheduleStatus
	}{
		{"pending", models.ScheduleStatusPending},
		{"processing", models.ScheduleStatusProcessing},
		{"completed", models.ScheduleStatusPosted},
		{"posted", models.ScheduleStatusPosted},
		{"partially_completed", models.ScheduleStatusPostedPartial},
		{"failed", models.ScheduleStatusFailed},
		{"cancelled", models.ScheduleStatusCancelled},
		{"canceled", models.ScheduleStatusCancelled},
		{"someday_maybe", models.ScheduleStatusPending},
		{"", models.ScheduleStatusPending},
	}

	for _, tt := range tests {
		t.Run("raw_"+tt.raw, func(t *testing.T) {
			if got := NormalizeStatus(tt.raw); got != tt.want {
				t.Errorf("NormalizeStatus(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeStatus_Idempotent(t *testing.T) {
	inputs := []string{"pending", "completed", "canceled", "partially_completed", "bogus", ""}
	for _, raw := range inputs {
		once := NormalizeStatus(raw)
		twice := NormalizeStatus(string(once))
		if once != twice {
			t.Errorf("NormalizeStatus not idempotent for %q: %s then %s", raw, once, twice)
		}
	}
}

func TestNormalizeFilter_LegacyAliases(t *testing.T) {
	if got := NormalizeFilter("completed"); got != "posted" {
		t.Errorf("completed should map to posted, got %q", got)
	}
	if got := NormalizeFilter("canceled"); got != "cancelled" {
		t.Errorf("canceled should map to cancelled, got %q", got)
	}
	if got := NormalizeFilter("whatever"); got != "pending" {
		t.Errorf("unknown filter should default to pending, got %q", got)
	}
}

func TestFormatScheduledTime_ValidZone(t *testing.T) {
	instant := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got := FormatScheduledTime(instant, "Asia/Tokyo")
	want := "Jun 1, 2025 9:00 PM JST"
	if got != want {
		t.Errorf("FormatScheduledTime = %q, want %q", got, want)
	}
}

func TestFormatScheduledTime_LegacyAlias(t *testing.T) {
	instant := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got := FormatScheduledTime(instant, "Asia/Calcutta")
	want := "Jun 1, 2025 5:30 PM IST"
	if got != want {
		t.Errorf("FormatScheduledTime = %q, want %q", got, want)
	}
}

func TestFormatScheduledTime_InvalidZoneFallsBackToLocal(t *testing.T) {
	instant := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got := FormatScheduledTime(instant, "Not/AZone")
	want := instant.In(time.Local).Format("Jan 2, 2006 3:04 PM MST")
	if got != want {
		t.Errorf("FormatScheduledTime = %q, want local %q", got, want)
	}
}

func TestListScheduled_NormalizesAndPersistsFilter(t *testing.T) {
	var gotFilter string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("status")
		w.Write([]byte(`{
			"scheduled_tweets": [
				{"id":"s1","content":"hi","status":"completed","media_count":2},
				{"id":"s2","content":"later","status":"shiny_new_state"}
			],
			"disconnected": false
		}`))
	})

	s, prefs := newTestScheduling(t, handler)

	tweets, disconnected, err := s.ListScheduled(context.Background(), "completed")
	if err != nil {
		t.Fatalf("ListScheduled err=%v", err)
	}
	if disconnected {
		t.Error("unexpected disconnected flag")
	}
	if gotFilter != "posted" {
		t.Errorf("filter sent to backend = %q, want posted", gotFilter)
	}
	if prefs.filters["a1"] != "posted" {
		t.Errorf("filter preference = %q, want posted", prefs.filters["a1"])
	}

	if len(tweets) != 2 {
		t.Fatalf("expected 2 tweets, got %d", len(tweets))
	}
	if tweets[0].Status != models.ScheduleStatusPosted {
		t.Errorf("legacy completed should display as posted, got %s", tweets[0].Status)
	}
	if tweets[1].Status != models.ScheduleStatusPending {
		t.Errorf("unknown raw status should default to pending, got %s", tweets[1].Status)
	}
	if tweets[0].MediaCount != 2 {
		t.Errorf("media count lost in mapping, got %d", tweets[0].MediaCount)
	}
}

func TestListScheduled_FailedFetchKeepsStoredFilter(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	s, prefs := newTestScheduling(t, handler)
	prefs.SaveFilter(context.Background(), "a1", "failed")

	if _, _, err := s.ListScheduled(context.Background(), "pending"); err == nil {
		t.Fatal("expected an error from the failing backend")
	}
	if prefs.filters["a1"] != "failed" {
		t.Errorf("failed fetch must not overwrite the stored filter, got %q", prefs.filters["a1"])
	}
}

func TestListScheduled_DisconnectedFlag(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"scheduled_tweets":[],"disconnected":true}`))
	})

	s, _ := newTestScheduling(t, handler)

	_, disconnected, err := s.ListScheduled(context.Background(), "pending")
	if err != nil {
		t.Fatalf("ListScheduled err=%v", err)
	}
	if !disconnected {
		t.Error("expected disconnected flag to pass through")
	}
}

func TestRetryAndCancel_StatusHandling(t *testing.T) {
	var retried string
	var cancelledPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == scheduleRetryEndpoint:
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			retried, _ = body["schedule_id"].(string)
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodDelete:
			cancelledPath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	s, _ := newTestScheduling(t, handler)

	if err := s.Retry(context.Background(), "s1"); err != nil {
		t.Fatalf("Retry err=%v", err)
	}
	if retried != "s1" {
		t.Errorf("retry payload schedule_id = %q, want s1", retried)
	}

	if err := s.Cancel(context.Background(), "s2"); err != nil {
		t.Fatalf("Cancel err=%v", err)
	}
	if cancelledPath != scheduleEndpointPrefix+"s2" {
		t.Errorf("cancel path = %q", cancelledPath)
	}
}

func TestRetry_BackendFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	s, _ := newTestScheduling(t, handler)

	if err := s.Retry(context.Background(), "s1"); err == nil {
		t.Error("expected error for failing retry")
	}
}

func TestPollStatus_DecodesHeartbeat(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != schedulerStatusEndpoint {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{
			"scheduler": {"started": true, "lastTick": {"status": "ok"}, "nextRunInMs": 45000},
			"userQueue": {"dueNowCount": 3}
		}`))
	})

	s, _ := newTestScheduling(t, handler)

	hb, err := s.PollStatus(context.Background())
	if err != nil {
		t.Fatalf("PollStatus err=%v", err)
	}
	if !hb.Started || hb.LastTickStatus != "ok" || hb.DueNowCount != 3 || hb.NextRunIn != 45000 {
		t.Errorf("unexpected heartbeat: %+v", hb)
	}
}
