package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	config "github.com/featherpost/dashboard-core/configs"
	"github.com/featherpost/dashboard-core/internal/client"
	"github.com/featherpost/dashboard-core/internal/models"
	"github.com/featherpost/dashboard-core/internal/repository"
	"github.com/featherpost/dashboard-core/internal/transfer"
)

const (
	profileEndpoint      = "/api/user/info"
	teamAccountsEndpoint = "/api/team/accounts"
)

// ErrNotInitialized is returned when accounts are requested before the team
// status has been resolved.
var ErrNotInitialized = errors.New("team status not resolved")

// ResolverService is the single source of truth for "who am I acting as".
type ResolverService interface {
	Initialize(ctx context.Context) error
	LoadAccounts(ctx context.Context) error
	SelectAccount(ctx context.Context, account *models.Account) error
	RefreshTeamStatus(ctx context.Context) error

	TeamStatus() models.TeamStatus
	Accounts() []*models.Account
	CurrentAccount() *models.Account
	CurrentAccountID() string
}

type resolverService struct {
	cfg  config.Config
	base *client.Client
	sr   repository.SelectionRepository
	ts   repository.TeamStatusRepository

	session string

	mu       sync.Mutex
	status   models.TeamStatus
	accounts []*models.Account
	selected *models.Account
}

func NewResolverService(
	cfg config.Config,
	sessionToken string,
	sr repository.SelectionRepository,
	ts repository.TeamStatusRepository) ResolverService {
	return &resolverService{
		cfg:     cfg,
		base:    client.New(cfg, sessionToken, client.NoAccount{}),
		sr:      sr,
		ts:      ts,
		session: sessionToken,
		status:  models.TeamStatusUnknown,
	}
}

// Initialize resolves the team status, from the session cache when present,
// otherwise by fetching the user profile. The fetch is bounded; errors and
// timeouts resolve to individual mode rather than blocking.
func (s *resolverService) Initialize(ctx context.Context) error {
	cached, _ := s.ts.Get(ctx, s.session)
	if cached != models.TeamStatusUnknown {
		s.setStatus(cached)
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.ProfileTimeout)
	defer cancel()

	var profile transfer.ProfileResponse
	status := models.TeamStatusIndividual
	if err := s.base.GetJSON(fetchCtx, profileEndpoint, &profile); err != nil {
		// fall back for this session only; caching the guess would hide
		// a team user's accounts until the cache entry expires
		slog.Info("profile fetch failed, defaulting to individual mode", "error", err)
		s.setStatus(status)
		return nil
	}
	if profile.InTeam() {
		status = models.TeamStatusInTeam
	}

	if err := s.ts.Save(ctx, s.session, status); err != nil {
		slog.Info(err.Error())
	}
	s.setStatus(status)
	return nil
}

// LoadAccounts fetches the team account list (empty in individual mode) and
// restores the persisted selection against it. Network failure yields an
// empty list, not an error, so the caller can fall back to the individual
// experience.
func (s *resolverService) LoadAccounts(ctx context.Context) error {
	if s.TeamStatus() == models.TeamStatusUnknown {
		return ErrNotInitialized
	}

	accounts := []*models.Account{}
	if s.TeamStatus() == models.TeamStatusInTeam {
		accounts = s.fetchTeamAccounts(ctx)
	}

	s.mu.Lock()
	s.accounts = accounts
	s.mu.Unlock()

	return s.restoreSelection(ctx, accounts)
}

func (s *resolverService) fetchTeamAccounts(ctx context.Context) []*models.Account {
	resp, err := s.base.Get(ctx, teamAccountsEndpoint)
	if err != nil {
		slog.Info("account list fetch failed", "error", err)
		return []*models.Account{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("account list fetch returned non-200 status", "status", resp.StatusCode)
		return []*models.Account{}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return []*models.Account{}
	}

	accounts, err := transfer.DecodeAccountList(body)
	if err != nil {
		return []*models.Account{}
	}
	return accounts
}

// restoreSelection applies the restoration rules: a persisted id present in
// the fetched list wins, otherwise the first fetched account, otherwise no
// selection (and the stale persisted projection is cleared).
func (s *resolverService) restoreSelection(ctx context.Context, accounts []*models.Account) error {
	persisted, err := s.sr.Get(ctx)
	if err != nil {
		slog.Info(err.Error())
	}

	if persisted != nil {
		for _, acc := range accounts {
			if acc.ID == persisted.ID {
				return s.SelectAccount(ctx, acc)
			}
		}
	}

	if len(accounts) > 0 {
		return s.SelectAccount(ctx, accounts[0])
	}

	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
	return s.sr.Clear(ctx)
}

// SelectAccount sets the selection and persists its projection. Selecting the
// already-selected account is a no-op beyond re-persisting.
func (s *resolverService) SelectAccount(ctx context.Context, account *models.Account) error {
	if account == nil {
		s.mu.Lock()
		s.selected = nil
		s.mu.Unlock()
		return s.sr.Clear(ctx)
	}

	s.mu.Lock()
	s.selected = account
	s.mu.Unlock()

	return s.sr.Save(ctx, models.ProjectAccount(account))
}

// RefreshTeamStatus invalidates the cached status so the next Initialize
// re-derives it. Used after an account connection completes, since team
// membership may have changed out-of-band.
func (s *resolverService) RefreshTeamStatus(ctx context.Context) error {
	s.setStatus(models.TeamStatusUnknown)
	return s.ts.Invalidate(ctx, s.session)
}

func (s *resolverService) setStatus(status models.TeamStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

func (s *resolverService) TeamStatus() models.TeamStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *resolverService) Accounts() []*models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

func (s *resolverService) CurrentAccount() *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

func (s *resolverService) CurrentAccountID() string {
	if acc := s.CurrentAccount(); acc != nil {
		return acc.ID
	}
	return ""
}
