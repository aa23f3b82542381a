package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/time/rate"

	config "github.com/featherpost/dashboard-core/configs"
	"github.com/featherpost/dashboard-core/internal/models"
)

const requestIDHeader = "X-Request-ID"

// AccountSource yields the currently selected account. A nil account is a
// valid, common state (individual users) and never an error.
type AccountSource interface {
	CurrentAccount() *models.Account
}

// NoAccount is an AccountSource that never resolves an account. Used for
// calls that must run before any selection exists.
type NoAccount struct{}

func (NoAccount) CurrentAccount() *models.Account { return nil }

// Client builds and issues backend requests scoped to the active
// account/team identity, so callers never deal with team vs individual mode.
type Client struct {
	cfg     config.Config
	http    *http.Client
	source  AccountSource
	session string
	limiter *rate.Limiter
}

func New(cfg config.Config, sessionToken string, source AccountSource) *Client {
	return &Client{
		cfg:     cfg,
		http:    newHTTPClient(),
		source:  source,
		session: sessionToken,
		// polite pacing of our own traffic; the backend enforces real limits
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
}

// CurrentAccountID returns the effective account id, or "" when no account
// is resolved.
func (c *Client) CurrentAccountID() string {
	if acc := c.source.CurrentAccount(); acc != nil {
		return acc.ID
	}
	return ""
}

// RequestFor builds a request carrying credentials and identity headers.
// Caller-supplied headers are merged first; identity headers are added only
// when absent, so callers can still override them.
func (c *Client) RequestFor(ctx context.Context, method, endpoint string, body io.Reader, hdr http.Header) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIBaseURL+endpoint, body)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	for key, values := range hdr {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: c.cfg.SessionCookieName, Value: c.session})
	}

	if acc := c.source.CurrentAccount(); acc != nil {
		if req.Header.Get(c.cfg.AccountHeader) == "" {
			req.Header.Set(c.cfg.AccountHeader, acc.ID)
		}
		if acc.TeamID != "" && req.Header.Get(c.cfg.TeamHeader) == "" {
			req.Header.Set(c.cfg.TeamHeader, acc.TeamID)
		}
	}

	if req.Header.Get(requestIDHeader) == "" {
		if id, err := gonanoid.New(); err == nil {
			req.Header.Set(requestIDHeader, id)
		}
	}

	return req, nil
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return c.http.Do(req)
}

// Get issues an identity-scoped GET and returns the raw response.
func (c *Client) Get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := c.RequestFor(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// GetJSON issues an identity-scoped GET and decodes a 2xx JSON body into v.
func (c *Client) GetJSON(ctx context.Context, endpoint string, v any) error {
	resp, err := c.Get(ctx, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// PostFor issues an identity-scoped POST. When an account id is resolved it
// is injected into the JSON body as account_id, for backends that read
// identity from the payload rather than headers. Without a resolved account
// the payload is sent unmodified.
func (c *Client) PostFor(ctx context.Context, endpoint string, payload map[string]any) (*http.Response, error) {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	if id := c.CurrentAccountID(); id != "" {
		if _, ok := body["account_id"]; !ok {
			body["account_id"] = id
		}
	}

	data, err := json.Marshal(body)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	req, err := c.RequestFor(ctx, http.MethodPost, endpoint, bytes.NewReader(data), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.Do(req)
}

// Delete issues an identity-scoped DELETE.
func (c *Client) Delete(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := c.RequestFor(ctx, http.MethodDelete, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}
