package timeflip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/eliasvk/tracksync/internal/apperr"
	"github.com/eliasvk/tracksync/internal/models"
)

// DefaultBaseURL is the production TimeFlip API endpoint.
const DefaultBaseURL = "https://newapi.timeflip.io"

// TokenStore holds the persisted session credential. The client re-reads
// the token on every authenticated request instead of caching it, and the
// sign-in path is the only writer.
type TokenStore interface {
	Token() string
	SetToken(token string) error
}

// Client talks to the TimeFlip API.
type Client struct {
	baseURL    string
	tokens     TokenStore
	httpClient *http.Client
}

// NewClient creates a client against baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string, tokens TokenStore) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: &http.Client{},
	}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn exchanges credentials for a session token and persists it.
// On any failure the previously stored token is left untouched.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	body, err := json.Marshal(signInRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("timeflip: marshal sign-in: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/email/sign-in", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("timeflip: build sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("timeflip: sign-in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("timeflip: sign-in: %w: status %d", apperr.ErrUnauthorized, resp.StatusCode)
	}
	token := resp.Header.Get("token")
	if token == "" {
		return fmt.Errorf("timeflip: sign-in: %w: response missing token header", apperr.ErrUnauthorized)
	}
	if err := c.tokens.SetToken(token); err != nil {
		return fmt.Errorf("timeflip: persist token: %w", err)
	}
	return nil
}

type dailyReportRequest struct {
	BeginDateStr string `json:"beginDateStr,omitempty"`
	EndDateStr   string `json:"endDateStr,omitempty"`
}

// DailyReports fetches the daily report for the inclusive date range and
// returns it normalized. Empty bounds request the full available history.
// A stale or missing token surfaces as an auth error; there is no refresh
// protocol, so the client never retries with re-auth.
func (c *Client) DailyReports(ctx context.Context, beginDateStr, endDateStr string) (map[string]models.DailyReport, error) {
	token := c.tokens.Token()
	if token == "" {
		return nil, fmt.Errorf("timeflip: daily report: %w", apperr.ErrNoToken)
	}

	body, err := json.Marshal(dailyReportRequest{BeginDateStr: beginDateStr, EndDateStr: endDateStr})
	if err != nil {
		return nil, fmt.Errorf("timeflip: marshal report request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/report/daily", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("timeflip: build report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timeflip: daily report: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("timeflip: daily report: %w: status %d", apperr.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("timeflip: daily report: unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("timeflip: read report body: %w", err)
	}
	return Normalize(raw)
}
