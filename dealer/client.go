// Package dealer talks to the external dealer service that owns the pot, the
// turn order and card custody. Every call is bounded by a per-attempt timeout
// and retried a limited number of times; callers get ErrUnavailable when the
// dealer cannot be reached.
package dealer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/wfunc/teenpatti-player/logger"
)

var ErrUnavailable = errors.New("dealer unavailable")

// statusError 非 2xx 响应
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("dealer responded %d: %s", e.code, e.body)
}

type Options struct {
	Timeout time.Duration
	Retries int
	Backoff time.Duration
	Clock   quartz.Clock
	HTTP    *http.Client
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	retries int
	backoff time.Duration
	clock   quartz.Clock
}

func NewClient(baseURL string, opts Options) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    opts.HTTP,
		timeout: opts.Timeout,
		retries: opts.Retries,
		backoff: opts.Backoff,
		clock:   opts.Clock,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.clock == nil {
		c.clock = quartz.NewReal()
	}
	if c.timeout <= 0 {
		c.timeout = 2 * time.Second
	}
	if c.retries < 0 {
		c.retries = 0
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks that the dealer answers {"message": "pong"}.
func (c *Client) Ping(ctx context.Context) error {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/ping", nil, &resp); err != nil {
		return err
	}
	if resp.Message != "pong" {
		return fmt.Errorf("%w: unexpected ping reply %q", ErrUnavailable, resp.Message)
	}
	return nil
}

func (c *Client) InitialBalance(ctx context.Context) (int64, error) {
	var resp struct {
		Balance float64 `json:"balance"`
	}
	if err := c.do(ctx, http.MethodGet, "/initial_balance", nil, &resp); err != nil {
		return 0, err
	}
	if resp.Balance < 0 {
		return 0, fmt.Errorf("%w: negative initial balance %v", ErrUnavailable, resp.Balance)
	}
	return int64(resp.Balance), nil
}

func (c *Client) ShowCards(ctx context.Context) ([]string, error) {
	var resp struct {
		Cards []string `json:"cards"`
	}
	if err := c.do(ctx, http.MethodGet, "/show_cards", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cards, nil
}

func (c *Client) ShowPot(ctx context.Context) (int64, error) {
	var resp struct {
		PotAmount float64 `json:"pot_amount"`
	}
	if err := c.do(ctx, http.MethodGet, "/show_pot", nil, &resp); err != nil {
		return 0, err
	}
	return int64(resp.PotAmount), nil
}

// Join tells the dealer that name is seated and reachable at hostURL.
func (c *Client) Join(ctx context.Context, name, hostURL string) error {
	body := map[string]string{
		"name":     name,
		"host_url": hostURL,
	}
	return c.do(ctx, http.MethodPost, "/join_game", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx); err != nil {
				break
			}
			logger.Log.Debugf("Retrying dealer %s %s (attempt %d): %v", method, path, attempt+1, lastErr)
		}

		lastErr = c.attempt(ctx, method, path, payload, out)
		if lastErr == nil {
			return nil
		}

		var se *statusError
		if errors.As(lastErr, &se) && se.code < http.StatusInternalServerError {
			break
		}
	}

	logger.Log.Warnf("Dealer %s %s failed: %v", method, path, lastErr)
	return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, lastErr)
}

func (c *Client) wait(ctx context.Context) error {
	if c.backoff <= 0 {
		return ctx.Err()
	}
	timer := c.clock.NewTimer(c.backoff, "dealer", "backoff")
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(data))}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
