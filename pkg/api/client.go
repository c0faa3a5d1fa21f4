// Package api is the typed HTTP client for the work-near-me REST API. It
// attaches the bearer token to every authenticated call, recovers from access
// token expiry with a single-flight refresh followed by exactly one replay,
// and escalates to session teardown only when the refresh itself fails.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/work-near-me/client/internal/store"
)

const defaultTimeout = 15 * time.Second

// Client wraps *http.Client for the work-near-me API.
type Client struct {
	baseURL string
	http    *http.Client
	store   store.Store
	coord   *Coordinator
	log     zerolog.Logger

	mu        sync.Mutex
	onExpired func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New builds a Client. baseURL is the API root, e.g.
// "http://localhost:8080/api".
func New(baseURL string, st store.Store, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		store:   st,
		log:     log.With().Str("component", "api").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.coord = NewCoordinator(baseURL, c.http, st, log)
	return c
}

// OnSessionExpired registers the teardown hook fired when the session becomes
// terminally invalid. The store is already cleared when the hook runs.
func (c *Client) OnSessionExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = fn
}

func (c *Client) fireExpired() {
	c.mu.Lock()
	fn := c.onExpired
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// do issues an authenticated request. The body is serialized once so the
// request can be replayed after a refresh. Exactly one replay is allowed; a
// 401 on the replay is terminal.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	token := c.currentToken(ctx)

	status, respBody, err := c.send(ctx, method, path, query, payload, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		newToken, refreshErr := c.coord.EnsureFresh(ctx, token)
		if refreshErr != nil {
			c.fireExpired()
			return refreshErr
		}

		status, respBody, err = c.send(ctx, method, path, query, payload, newToken)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			// Replayed once already; do not loop.
			if clearErr := c.store.Clear(ctx); clearErr != nil {
				c.log.Error().Err(clearErr).Msg("failed to clear session")
			}
			c.fireExpired()
			return fmt.Errorf("%w: request rejected after refresh", ErrSessionExpired)
		}
	}

	return decodeResponse(status, respBody, out)
}

// doPublic issues an unauthenticated request (login, register). No bearer
// header, no refresh, no replay.
func (c *Client) doPublic(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	status, respBody, err := c.send(ctx, method, path, nil, payload, "")
	if err != nil {
		return err
	}
	return decodeResponse(status, respBody, out)
}

// send performs one HTTP round trip. Transport failures come back wrapped;
// HTTP-level failures are returned as (status, body, nil) for the caller to
// interpret.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, token string) (int, []byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) currentToken(ctx context.Context) string {
	sess, err := c.store.Load(ctx)
	if err != nil || sess == nil {
		return ""
	}
	return sess.AccessToken
}

func decodeResponse(status int, body []byte, out interface{}) error {
	if status < 200 || status > 299 {
		return decodeAPIError(status, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
