package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/work-near-me/client/internal/store"
)

// Coordinator serializes token refresh. However many requests fail with 401
// in the same instant, exactly one POST /auth/refresh goes out; everyone else
// attaches to that in-flight call and shares its outcome. On success the
// store holds the rotated pair; on any failure the store is cleared and every
// waiter gets ErrSessionExpired.
type Coordinator struct {
	baseURL string
	http    *http.Client
	store   store.Store
	group   singleflight.Group
	log     zerolog.Logger
}

func NewCoordinator(baseURL string, httpClient *http.Client, st store.Store, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		baseURL: baseURL,
		http:    httpClient,
		store:   st,
		log:     log.With().Str("component", "refresh").Logger(),
	}
}

// EnsureFresh returns an access token that is newer than staleToken.
//
// Fast path: if the stored token already differs from the one that just got
// rejected, another caller finished a refresh in the meantime and the rotated
// token is handed back without any network traffic. Otherwise the caller
// joins the single-flight refresh.
func (c *Coordinator) EnsureFresh(ctx context.Context, staleToken string) (string, error) {
	if staleToken != "" {
		sess, err := c.store.Load(ctx)
		if err == nil && sess.Valid() && sess.AccessToken != staleToken {
			return sess.AccessToken, nil
		}
	}

	v, err, shared := c.group.Do("refresh", func() (interface{}, error) {
		return c.refresh(ctx, staleToken)
	})
	if err != nil {
		return "", err
	}
	if shared {
		c.log.Debug().Msg("joined in-flight refresh")
	}
	return v.(string), nil
}

// refresh performs the actual token rotation. Any failure is terminal and
// clears the store.
func (c *Coordinator) refresh(ctx context.Context, staleToken string) (string, error) {
	sess, err := c.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	// Re-check under the single-flight lock: a refresh that finished between
	// the caller's fast-path check and entering here already rotated the pair.
	if staleToken != "" && sess.Valid() && sess.AccessToken != staleToken {
		return sess.AccessToken, nil
	}
	if !sess.Valid() {
		return "", c.expire(ctx, fmt.Errorf("%w: no refresh token", ErrSessionExpired))
	}

	payload, err := json.Marshal(map[string]string{"refresh_token": sess.RefreshToken})
	if err != nil {
		return "", fmt.Errorf("encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.expire(ctx, fmt.Errorf("%w: refresh call failed: %v", ErrSessionExpired, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.expire(ctx, fmt.Errorf("%w: read refresh response: %v", ErrSessionExpired, err))
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := decodeAPIError(resp.StatusCode, body)
		return "", c.expire(ctx, fmt.Errorf("%w: %s", ErrSessionExpired, apiErr.Message))
	}

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &tokens); err != nil {
		return "", c.expire(ctx, fmt.Errorf("%w: decode refresh response: %v", ErrSessionExpired, err))
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return "", c.expire(ctx, fmt.Errorf("%w: server returned partial token pair", ErrSessionExpired))
	}

	if err := c.store.UpdateTokens(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		// The server already rotated the pair, so the stored one is dead
		// either way; a session we cannot persist is torn down like any
		// other refresh failure.
		return "", c.expire(ctx, fmt.Errorf("%w: store rotated tokens: %v", ErrSessionExpired, err))
	}

	c.log.Debug().Msg("access token rotated")
	return tokens.AccessToken, nil
}

// expire clears the whole stored session and returns err unchanged.
func (c *Coordinator) expire(ctx context.Context, err error) error {
	if clearErr := c.store.Clear(ctx); clearErr != nil {
		c.log.Error().Err(clearErr).Msg("failed to clear session after refresh failure")
	}
	c.log.Warn().Err(err).Msg("refresh failed, session cleared")
	return err
}
