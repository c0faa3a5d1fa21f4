// Package store persists the client session triple: access token, refresh
// token, and the serialized user. Every write replaces the whole group;
// implementations never expose per-field updates, so a reader can observe
// either the previous session or the next one, nothing in between.
package store

import (
	"context"

	"github.com/work-near-me/client/internal/domain"
)

// Store is the durable holder for the session triple. Load returns
// (nil, nil) when no session is persisted. UpdateTokens rotates the token
// pair while keeping the stored user; it fails if no session exists. Clear
// removes everything and is a no-op when the store is already empty.
type Store interface {
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, sess *domain.Session) error
	UpdateTokens(ctx context.Context, accessToken, refreshToken string) error
	Clear(ctx context.Context) error
}
