package store

import (
	"context"
	"sync"

	"github.com/work-near-me/client/internal/domain"
)

// Memory keeps the session in process memory. It is the default for tests
// and for one-shot commands that should not leave credentials on disk.
type Memory struct {
	mu   sync.RWMutex
	sess *domain.Session
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return nil, nil
	}
	cp := *m.sess
	return &cp, nil
}

func (m *Memory) Save(ctx context.Context, sess *domain.Session) error {
	if !sess.Valid() {
		return ErrIncompleteSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sess
	m.sess = &cp
	return nil
}

func (m *Memory) UpdateTokens(ctx context.Context, accessToken, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return ErrNoSession
	}
	m.sess.AccessToken = accessToken
	m.sess.RefreshToken = refreshToken
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}
