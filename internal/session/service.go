// Package session owns the client's authenticated state. It is the single
// source of truth for "is a user logged in" and "what role do they have";
// nothing else reads the token store directly.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/work-near-me/client/internal/domain"
	"github.com/work-near-me/client/internal/store"
	"github.com/work-near-me/client/pkg/api"
)

// ErrInvalidRole rejects a registration before any network call is made.
var ErrInvalidRole = fmt.Errorf("role must be %q or %q", domain.RoleEmployer, domain.RoleWorker)

// Service composes the API client and the token store. It is an injected
// instance, not a package global; consumers observe state changes through
// Subscribe.
type Service struct {
	client *api.Client
	store  store.Store
	log    zerolog.Logger

	mu      sync.RWMutex
	user    *domain.User
	subs    map[int]func(*domain.User)
	nextSub int
}

func New(client *api.Client, st store.Store, log zerolog.Logger) *Service {
	s := &Service{
		client: client,
		store:  st,
		log:    log.With().Str("component", "session").Logger(),
		subs:   make(map[int]func(*domain.User)),
	}
	// Terminal refresh failure tears the session down; the store is already
	// cleared by then, so only the published state needs resetting.
	client.OnSessionExpired(func() {
		s.log.Warn().Msg("session expired, forcing logout")
		s.setUser(nil)
	})
	return s
}

// Restore loads a previously persisted session. A missing or partial session
// leaves the service unauthenticated without error.
func (s *Service) Restore(ctx context.Context) error {
	sess, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if sess.Valid() && sess.User != nil {
		s.setUser(sess.User)
	}
	return nil
}

// Login exchanges credentials for a session. On success the triple is stored
// atomically and the new user state is published. On failure nothing is
// mutated; the server's message comes back verbatim.
func (s *Service) Login(ctx context.Context, phone, password string) (*domain.User, error) {
	sess, err := s.client.Login(ctx, phone, password)
	if err != nil {
		return nil, err
	}
	return s.adopt(ctx, sess)
}

// Register creates an account and logs it in. The role is validated locally
// before any request goes out.
func (s *Service) Register(ctx context.Context, name, phone, password string, role domain.UserRole) (*domain.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	sess, err := s.client.Register(ctx, name, phone, password, role)
	if err != nil {
		return nil, err
	}
	return s.adopt(ctx, sess)
}

// Logout clears the stored session and the published user state. Idempotent.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.setUser(nil)
	return nil
}

// Current returns the logged-in user, or nil.
func (s *Service) Current() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Service) IsAuthenticated() bool {
	return s.Current() != nil
}

func (s *Service) IsEmployer() bool {
	u := s.Current()
	return u != nil && u.Role == domain.RoleEmployer
}

func (s *Service) IsWorker() bool {
	u := s.Current()
	return u != nil && u.Role == domain.RoleWorker
}

// Subscribe registers fn for user-state changes and returns an unsubscribe
// func. fn is called synchronously with the new state (nil on logout).
func (s *Service) Subscribe(fn func(*domain.User)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Service) adopt(ctx context.Context, sess *domain.Session) (*domain.User, error) {
	if !sess.Valid() || sess.User == nil {
		return nil, fmt.Errorf("server returned incomplete session")
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	s.setUser(sess.User)
	s.log.Info().Str("role", string(sess.User.Role)).Msg("signed in")
	return sess.User, nil
}

func (s *Service) setUser(u *domain.User) {
	s.mu.Lock()
	s.user = u
	fns := make([]func(*domain.User), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}
