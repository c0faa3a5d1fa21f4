package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/work-near-me/client/internal/domain"
	"github.com/work-near-me/client/internal/store"
)

func testSession() *domain.Session {
	return &domain.Session{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User: &domain.User{
			ID:    uuid.New(),
			Name:  "Linh Tran",
			Phone: "0900000000",
			Role:  domain.RoleWorker,
		},
	}
}

// backends under test; redis and postgres need live servers and are covered
// by the same contract through their integration environments.
func backends(t *testing.T) map[string]store.Store {
	t.Helper()
	return map[string]store.Store{
		"memory": store.NewMemory(),
		"file":   store.NewFile(filepath.Join(t.TempDir(), "session.json")),
	}
}

func TestStore_LoadEmpty(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			sess, err := s.Load(context.Background())
			require.NoError(t, err)
			assert.Nil(t, sess)
		})
	}
}

func TestStore_SaveThenLoad(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := testSession()
			require.NoError(t, s.Save(ctx, want))

			got, err := s.Load(ctx)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, want.AccessToken, got.AccessToken)
			assert.Equal(t, want.RefreshToken, got.RefreshToken)
			require.NotNil(t, got.User)
			assert.Equal(t, want.User.ID, got.User.ID)
			assert.Equal(t, domain.RoleWorker, got.User.Role)
		})
	}
}

func TestStore_SaveRejectsPartialSession(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			err := s.Save(ctx, &domain.Session{AccessToken: "only-access"})
			assert.ErrorIs(t, err, store.ErrIncompleteSession)

			// Nothing must have been written.
			sess, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, sess)
		})
	}
}

func TestStore_UpdateTokensKeepsUser(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			orig := testSession()
			require.NoError(t, s.Save(ctx, orig))

			require.NoError(t, s.UpdateTokens(ctx, "access-2", "refresh-2"))

			got, err := s.Load(ctx)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "access-2", got.AccessToken)
			assert.Equal(t, "refresh-2", got.RefreshToken)
			require.NotNil(t, got.User)
			assert.Equal(t, orig.User.ID, got.User.ID)
		})
	}
}

func TestStore_UpdateTokensWithoutSession(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := s.UpdateTokens(context.Background(), "a", "r")
			assert.ErrorIs(t, err, store.ErrNoSession)
		})
	}
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, testSession()))
			require.NoError(t, s.Clear(ctx))

			sess, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, sess)

			// Clearing an empty store must not fail.
			require.NoError(t, s.Clear(ctx))
		})
	}
}

func TestFile_PermissionsAndAtomicReplace(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	s := store.NewFile(path)

	require.NoError(t, s.Save(ctx, testSession()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// No temp files may survive a completed write.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
