package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/work-near-me/client/internal/domain"
	"github.com/work-near-me/client/internal/session"
	"github.com/work-near-me/client/internal/store"
	"github.com/work-near-me/client/pkg/api"
)

func authBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Phone    string `json:"phone"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&creds)
		w.Header().Set("Content-Type", "application/json")
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid phone or password"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"user":          map[string]interface{}{"id": uuid.New(), "phone": creds.Phone, "role": "worker"},
		})
	})
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var input struct {
			Role string `json:"role"`
		}
		json.NewDecoder(r.Body).Decode(&input)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"user":          map[string]interface{}{"id": uuid.New(), "role": input.Role},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newService(t *testing.T) (*session.Service, store.Store) {
	t.Helper()
	srv := authBackend(t)
	st := store.NewMemory()
	client := api.New(srv.URL, st, zerolog.Nop())
	return session.New(client, st, zerolog.Nop()), st
}

func TestLogin_StoresTripleAndPublishes(t *testing.T) {
	svc, st := newService(t)

	var published *domain.User
	unsub := svc.Subscribe(func(u *domain.User) { published = u })
	defer unsub()

	user, err := svc.Login(context.Background(), "0900000000", "secret")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, svc.IsAuthenticated())
	assert.True(t, svc.IsWorker())
	assert.False(t, svc.IsEmployer())
	require.NotNil(t, published)
	assert.Equal(t, user.ID, published.ID)

	sess, err := st.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "access-1", sess.AccessToken)
	assert.Equal(t, "refresh-1", sess.RefreshToken)
	require.NotNil(t, sess.User)
}

func TestLogin_FailureLeavesStateUntouched(t *testing.T) {
	svc, st := newService(t)
	_, err := svc.Login(context.Background(), "0900000000", "secret")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "0900000000", "wrong")
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid phone or password", apiErr.Message)

	// Previous session survives a failed login attempt.
	assert.True(t, svc.IsAuthenticated())
	sess, loadErr := st.Load(context.Background())
	require.NoError(t, loadErr)
	require.NotNil(t, sess)
	assert.Equal(t, "access-1", sess.AccessToken)
}

func TestRegister_RejectsInvalidRoleBeforeNetwork(t *testing.T) {
	st := store.NewMemory()
	// Unroutable base URL: if the role check leaks through, the test fails
	// with a transport error instead of ErrInvalidRole.
	client := api.New("http://127.0.0.1:0", st, zerolog.Nop())
	svc := session.New(client, st, zerolog.Nop())

	_, err := svc.Register(context.Background(), "Linh", "0900000000", "secret", "admin")
	assert.ErrorIs(t, err, session.ErrInvalidRole)
}

func TestRegister_ValidRole(t *testing.T) {
	svc, _ := newService(t)
	user, err := svc.Register(context.Background(), "Linh", "0900000000", "secret", domain.RoleEmployer)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployer, user.Role)
	assert.True(t, svc.IsEmployer())
}

func TestLogout_ClearsEverythingAndIsIdempotent(t *testing.T) {
	svc, st := newService(t)
	_, err := svc.Login(context.Background(), "0900000000", "secret")
	require.NoError(t, err)

	var notified bool
	unsub := svc.Subscribe(func(u *domain.User) { notified = u == nil })
	defer unsub()

	require.NoError(t, svc.Logout(context.Background()))
	assert.False(t, svc.IsAuthenticated())
	assert.True(t, notified)

	sess, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess)

	// Second logout is a no-op.
	require.NoError(t, svc.Logout(context.Background()))
}

func TestRestore_FromPersistedSession(t *testing.T) {
	srv := authBackend(t)
	st := store.NewMemory()
	require.NoError(t, st.Save(context.Background(), &domain.Session{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User:         &domain.User{ID: uuid.New(), Role: domain.RoleWorker},
	}))

	client := api.New(srv.URL, st, zerolog.Nop())
	svc := session.New(client, st, zerolog.Nop())

	require.NoError(t, svc.Restore(context.Background()))
	assert.True(t, svc.IsAuthenticated())
	assert.True(t, svc.IsWorker())
}

func TestRestore_EmptyStoreStaysUnauthenticated(t *testing.T) {
	svc, _ := newService(t)
	require.NoError(t, svc.Restore(context.Background()))
	assert.False(t, svc.IsAuthenticated())
}
