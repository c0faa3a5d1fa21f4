package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/work-near-me/client/internal/domain"
)

const sessionKey = "worknearme:session"

const (
	fieldAccessToken  = "access_token"
	fieldRefreshToken = "refresh_token"
	fieldUser         = "user"
)

// Redis keeps the session in a single hash so the triple is written with one
// HSET and dropped with one DEL. Save runs DEL+HSET in a transaction to avoid
// leftover fields from an earlier session.
type Redis struct {
	client *redis.Client
}

// NewRedis parses redisURL and verifies connectivity.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Redis{client: client}, nil
}

func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Load(ctx context.Context) (*domain.Session, error) {
	fields, err := r.client.HGetAll(ctx, sessionKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis HGETALL: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	sess := &domain.Session{
		AccessToken:  fields[fieldAccessToken],
		RefreshToken: fields[fieldRefreshToken],
	}
	if raw := fields[fieldUser]; raw != "" {
		var user domain.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return nil, fmt.Errorf("decode stored user: %w", err)
		}
		sess.User = &user
	}
	return sess, nil
}

func (r *Redis) Save(ctx context.Context, sess *domain.Session) error {
	if !sess.Valid() {
		return ErrIncompleteSession
	}

	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey)
	pipe.HSet(ctx, sessionKey,
		fieldAccessToken, sess.AccessToken,
		fieldRefreshToken, sess.RefreshToken,
		fieldUser, string(userJSON),
	)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

func (r *Redis) UpdateTokens(ctx context.Context, accessToken, refreshToken string) error {
	exists, err := r.client.Exists(ctx, sessionKey).Result()
	if err != nil {
		return fmt.Errorf("redis EXISTS: %w", err)
	}
	if exists == 0 {
		return ErrNoSession
	}

	// Single HSET: both fields land together.
	err = r.client.HSet(ctx, sessionKey,
		fieldAccessToken, accessToken,
		fieldRefreshToken, refreshToken,
	).Err()
	if err != nil {
		return fmt.Errorf("redis rotate tokens: %w", err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("redis clear session: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
