package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/work-near-me/client/internal/domain"
)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS client_session (
	id            SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	access_token  TEXT NOT NULL,
	refresh_token TEXT NOT NULL,
	user_json     JSONB,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Postgres keeps the session in a single-row table. The triple is written
// with one upsert, so a concurrent reader sees either the old row or the new
// one. Useful when several tools on one host share a session.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens connStr, verifies connectivity, and ensures the schema.
func NewPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sessionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize session schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Load(ctx context.Context) (*domain.Session, error) {
	var sess domain.Session
	var userJSON []byte

	err := p.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token, user_json FROM client_session WHERE id = 1`,
	).Scan(&sess.AccessToken, &sess.RefreshToken, &userJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if len(userJSON) > 0 {
		var user domain.User
		if err := json.Unmarshal(userJSON, &user); err != nil {
			return nil, fmt.Errorf("decode stored user: %w", err)
		}
		sess.User = &user
	}
	return &sess, nil
}

func (p *Postgres) Save(ctx context.Context, sess *domain.Session) error {
	if !sess.Valid() {
		return ErrIncompleteSession
	}

	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO client_session (id, access_token, refresh_token, user_json, updated_at)
		 VALUES (1, $1, $2, $3, now())
		 ON CONFLICT (id) DO UPDATE
		 SET access_token = $1, refresh_token = $2, user_json = $3, updated_at = now()`,
		sess.AccessToken, sess.RefreshToken, userJSON,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateTokens(ctx context.Context, accessToken, refreshToken string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE client_session
		 SET access_token = $1, refresh_token = $2, updated_at = now()
		 WHERE id = 1`,
		accessToken, refreshToken,
	)
	if err != nil {
		return fmt.Errorf("rotate tokens: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoSession
	}
	return nil
}

func (p *Postgres) Clear(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM client_session WHERE id = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
