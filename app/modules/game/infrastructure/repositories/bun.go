package gamedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// BunStore keeps values in the game_sessions table. Rows not updated
// within ttl read as missing and are removed by DeleteExpired.
type BunStore struct {
	DB  bun.IDB
	ttl time.Duration
	now func() time.Time
}

func NewBunStore(db bun.IDB, ttl time.Duration) *BunStore {
	return &BunStore{DB: db, ttl: ttl, now: time.Now}
}

func (s *BunStore) Get(ctx context.Context, key string) (string, bool, error) {
	var session GameSession
	q := s.DB.NewSelect().Model(&session).Where("session_key = ?", key)
	if s.ttl > 0 {
		q = q.Where("updated_at > ?", s.now().Add(-s.ttl))
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to select session %s: %w", key, err)
	}
	return session.Payload, true, nil
}

func (s *BunStore) Set(ctx context.Context, key, value string) error {
	now := s.now().UTC()
	session := &GameSession{Key: key, Payload: value, CreatedAt: now, UpdatedAt: now}
	_, err := s.DB.NewInsert().
		Model(session).
		On("CONFLICT (session_key) DO UPDATE").
		Set("payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", key, err)
	}
	return nil
}

func (s *BunStore) Remove(ctx context.Context, key string) error {
	if _, err := s.DB.NewDelete().Model((*GameSession)(nil)).Where("session_key = ?", key).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", key, err)
	}
	return nil
}

// DeleteExpired removes sessions older than the ttl and returns how many went.
func (s *BunStore) DeleteExpired(ctx context.Context) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	res, err := s.DB.NewDelete().
		Model((*GameSession)(nil)).
		Where("updated_at <= ?", s.now().Add(-s.ttl)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}
	return int(n), nil
}
