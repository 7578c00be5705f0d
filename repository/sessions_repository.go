package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"azv-admin-api/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const sessionKeyPrefix = "azv:session:"

// SessionsRepository keeps dashboard sessions in Redis; expiry is the key TTL.
type SessionsRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionsRepository(rdb *redis.Client, ttl time.Duration) *SessionsRepository {
	return &SessionsRepository{rdb: rdb, ttl: ttl}
}

func (r *SessionsRepository) TTL() time.Duration { return r.ttl }

func (r *SessionsRepository) Create(ctx context.Context, manager string, cred models.Credential) (*models.Session, error) {
	now := time.Now().UTC()
	s := &models.Session{
		ID:         uuid.NewString(),
		Manager:    manager,
		Credential: cred,
		CreatedAt:  now,
		ExpiresAt:  now.Add(r.ttl),
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionKeyPrefix+s.ID, raw, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return s, nil
}

func (r *SessionsRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := r.rdb.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// Delete removes the session; deleting a missing session is not an error.
func (r *SessionsRepository) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
