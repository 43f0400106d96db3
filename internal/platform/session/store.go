package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RememberKey marks a session whose owner asked to stay signed in. The
// store extends the TTL of such sessions on every save.
const RememberKey = "auth.remember"

// ErrSessionNotFound is returned when the id does not resolve to a live
// session (never created, expired, or deleted).
var ErrSessionNotFound = errors.New("session not found")

// Store persists sessions in Redis with a TTL.
type Store struct {
	client      *redis.Client
	prefix      string
	ttl         time.Duration
	rememberTTL time.Duration
}

// NewStore creates a Store. ttl applies to ordinary sessions, rememberTTL
// to sessions carrying the remember flag.
func NewStore(client *redis.Client, prefix string, ttl, rememberTTL time.Duration) *Store {
	return &Store{
		client:      client,
		prefix:      prefix,
		ttl:         ttl,
		rememberTTL: rememberTTL,
	}
}

// sessionKey returns the Redis key for a session id.
func (st *Store) sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", st.prefix, id)
}

// New returns an empty session with a fresh random id. Nothing is written
// to Redis until Save.
func (st *Store) New() *Session {
	return &Session{
		ID:     uuid.NewString(),
		Values: make(map[string]string),
	}
}

// Load retrieves a session by id.
func (st *Store) Load(ctx context.Context, id string) (*Session, error) {
	data, err := st.client.Get(ctx, st.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &Session{ID: id, Values: values}, nil
}

// Save writes the session to Redis and refreshes its TTL. Remembered
// sessions get the long TTL.
func (st *Store) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s.Values)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := st.ttl
	if v, ok := s.Values[RememberKey]; ok && v == "1" {
		ttl = st.rememberTTL
	}

	if err := st.client.Set(ctx, st.sessionKey(s.ID), data, ttl).Err(); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Delete removes the session from Redis.
func (st *Store) Delete(ctx context.Context, id string) error {
	return st.client.Del(ctx, st.sessionKey(id)).Err()
}

// Regenerate gives the session a new id and deletes the record stored under
// the old one. Guards call this on login to prevent session fixation.
func (st *Store) Regenerate(ctx context.Context, s *Session) error {
	old := s.ID
	s.ID = uuid.NewString()
	s.dirty = true

	if err := st.client.Del(ctx, st.sessionKey(old)).Err(); err != nil {
		return err
	}
	return nil
}
