package mappingstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gatherkit/registrar/internal/importer"
)

// =============================================================================
// MAPPING STORE
// =============================================================================
// Remembers the last confirmed field mapping per organizer and event in
// Redis, so a repeat import of the same export format starts from the
// previous mapping instead of the advisor's guess. Best-effort cache: a
// missing or expired entry just means the advisor runs again.

// ErrNotFound is returned when no saved mapping exists for the key.
var ErrNotFound = errors.New("no saved mapping")

// DefaultTTL keeps saved mappings for 90 days of inactivity.
const DefaultTTL = 90 * 24 * time.Hour

// Store persists confirmed field mappings in Redis.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a mapping store. A non-positive ttl falls back to
// DefaultTTL.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func key(eventID, organizerID uuid.UUID) string {
	return fmt.Sprintf("import:mapping:%s:%s", eventID, organizerID)
}

// Put saves the organizer's confirmed mapping for an event, refreshing the
// TTL.
func (s *Store) Put(ctx context.Context, eventID, organizerID uuid.UUID, mapping importer.FieldMapping) error {
	data, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}
	if err := s.rdb.Set(ctx, key(eventID, organizerID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save mapping: %w", err)
	}
	return nil
}

// Get loads a previously saved mapping. Returns ErrNotFound when none exists.
func (s *Store) Get(ctx context.Context, eventID, organizerID uuid.UUID) (importer.FieldMapping, error) {
	data, err := s.rdb.Get(ctx, key(eventID, organizerID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load mapping: %w", err)
	}

	var mapping importer.FieldMapping
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("decode mapping: %w", err)
	}
	return mapping, nil
}
