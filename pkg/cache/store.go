package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss is returned when no fresh entry exists for a key.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry is returned when a stored entry cannot be decoded.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// StaleWindow is how long an expired entry that carries validators is kept
// so it can be revalidated with a conditional request.
const StaleWindow = time.Hour

// Store keeps entries in Redis with a TTL equal to their remaining lifetime,
// plus StaleWindow for entries that can be revalidated.
type Store struct {
	rdb redis.Cmdable
}

// NewStore returns a Store backed by rdb.
func NewStore(rdb redis.Cmdable) (*Store, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Store{rdb: rdb}, nil
}

// Get returns the entry for key, or ErrCacheMiss.
// An expired entry is only returned when it can be revalidated; callers must
// check Expired before serving it. Corrupt entries are deleted and reported
// as ErrInvalidEntry.
func (s *Store) Get(ctx context.Context, key Key) (*Entry, error) {
	raw, err := s.rdb.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		Misses.Inc()
		return nil, ErrCacheMiss
	}
	if err != nil {
		Errors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		Errors.WithLabelValues("get").Inc()
		_ = s.Delete(ctx, key)
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.Expired() && !entry.CanRevalidate() {
		_ = s.Delete(ctx, key)
		Misses.Inc()
		return nil, ErrCacheMiss
	}

	Hits.Inc()
	return &entry, nil
}

// Set stores entry until it expires. Already expired entries without
// validators are skipped.
func (s *Store) Set(ctx context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL()
	if entry.CanRevalidate() {
		ttl += StaleWindow
	}
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		Errors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.rdb.Set(ctx, key.String(), raw, ttl).Err(); err != nil {
		Errors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	StoredBytes.Add(float64(len(raw)))
	return nil
}

// Delete removes the entry for key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key Key) error {
	if err := s.rdb.Del(ctx, key.String()).Err(); err != nil {
		Errors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Extend moves the expiry of an existing entry, as after a 304 that carried
// a new Expires header.
func (s *Store) Extend(ctx context.Context, key Key, expires time.Time) error {
	entry, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	entry.Expires = expires
	return s.Set(ctx, key, entry)
}

// Invalidate removes the entry for path and every entry below it, across
// query strings and scopes. "/room/3" drops "/room/3/from/..." but not
// "/room/30". Used after a booking changes availability.
func (s *Store) Invalidate(ctx context.Context, path string) error {
	base := Key{Path: path}.String()
	for _, pattern := range []string{base, base + ":*", base + "/*"} {
		if err := s.deleteMatching(ctx, pattern); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) deleteMatching(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			Errors.WithLabelValues("delete").Inc()
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				Errors.WithLabelValues("delete").Inc()
				return fmt.Errorf("redis del: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
