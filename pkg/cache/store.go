package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alimgiray/orgscope/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// LoadFunc computes the value for a missing key.
type LoadFunc func(ctx context.Context) (any, error)

// Stats counts snapshot lookups since the store was created.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Loads  int64 `json:"loads"`
}

// Store keeps JSON snapshots in a Cache and collapses concurrent misses
// for the same key into a single load.
type Store struct {
	backend Cache
	group   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
	loads  atomic.Int64
}

// NewStore wraps backend.
func NewStore(backend Cache) *Store {
	return &Store{backend: backend}
}

// Peek decodes the snapshot under key into v without loading it.
func (s *Store) Peek(ctx context.Context, key string, v any) (bool, error) {
	data, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		s.misses.Add(1)
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger.WithError(err).WithField("key", key).Warn("Discarding unreadable cache entry")
		s.misses.Add(1)
		return false, nil
	}
	s.hits.Add(1)
	return true, nil
}

// GetOrLoad decodes the snapshot under key into v, running load on a miss.
// Concurrent callers missing the same key share one load. The load runs
// detached from the caller's cancellation, so a caller that gives up does
// not abort the work the other waiters depend on. Failed loads are not cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, ttl time.Duration, v any, load LoadFunc) error {
	ok, err := s.Peek(ctx, key, v)
	if err != nil {
		logger.WithError(err).WithField("key", key).Warn("Cache read failed, loading from source")
	}
	if ok {
		return nil
	}

	data, err := s.flight(ctx, key, ttl, load, false)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Refresh recomputes the snapshot under key regardless of what is cached.
func (s *Store) Refresh(ctx context.Context, key string, ttl time.Duration, v any, load LoadFunc) error {
	data, err := s.flight(ctx, key, ttl, load, true)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return json.Unmarshal(data, v)
}

// Stats returns the lookup counters.
func (s *Store) Stats() Stats {
	return Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
		Loads:  s.loads.Load(),
	}
}

func (s *Store) flight(ctx context.Context, key string, ttl time.Duration, load LoadFunc, force bool) ([]byte, error) {
	ch := s.group.DoChan(key, func() (result any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("cache load for %q panicked: %v", key, r)
			}
		}()

		loadCtx := context.WithoutCancel(ctx)

		// Another flight may have filled the key while this caller waited.
		if !force {
			if data, ok, getErr := s.backend.Get(loadCtx, key); getErr == nil && ok {
				return data, nil
			}
		}

		s.loads.Add(1)
		value, err := load(loadCtx)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode cache entry %q: %w", key, err)
		}

		if err := s.backend.Set(loadCtx, key, data, ttl); err != nil {
			logger.WithError(err).WithField("key", key).Warn("Failed to store cache entry")
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}
