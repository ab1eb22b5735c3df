package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	"gencatalog/internal/logging"
)

const lockRetryDelay = 100 * time.Millisecond

// GetOrCompute returns the cached value for key when it is younger than the
// policy TTL, otherwise runs compute, stores its JSON encoding, and returns it.
// Concurrent callers for the same key share one computation. Every caller
// receives its own decoded copy, so mutating the result never alters the
// cache. A caller whose context ends stops waiting, but the computation
// continues for the others and its result is still stored. A non-positive TTL
// disables caching for the call.
func GetOrCompute[T any](ctx context.Context, s *Store, key Key, policy Policy, compute func(context.Context) (T, error)) (T, error) {
	var zero T
	if s == nil || policy.TTL <= 0 {
		return compute(ctx)
	}

	payload, ok := s.fresh(ctx, key, policy.TTL)
	if !ok {
		// The shared computation runs detached from any one caller; each
		// caller stops waiting when its own context ends.
		detached := context.WithoutCancel(ctx)
		results := s.group.DoChan(key.String(), func() (any, error) {
			return s.computeLocked(detached, key, policy, func(ctx context.Context) ([]byte, error) {
				value, err := compute(ctx)
				if err != nil {
					return nil, err
				}
				encoded, err := json.Marshal(value)
				if err != nil {
					return nil, fmt.Errorf("encode %s result: %w", key.Func, err)
				}
				return encoded, nil
			})
		})
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case res := <-results:
			if res.Err != nil {
				return zero, res.Err
			}
			if res.Shared {
				s.logger.Debug("shared in-flight computation",
					logging.String(logging.FieldCacheKey, key.String()))
			}
			payload = res.Val.([]byte)
		}
	}

	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return zero, fmt.Errorf("decode cached %s result: %w", key.Func, err)
	}
	return out, nil
}

// fresh reports a cache hit. Read failures are logged and treated as a miss
// so a damaged cache only costs a recomputation.
func (s *Store) fresh(ctx context.Context, key Key, ttl time.Duration) ([]byte, bool) {
	payload, ok, err := s.lookup(ctx, key, ttl)
	if err != nil {
		logging.WarnWithContext(s.logger, "cache lookup failed", "cache_lookup_failed",
			logging.String(logging.FieldCacheKey, key.String()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'gencatalog cache clear' if this persists"),
			logging.String(logging.FieldImpact, "value will be recomputed"))
		return nil, false
	}
	if ok {
		s.metrics.IncCacheHit(key.Func)
		s.logger.Debug("cache hit",
			logging.String(logging.FieldEventType, "cache_hit"),
			logging.String(logging.FieldCacheKey, key.String()))
	}
	return payload, ok
}

// computeLocked serializes computation for key across processes, re-checking
// the store once the lock is held.
func (s *Store) computeLocked(ctx context.Context, key Key, policy Policy, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	lock := flock.New(s.lockPath(key))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock for %s: %w", key.Func, err)
	}
	if !locked {
		return nil, errors.New("acquire cache lock for " + key.Func + ": lock not obtained")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Debug("release cache lock failed", logging.Error(err))
		}
	}()

	if payload, ok := s.fresh(ctx, key, policy.TTL); ok {
		return payload, nil
	}

	s.metrics.IncCacheMiss(key.Func)
	s.logger.Debug("cache miss",
		logging.String(logging.FieldEventType, "cache_miss"),
		logging.String(logging.FieldCacheKey, key.String()),
		logging.String("policy", policy.Name))

	payload, err := compute(ctx)
	if err != nil {
		s.metrics.IncComputeError(key.Func)
		return nil, err
	}

	if err := s.put(ctx, key, payload); err != nil {
		logging.WarnWithContext(s.logger, "cache write failed", "cache_write_failed",
			logging.String(logging.FieldCacheKey, key.String()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "next call will recompute"))
	}
	return payload, nil
}
