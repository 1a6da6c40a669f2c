package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Cache keys and tags of the storefront label list.
const (
	LabelListKey  = "smile_productlabel_frontend"
	LabelCacheTag = "smile_productlabel"
)

const tagKeyPrefix = "tag:"

// ComputeFunc produces the value to memoize on a cache miss.
type ComputeFunc func(ctx context.Context) (any, error)

// Observer receives hit/miss notifications. It may be nil.
type Observer interface {
	CacheHit(key string)
	CacheMiss(key string)
}

// Loader is a read-through cache: values are JSON encoded under a key and
// the key is remembered in the member set of each of its tags so a tag can
// be invalidated as a whole.
type Loader struct {
	kv       KVStore
	logger   *logrus.Entry
	observer Observer
	group    singleflight.Group

	mu          sync.Mutex
	generations map[string]uint64 // tag -> invalidation count
}

// NewLoader creates a loader over kv.
func NewLoader(kv KVStore, logger *logrus.Entry, observer Observer) *Loader {
	return &Loader{
		kv:          kv,
		logger:      logger.WithField("component", "cache-loader"),
		observer:    observer,
		generations: map[string]uint64{},
	}
}

// Get decodes the value cached under key into out, computing and storing it
// first when the key is missing. A ttl of zero stores without expiry.
//
// Concurrent misses for the same key inside this process share one compute
// call. The shared call is detached from the caller that started it, so a
// cancelled request does not fail the others waiting on it; each caller
// still returns as soon as its own ctx is done. A value computed before an
// Invalidate of one of its tags is returned but not stored. Across
// processes two populates may still race and the last write wins.
func (l *Loader) Get(ctx context.Context, key string, tags []string, ttl time.Duration, compute ComputeFunc, out any) error {
	raw, err := l.kv.Get(ctx, key)
	switch {
	case err == nil:
		decodeErr := json.Unmarshal([]byte(raw), out)
		if decodeErr == nil {
			l.hit(key)
			return nil
		}
		l.logger.WithError(decodeErr).WithField("key", key).Warn("Discarding undecodable cache entry")
	case errors.Is(err, ErrCacheMiss):
	default:
		// Serve from the source when the cache is unavailable.
		l.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
	}

	l.miss(key)
	detached := context.WithoutCancel(ctx)
	ch := l.group.DoChan(key, func() (interface{}, error) {
		return l.populate(detached, key, tags, ttl, compute)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return res.Err
	}

	if err := json.Unmarshal(res.Val.([]byte), out); err != nil {
		return fmt.Errorf("failed to decode cache value: %w", err)
	}
	return nil
}

func (l *Loader) populate(ctx context.Context, key string, tags []string, ttl time.Duration, compute ComputeFunc) ([]byte, error) {
	gen := l.generation(tags)

	value, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache value: %w", err)
	}

	// Held across the write so an Invalidate either sees the stored key or
	// bumps the generation first.
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.generationLocked(tags) != gen {
		l.logger.WithField("key", key).Debug("Skipping cache write, tag invalidated during compute")
		return data, nil
	}
	if err := l.store(ctx, key, tags, ttl, string(data)); err != nil {
		l.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
	return data, nil
}

// generation sums the invalidation counts of tags.
func (l *Loader) generation(tags []string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generationLocked(tags)
}

func (l *Loader) generationLocked(tags []string) uint64 {
	var sum uint64
	for _, tag := range tags {
		sum += l.generations[tag]
	}
	return sum
}

func (l *Loader) store(ctx context.Context, key string, tags []string, ttl time.Duration, data string) error {
	if err := l.kv.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	for _, tag := range tags {
		if err := l.kv.SAdd(ctx, tagKeyPrefix+tag, key); err != nil {
			return err
		}
	}
	return nil
}

// Invalidate removes every key stored under tag.
func (l *Loader) Invalidate(ctx context.Context, tag string) error {
	l.mu.Lock()
	l.generations[tag]++
	l.mu.Unlock()

	tagKey := tagKeyPrefix + tag
	keys, err := l.kv.SMembers(ctx, tagKey)
	if err != nil {
		return fmt.Errorf("failed to read tag %s: %w", tag, err)
	}
	if err := l.kv.Del(ctx, append(keys, tagKey)...); err != nil {
		return fmt.Errorf("failed to invalidate tag %s: %w", tag, err)
	}
	for _, key := range keys {
		l.group.Forget(key)
	}

	l.logger.WithFields(logrus.Fields{
		"tag":  tag,
		"keys": len(keys),
	}).Info("Cache tag invalidated")
	return nil
}

func (l *Loader) hit(key string) {
	if l.observer != nil {
		l.observer.CacheHit(key)
	}
}

func (l *Loader) miss(key string) {
	if l.observer != nil {
		l.observer.CacheMiss(key)
	}
}
