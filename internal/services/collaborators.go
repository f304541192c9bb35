package services

import (
	"context"
	"sync"
	"time"

	"cropcare-service/internal/models"
	"cropcare-service/internal/worker"
)

// Cache is satisfied by redis.JSONCache.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Throttle is satisfied by redis.Throttle.
type Throttle interface {
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// SMSSender is satisfied by phone.PhoneService.
type SMSSender interface {
	SendSMS(ctx context.Context, title, content string, phoneNumbers []string) error
}

// ImageArchive is satisfied by minio.MinioClient.
type ImageArchive interface {
	ArchiveImage(ctx context.Context, objectName, filePath, contentType string) error
}

// JobSubmitter is satisfied by worker.WorkingPool.
type JobSubmitter interface {
	TrySubmitJob(job worker.Job) bool
}

// StatsInvalidator drops cached officer aggregates after report writes.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context)
}

type NoopCache struct{}

func (NoopCache) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (NoopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (NoopCache) Delete(context.Context, ...string) error               { return nil }

// MemoryThrottle is the single-process fallback used when Redis is down.
type MemoryThrottle struct {
	mu      sync.Mutex
	claims  map[string]time.Time
	nowFunc func() time.Time
}

func NewMemoryThrottle() *MemoryThrottle {
	return &MemoryThrottle{claims: map[string]time.Time{}, nowFunc: time.Now}
}

func (t *MemoryThrottle) Allow(_ context.Context, key string, window time.Duration) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.nowFunc()
	t.sweep(now)
	if _, ok := t.claims[key]; ok {
		return false, nil
	}
	t.claims[key] = now.Add(window)
	return true, nil
}

// sweep drops expired claims. Caller holds t.mu.
func (t *MemoryThrottle) sweep(now time.Time) {
	for k, until := range t.claims {
		if !now.Before(until) {
			delete(t.claims, k)
		}
	}
}

func (t *MemoryThrottle) Release(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.claims, key)
	return nil
}

type OutcomeRecorder interface {
	RecordBookkeeping(target string, status models.OutcomeStatus)
}
