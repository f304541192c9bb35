package services

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cropcare-service/internal/database/jsonstore"
	"cropcare-service/internal/event"
	"cropcare-service/internal/models"
	"cropcare-service/internal/worker"

	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func newTestStore(t *testing.T) *jsonstore.Store {
	t.Helper()
	store, err := jsonstore.NewStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	return store
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

type dispatchedEvent struct {
	Type       event.EventType
	Phone      string
	Additional map[string]any
}

type fakeDispatcher struct {
	mu     sync.Mutex
	events []dispatchedEvent
}

func (d *fakeDispatcher) Dispatch(t event.EventType, phone string, additional map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, dispatchedEvent{Type: t, Phone: phone, Additional: additional})
}

func (d *fakeDispatcher) types() []event.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []event.EventType{}
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) InvalidateStats(context.Context) { c.calls++ }

type fakeClassifier struct {
	verdict *models.Verdict
	err     error
	calls   int
}

func (f *fakeClassifier) Classify(context.Context, string) (*models.Verdict, error) {
	f.calls++
	return f.verdict, f.err
}

type memoryCache struct {
	data    map[string][]byte
	getErr  error
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.deletes++
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type fakeSMS struct {
	err      error
	messages []string
	phones   [][]string
}

func (f *fakeSMS) SendSMS(_ context.Context, _, content string, phones []string) error {
	f.messages = append(f.messages, content)
	f.phones = append(f.phones, phones)
	return f.err
}

type fakeArchive struct {
	mu      sync.Mutex
	objects []string
}

func (f *fakeArchive) ArchiveImage(_ context.Context, objectName, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects = append(f.objects, objectName)
	return nil
}

// inlineJobs runs submitted jobs immediately.
type inlineJobs struct{}

func (inlineJobs) TrySubmitJob(job worker.Job) bool {
	_ = job(context.Background())
	return true
}
