package event

import (
	"context"
	"log/slog"
	"time"

	"cropcare-service/internal/worker"

	"github.com/google/uuid"
)

type Dispatcher interface {
	Dispatch(eventType EventType, phone string, additional map[string]any)
}

// AsyncDispatcher hands events to the working pool so publishing never blocks
// the request that produced them.
type AsyncDispatcher struct {
	pool      *worker.WorkingPool
	publisher Publisher
	timeout   time.Duration
	recorder  Recorder
}

type Recorder interface {
	RecordEvent(eventType string, err error)
}

func NewAsyncDispatcher(pool *worker.WorkingPool, publisher Publisher) *AsyncDispatcher {
	return &AsyncDispatcher{
		pool:      pool,
		publisher: publisher,
		timeout:   10 * time.Second,
	}
}

func (d *AsyncDispatcher) RecordWith(r Recorder) {
	d.recorder = r
}

func (d *AsyncDispatcher) Dispatch(eventType EventType, phone string, additional map[string]any) {
	evt := CropCareEvent{
		ID:         uuid.NewString(),
		EventType:  eventType,
		Phone:      phone,
		OccurredAt: time.Now().UTC(),
		Additional: additional,
	}

	job := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		err := d.publisher.PublishEvent(ctx, evt)
		if d.recorder != nil {
			d.recorder.RecordEvent(string(eventType), err)
		}
		return err
	}

	if !d.pool.TrySubmitJob(job) {
		slog.Warn("Event dropped, working pool unavailable",
			"event_type", eventType,
			"event_id", evt.ID,
		)
	}
}
