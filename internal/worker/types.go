package worker

import "context"

// Job is a unit of background work. Returned errors are logged, not retried.
type Job func(ctx context.Context) error
