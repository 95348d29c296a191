// Package queue carries thumbnail jobs between the API server and the
// worker over a durable RabbitMQ queue. Delivery is at-least-once: jobs
// that fail are redelivered a bounded number of times with backoff and
// then parked on a dead-letter queue for manual inspection.
package queue

import (
	"context"

	"github.com/dvolkovs/filevault/internal/server/models"
)

// Enqueuer is the producer-side interface the file service depends on.
type Enqueuer interface {
	Enqueue(ctx context.Context, job models.ThumbnailJob) error
}

// Handler processes one job. Returning common.ErrMalformedJob sends the
// job straight to the dead-letter queue; any other error goes through the
// retry policy.
type Handler func(ctx context.Context, job models.ThumbnailJob) error
