package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dvolkovs/filevault/internal/common"
	"github.com/dvolkovs/filevault/internal/logging"
	"github.com/dvolkovs/filevault/internal/server/models"
)

const (
	// attemptsHeader counts deliveries of one job across republishes.
	attemptsHeader = "x-attempts"
	// lastErrorHeader records why a job was dead-lettered.
	lastErrorHeader = "x-last-error"

	// deadSuffix names the dead-letter companion of a queue.
	deadSuffix = ".dead"
)

// RabbitQueue is a durable RabbitMQ work queue with manual acks.
type RabbitQueue struct {
	conn        *amqp.Connection
	ch          *amqp.Channel
	name        string
	maxAttempts int
	backoffBase time.Duration
	logger      logging.Logger

	// publish is a seam for testing delivery routing without a broker.
	publish func(ctx context.Context, queueName string, body []byte, headers amqp.Table) error
}

// NewRabbitQueue dials url and declares the durable queue plus its
// dead-letter companion <name>.dead.
func NewRabbitQueue(url, name string, maxAttempts int, backoffBase time.Duration, logger logging.Logger) (*RabbitQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	for _, q := range []string{name, name + deadSuffix} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("declaring queue %q: %w", q, err)
		}
	}

	q := &RabbitQueue{
		conn:        conn,
		ch:          ch,
		name:        name,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		logger:      logger.With("module", "queue", "queue", name),
	}
	q.publish = q.publishAMQP
	return q, nil
}

// Close releases the channel and connection.
func (q *RabbitQueue) Close() error {
	if q.ch != nil {
		q.ch.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

func (q *RabbitQueue) publishAMQP(ctx context.Context, queueName string, body []byte, headers amqp.Table) error {
	return q.ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Headers:      headers,
	})
}

// Enqueue publishes one job as a persistent JSON message.
func (q *RabbitQueue) Enqueue(ctx context.Context, job models.ThumbnailJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshaling job: %w", err)
	}
	if err := q.publish(ctx, q.name, body, nil); err != nil {
		return fmt.Errorf("publishing job: %w", err)
	}
	return nil
}

// Consume pulls jobs until ctx is cancelled, invoking handle for each.
// Completion semantics per delivery:
//   - handle returns nil: ack, job done.
//   - common.ErrMalformedJob: dead-letter immediately (redelivery cannot
//     fix a missing field).
//   - any other error: republish with an incremented attempt counter
//     after backoff, until the attempt budget is spent, then dead-letter.
func (q *RabbitQueue) Consume(ctx context.Context, handle Handler) error {
	if err := q.ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("setting qos: %w", err)
	}

	deliveries, err := q.ch.ConsumeWithContext(ctx, q.name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("starting consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return common.ErrUnavailable
			}
			q.handleDelivery(ctx, msg, handle)
		}
	}
}

func (q *RabbitQueue) handleDelivery(ctx context.Context, msg amqp.Delivery, handle Handler) {
	var job models.ThumbnailJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		q.logger.Warn(ctx, "dead-lettering undecodable job", "error", err.Error())
		q.deadLetter(ctx, msg, err)
		return
	}

	err := handle(ctx, job)
	if err == nil {
		if err := msg.Ack(false); err != nil {
			q.logger.Error(ctx, "ack failed", "error", err.Error())
		}
		return
	}

	if errors.Is(err, common.ErrMalformedJob) {
		q.logger.Warn(ctx, "dead-lettering malformed job", "file_id", job.FileID, "error", err.Error())
		q.deadLetter(ctx, msg, err)
		return
	}

	attempts := attemptsFrom(msg.Headers)
	if attempts+1 >= q.maxAttempts {
		q.logger.Error(ctx, "job exhausted retries, dead-lettering",
			"file_id", job.FileID, "attempts", attempts+1, "error", err.Error())
		q.deadLetter(ctx, msg, err)
		return
	}

	q.logger.Warn(ctx, "job failed, retrying",
		"file_id", job.FileID, "attempt", attempts+1, "error", err.Error())

	select {
	case <-time.After(backoffFor(q.backoffBase, attempts)):
	case <-ctx.Done():
	}

	headers := amqp.Table{attemptsHeader: int32(attempts + 1)}
	if pubErr := q.publish(ctx, q.name, msg.Body, headers); pubErr != nil {
		// keep the message; the broker redelivers after the nack
		q.logger.Error(ctx, "republish failed, requeueing", "error", pubErr.Error())
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}

func (q *RabbitQueue) deadLetter(ctx context.Context, msg amqp.Delivery, cause error) {
	headers := amqp.Table{
		attemptsHeader:  int32(attemptsFrom(msg.Headers)),
		lastErrorHeader: cause.Error(),
	}
	if err := q.publish(ctx, q.name+deadSuffix, msg.Body, headers); err != nil {
		q.logger.Error(ctx, "dead-letter publish failed, requeueing", "error", err.Error())
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}

// attemptsFrom extracts the delivery counter from message headers; a
// missing or foreign-typed header counts as zero.
func attemptsFrom(headers amqp.Table) int {
	v, ok := headers[attemptsHeader]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int32:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

// backoffFor doubles the base delay per prior attempt: base, 2*base, 4*base.
func backoffFor(base time.Duration, attempts int) time.Duration {
	d := base
	for i := 0; i < attempts; i++ {
		d *= 2
	}
	return d
}
