package messaging

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// AttemptsHeader counts how many times a job has already been retried.
const AttemptsHeader = "x-attempts"

// DefaultMaxAttempts bounds deliveries per job when the consumer is not configured.
const DefaultMaxAttempts = 5

// Requeuer puts a message back at the tail of the queue. *RabbitPublisher satisfies it.
type Requeuer interface {
	Publish(ctx context.Context, msg amqp.Publishing) error
}

// Consumer settles email deliveries. A failed send is republished with its attempt count
// bumped, and dropped once MaxAttempts deliveries have failed.
type Consumer struct {
	Worker      *EmailWorker
	Requeue     Requeuer
	MaxAttempts int
	Logger      logrus.FieldLogger
}

// Process handles one delivery and acks, drops or reschedules it.
func (c *Consumer) Process(ctx context.Context, d amqp.Delivery) {
	switch c.Worker.Handle(ctx, d.Body) {
	case Ack:
		_ = d.Ack(false)
	case Retry:
		c.retry(ctx, d)
	default:
		_ = d.Nack(false, false)
	}
}

func (c *Consumer) retry(ctx context.Context, d amqp.Delivery) {
	limit := c.MaxAttempts
	if limit <= 0 {
		limit = DefaultMaxAttempts
	}
	var logger logrus.FieldLogger = logrus.StandardLogger()
	if c.Logger != nil {
		logger = c.Logger
	}
	n := attempts(d) + 1
	log := logger.WithFields(logrus.Fields{"attempt": n, "max_attempts": limit})
	if n >= limit {
		log.Error("email job exhausted its attempts; dropping")
		_ = d.Nack(false, false)
		return
	}

	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	delete(headers, "x-delivery-count")
	headers[AttemptsHeader] = int64(n)
	err := c.Requeue.Publish(ctx, amqp.Publishing{
		Headers:      headers,
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    d.MessageId,
		Timestamp:    d.Timestamp,
		Body:         d.Body,
	})
	if err != nil {
		// Hand it back to the broker untouched; the attempt is not counted.
		log.WithError(err).Warn("republish email job failed")
		_ = d.Nack(false, true)
		return
	}
	log.Info("email job rescheduled")
	_ = d.Ack(false)
}

// attempts reads the retry count from our header or, on quorum queues, the broker's
// delivery count, whichever is higher.
func attempts(d amqp.Delivery) int {
	n := headerInt(d.Headers[AttemptsHeader])
	if dc := headerInt(d.Headers["x-delivery-count"]); dc > n {
		n = dc
	}
	return n
}

func headerInt(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int8:
		return int(x)
	case int16:
		return int(x)
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint8:
		return int(x)
	case uint16:
		return int(x)
	case uint32:
		return int(x)
	default:
		return 0
	}
}
