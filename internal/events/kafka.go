package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var ErrPublisherUnavailable = errors.New("event publisher unavailable")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON, keyed by addressee, behind a circuit
// breaker. Failed writes are retried with exponential backoff.
type KafkaPublisher struct {
	writer     messageWriter
	breaker    *gobreaker.CircuitBreaker
	maxRetries uint64
	timeout    time.Duration
	policy     func() backoff.BackOff
	log        *zap.Logger
}

// NewKafkaPublisher builds a publisher whose Publish gives up after timeout,
// retries included.
func NewKafkaPublisher(brokers []string, topic string, maxRetries uint64, timeout time.Duration, log *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	return newKafkaPublisher(w, maxRetries, timeout, log)
}

func newKafkaPublisher(w messageWriter, maxRetries uint64, timeout time.Duration, log *zap.Logger) *KafkaPublisher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kafka-publisher",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &KafkaPublisher{
		writer:     w,
		breaker:    cb,
		maxRetries: maxRetries,
		timeout:    timeout,
		policy: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxElapsedTime = 5 * time.Second
			return b
		},
		log: log,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.Message.To),
		Value: data,
		Time:  evt.OccurredAt,
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	op := func() error {
		_, err := p.breaker.Execute(func() (interface{}, error) {
			return nil, p.writer.WriteMessages(ctx, msg)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(ErrPublisherUnavailable)
		}
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(p.policy(), p.maxRetries), ctx)
	return backoff.RetryNotify(op, b, func(err error, wait time.Duration) {
		p.log.Warn("kafka publish failed, retrying",
			zap.String("event_id", evt.ID),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
