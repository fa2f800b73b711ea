package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/modis-choropleth/internal/config"
	"github.com/couchcryptid/modis-choropleth/internal/session"
	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"
)

// ErrQueueFull is returned by Publish when the writer has fallen behind.
var ErrQueueFull = errors.New("view publish queue is full")

const (
	defaultQueueSize   = 64
	defaultMaxAttempts = 5
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces every session view to a Kafka topic. It implements
// session.ViewSink. Publish only enqueues; Run performs the writes so a slow
// broker never stalls the session loop.
type Publisher struct {
	writer         messageWriter
	queue          chan kafkago.Message
	logger         *slog.Logger
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewPublisher creates a Kafka producer for the configured frame topic.
// Messages are keyed by variable, so views of one variable stay ordered
// within a partition.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaFrameTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newPublisher(w, logger)
}

func newPublisher(w messageWriter, logger *slog.Logger) *Publisher {
	return &Publisher{
		writer:         w,
		queue:          make(chan kafkago.Message, defaultQueueSize),
		logger:         logger,
		maxAttempts:    defaultMaxAttempts,
		initialBackoff: 200 * time.Millisecond,
		maxBackoff:     5 * time.Second,
	}
}

// Publish serializes view and queues it for delivery.
func (p *Publisher) Publish(_ context.Context, view session.View) error {
	msg, err := serializeToMessage(view)
	if err != nil {
		return err
	}
	select {
	case p.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run delivers queued views until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Info("view publisher started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("view publisher stopping", "reason", ctx.Err(), "dropped", len(p.queue))
			return nil
		case msg := <-p.queue:
			if err := p.write(ctx, msg); err != nil && ctx.Err() == nil {
				p.logger.Error("publish view failed", "error", err, "key", string(msg.Key))
			}
		}
	}
}

// write retries with exponential backoff: start at 200ms, double each retry,
// cap at 5s.
func (p *Publisher) write(ctx context.Context, msg kafkago.Message) error {
	backoff := p.initialBackoff
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err = p.writer.WriteMessages(ctx, msg); err == nil {
			return nil
		}
		if attempt == p.maxAttempts {
			break
		}
		p.logger.Warn("write view failed, retrying", "error", err, "attempt", attempt)
		if !sharedretry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = sharedretry.NextBackoff(backoff, p.maxBackoff)
	}
	return fmt.Errorf("after %d attempts: %w", p.maxAttempts, err)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a view into a Kafka message.
func serializeToMessage(view session.View) (kafkago.Message, error) {
	data, err := json.Marshal(view)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize view: %w", err)
	}
	headers := []kafkago.Header{
		{Key: "variable", Value: []byte(view.Selection.Variable)},
		{Key: "period", Value: []byte(view.Period)},
		{Key: "generated_at", Value: []byte(view.GeneratedAt.Format(time.RFC3339))},
	}
	if view.Selection.HasPin() {
		headers = append(headers, kafkago.Header{Key: "pinned", Value: []byte(view.Selection.Pinned)})
	}
	return kafkago.Message{
		Key:     []byte(view.Selection.Variable),
		Value:   data,
		Headers: headers,
	}, nil
}
