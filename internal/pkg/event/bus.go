package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Publisher publishes domain events.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// HandlerFunc consumes one decoded event message.
type HandlerFunc func(ctx context.Context, msg *message.Message) error

// Bus delivers events in-process through a gochannel pub/sub and, when
// brokers are configured, mirrors every event to Kafka.
type Bus struct {
	local     *gochannel.GoChannel
	publisher message.Publisher
	router    *message.Router
	logger    watermill.LoggerAdapter
}

type Config struct {
	KafkaBrokers []string
	Buffer       int64
}

func NewBus(cfg Config, logger *slog.Logger) (*Bus, error) {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 64
	}
	wlog := watermill.NewSlogLogger(logger)

	local := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.Buffer,
	}, wlog)

	publishers := []message.Publisher{local}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.KafkaBrokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wlog)
		if err != nil {
			_ = local.Close()
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		publishers = append(publishers, mirror{kp})
		slog.Info("Kafka event mirror enabled", "brokers", cfg.KafkaBrokers)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, wlog)
	if err != nil {
		return nil, fmt.Errorf("failed to create event router: %w", err)
	}
	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			Logger:          wlog,
		}.Middleware,
	)

	return &Bus{
		local:     local,
		publisher: fanout(publishers),
		router:    router,
		logger:    wlog,
	}, nil
}

// Publish marshals payload as JSON and publishes it on topic.
func (b *Bus) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("topic", topic)
	msg.SetContext(context.WithoutCancel(ctx))

	return b.publisher.Publish(topic, msg)
}

// Handle subscribes fn to topic. Must be called before Run.
func (b *Bus) Handle(name, topic string, fn HandlerFunc) {
	b.router.AddNoPublisherHandler(name, topic, b.local, func(msg *message.Message) error {
		return fn(msg.Context(), msg)
	})
}

// Run blocks until ctx is cancelled or the router is closed.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once every handler is subscribed.
func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

func (b *Bus) Close() error {
	return errors.Join(b.router.Close(), b.publisher.Close())
}

// Decode unmarshals the JSON payload of msg.
func Decode[T any](msg *message.Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("failed to decode event %s: %w", msg.UUID, err)
	}
	return v, nil
}

// fanout publishes to every publisher in order.
type fanout []message.Publisher

func (f fanout) Publish(topic string, messages ...*message.Message) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(topic, messages...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) Close() error {
	var errs []error
	for _, p := range f {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}

// mirror forwards to an external broker. Broker outages are logged and do
// not fail the local publish.
type mirror struct {
	message.Publisher
}

func (m mirror) Publish(topic string, messages ...*message.Message) error {
	if err := m.Publisher.Publish(topic, messages...); err != nil {
		slog.Error("Failed to mirror event to kafka", "topic", topic, "error", err)
	}
	return nil
}
