package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/scrum-bot/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
)

// EventBus is the publisher and subscriber every router and module shares.
type EventBus interface {
	message.Publisher
	message.Subscriber
	// Conn exposes the underlying connection for request/reply clients.
	Conn() *nc.Conn
}

// Options configures the NATS connection behind the bus.
type Options struct {
	URL string
	// Name identifies the connection on the server.
	Name string
	// QueueGroup load-balances subscriptions across replicas.
	QueueGroup string
	// NKeySeed enables nkey authentication when set.
	NKeySeed string
}

// natsEventBus implements EventBus over core NATS.
type natsEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	conn       *nc.Conn
	logger     *slog.Logger
}

// NewEventBus connects to NATS and builds the Watermill publisher and
// subscriber on that connection.
func NewEventBus(ctx context.Context, opts Options, logger *slog.Logger) (EventBus, error) {
	if logger == nil {
		logger = slog.Default()
	}

	natsOpts := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2 * time.Second),
	}
	if opts.Name != "" {
		natsOpts = append(natsOpts, nc.Name(opts.Name))
	}
	if opts.NKeySeed != "" {
		nkeyOpt, err := NKeyOption(opts.NKeySeed)
		if err != nil {
			return nil, err
		}
		natsOpts = append(natsOpts, nkeyOpt)
	}

	conn, err := nc.Connect(opts.URL, natsOpts...)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to NATS", attr.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &wmnats.NATSMarshaler{}
	jsDisabled := wmnats.JetStreamConfig{Disabled: true}

	publisher, err := wmnats.NewPublisherWithNatsConn(conn, wmnats.PublisherPublishConfig{
		Marshaler: marshaler,
		JetStream: jsDisabled,
	}, watermillLogger)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL:              opts.URL,
		QueueGroupPrefix: opts.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     10 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      marshaler,
		JetStream:        jsDisabled,
	}, watermillLogger)
	if err != nil {
		_ = publisher.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	logger.InfoContext(ctx, "Connected to NATS",
		attr.String("url", conn.ConnectedUrlRedacted()),
		attr.String("queue_group", opts.QueueGroup),
	)

	return &natsEventBus{
		publisher:  publisher,
		subscriber: subscriber,
		conn:       conn,
		logger:     logger,
	}, nil
}

// Publish sends each message to topic. Handlers registered without a fixed
// publish topic pass "", and the topic is then read from the message metadata.
func (eb *natsEventBus) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
		target := topic
		if target == "" {
			target = msg.Metadata.Get(handlerwrapper.TopicMetadataKey)
		}
		if target == "" {
			return fmt.Errorf("message %s has no topic", msg.UUID)
		}

		if err := eb.publisher.Publish(target, msg); err != nil {
			eb.logger.Error("Failed to publish message",
				attr.String("topic", target),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			return fmt.Errorf("failed to publish to %s: %w", target, err)
		}
		eb.logger.Debug("Message published",
			attr.String("topic", target),
			attr.String("message_id", msg.UUID),
		)
	}
	return nil
}

func (eb *natsEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return eb.subscriber.Subscribe(ctx, topic)
}

func (eb *natsEventBus) Conn() *nc.Conn {
	return eb.conn
}

// Close shuts the subscriber and publisher down, then drains the connection.
func (eb *natsEventBus) Close() error {
	var errs []error
	if err := eb.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("subscriber: %w", err))
	}
	if err := eb.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("publisher: %w", err))
	}
	if err := eb.conn.Drain(); err != nil && !errors.Is(err, nc.ErrConnectionClosed) {
		errs = append(errs, fmt.Errorf("drain: %w", err))
	}
	return errors.Join(errs...)
}
