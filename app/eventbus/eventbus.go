// Package eventbus carries operator notifications ("toasts") from the
// services to whoever is listening: the log, the HTTP feed, or remote
// subscribers when NATS is configured.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/marathon-manager/app/shared/attr"
	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"
)

// TopicNotifications is the subject every notification is published on.
const TopicNotifications = "marathon.notifications"

// Config selects the transport. An empty NATSURL keeps notifications in
// process.
type Config struct {
	NATSURL  string `yaml:"nats_url"`
	NKeySeed string `yaml:"nkey_seed"`
}

// Bus publishes and delivers notifications.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	shared     bool // publisher and subscriber are one gochannel
	logger     *slog.Logger
	closeOnce  sync.Once
}

// New builds a Bus on the configured transport.
func New(cfg Config, logger *slog.Logger) (*Bus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if cfg.NATSURL == "" {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		return &Bus{publisher: ch, subscriber: ch, shared: true, logger: logger}, nil
	}

	natsOptions := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Name("marathon-manager"),
	}
	if cfg.NKeySeed != "" {
		opt, err := nkeyOption(cfg.NKeySeed)
		if err != nil {
			return nil, err
		}
		natsOptions = append(natsOptions, opt)
	}

	marshaler := &wmnats.NATSMarshaler{}
	// Notifications are transient; core NATS is enough.
	jsConfig := wmnats.JetStreamConfig{Disabled: true}

	publisher, err := wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:         cfg.NATSURL,
		Marshaler:   marshaler,
		NatsOptions: natsOptions,
		JetStream:   jsConfig,
	}, wmLogger)
	if err != nil {
		logger.Error("Failed to create Watermill publisher", attr.Error(err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL:         cfg.NATSURL,
		Unmarshaler: marshaler,
		NatsOptions: natsOptions,
		JetStream:   jsConfig,
	}, wmLogger)
	if err != nil {
		publisher.Close()
		logger.Error("Failed to create Watermill subscriber", attr.Error(err))
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	return &Bus{publisher: publisher, subscriber: subscriber, logger: logger}, nil
}

// nkeyOption authenticates with a user nkey seed.
func nkeyOption(seed string) (nc.Option, error) {
	kp, err := nkeys.FromSeed([]byte(seed))
	if err != nil {
		return nil, fmt.Errorf("invalid nkey seed: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("invalid nkey seed: %w", err)
	}
	return nc.Nkey(pub, kp.Sign), nil
}

// Notify publishes n. The context's correlation id travels with the message.
func (b *Bus) Notify(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if id := attr.CorrelationID(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}

	if err := b.publisher.Publish(TopicNotifications, msg); err != nil {
		b.logger.ErrorContext(ctx, "Failed to publish notification",
			attr.String("topic", TopicNotifications),
			attr.Error(err),
		)
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Subscribe delivers every notification to handler until ctx is done.
// Messages whose handler fails are nacked.
func (b *Bus) Subscribe(ctx context.Context, handler func(ctx context.Context, n Notification) error) error {
	messages, err := b.subscriber.Subscribe(ctx, TopicNotifications)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", TopicNotifications, err)
	}

	go func() {
		for msg := range messages {
			msgCtx := attr.WithCorrelationID(ctx, middleware.MessageCorrelationID(msg))

			var n Notification
			if err := json.Unmarshal(msg.Payload, &n); err != nil {
				b.logger.ErrorContext(msgCtx, "Dropping malformed notification",
					attr.String("message_id", msg.UUID),
					attr.Error(err),
				)
				msg.Ack()
				continue
			}

			if err := handler(msgCtx, n); err != nil {
				b.logger.ErrorContext(msgCtx, "Notification handler error", attr.Error(err))
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()

	return nil
}

// Close releases the publisher and subscriber.
func (b *Bus) Close() error {
	b.closeOnce.Do(func() {
		if err := b.publisher.Close(); err != nil {
			b.logger.Error("Error closing notification publisher", attr.Error(err))
		}
		if !b.shared {
			if err := b.subscriber.Close(); err != nil {
				b.logger.Error("Error closing notification subscriber", attr.Error(err))
			}
		}
	})
	return nil
}
