package eventpublisher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/iho/coinledger/internal/domain"
)

// ConnectNATS dials url, retrying with exponential backoff until ctx ends
// or the retry budget is spent.
func ConnectNATS(ctx context.Context, url string, logger zerolog.Logger) (*nats.Conn, jetstream.JetStream, error) {
	logger = logger.With().Str("component", "nats").Logger()

	var nc *nats.Conn
	connect := func() error {
		var err error
		nc, err = nats.Connect(url,
			nats.Name("coinledger"),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				if err != nil {
					logger.Warn().Err(err).Msg("disconnected from NATS")
				}
			}),
			nats.ReconnectHandler(func(c *nats.Conn) {
				logger.Info().Str("url", c.ConnectedUrl()).Msg("reconnected to NATS")
			}),
		)
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	notify := func(err error, wait time.Duration) {
		logger.Warn().Err(err).Dur("retry_in", wait).Msg("NATS connect failed")
	}
	if err := backoff.RetryNotify(connect, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create jetstream context: %w", err)
	}

	logger.Info().Str("url", nc.ConnectedUrl()).Msg("connected to NATS")
	return nc, js, nil
}

// EnsureStream creates or updates the stream that stores outbox events
// under "<prefix>.events.>".
func EnsureStream(ctx context.Context, js jetstream.JetStream, name, prefix string) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       name,
		Subjects:   []string{prefix + ".events.>"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     72 * time.Hour,
		Duplicates: 10 * time.Minute,
		Replicas:   1,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", name, err)
	}
	return nil
}

// streamPublisher is the part of jetstream.JetStream the publisher needs.
type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// JetStreamPublisher publishes outbox events to
// "<prefix>.events.<event_type>". The outbox id is the message id, so
// redelivered rows are dropped by the stream's duplicate window.
type JetStreamPublisher struct {
	js     streamPublisher
	prefix string
}

func NewJetStreamPublisher(js jetstream.JetStream, prefix string) *JetStreamPublisher {
	return &JetStreamPublisher{js: js, prefix: prefix}
}

// Subject returns the subject an event type is published on.
func (p *JetStreamPublisher) Subject(eventType string) string {
	return p.prefix + ".events." + strings.ReplaceAll(eventType, " ", "_")
}

func (p *JetStreamPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	data, err := Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, p.Subject(event.EventType), data, jetstream.WithMsgID(event.ID)); err != nil {
		return fmt.Errorf("publish %s: %w", event.ID, err)
	}
	return nil
}
