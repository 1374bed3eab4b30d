package eventpublisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/metrics"
	"github.com/iho/coinledger/internal/usecase"
)

func TestProcessEventsPublishesAndMarks(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{{ID: "evt-1", EventType: "type"}},
	}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents failed: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(pub.published))
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-1" {
		t.Fatalf("expected event to be marked published, got %#v", repo.marked)
	}
	if got := testutil.ToFloat64(ep.metrics.OutboxPublished.WithLabelValues("published")); got != 1 {
		t.Fatalf("expected published counter 1, got %v", got)
	}
}

func TestProcessEventsStopsAtFirstFailure(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", EventType: "type"},
			{ID: "evt-2", EventType: "type"},
		},
	}
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-1": errors.New("fail")},
	}
	ep := newTestPublisher(repo, pub)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents returned error: %v", err)
	}

	if len(pub.published) != 0 {
		t.Fatalf("expected later events to wait for evt-1, got %#v", pub.published)
	}
	if len(repo.marked) != 0 {
		t.Fatalf("expected nothing marked, got %#v", repo.marked)
	}
	if got := testutil.ToFloat64(ep.metrics.OutboxPublished.WithLabelValues("failed")); got != 1 {
		t.Fatalf("expected failed counter 1, got %v", got)
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	repo := &stubOutboxRepo{}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func TestPurgePublishedUsesRetention(t *testing.T) {
	repo := &stubOutboxRepo{}
	ep := newTestPublisher(repo, &stubPublisher{})
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ep.now = func() time.Time { return now }

	ep.purgePublished(context.Background())
	if !repo.purgedBefore.IsZero() {
		t.Fatalf("expected no purge without retention")
	}

	ep.retention = 24 * time.Hour
	ep.purgePublished(context.Background())
	if want := now.Add(-24 * time.Hour); !repo.purgedBefore.Equal(want) {
		t.Fatalf("purged before %v, want %v", repo.purgedBefore, want)
	}
}

func TestFanoutJoinsErrors(t *testing.T) {
	ok := &stubPublisher{}
	failing := &stubPublisher{errorsByID: map[string]error{"evt-1": errors.New("down")}}

	err := Fanout{ok, failing}.Publish(context.Background(), &domain.OutboxEvent{ID: "evt-1"})
	if err == nil {
		t.Fatal("expected fanout to report the failing publisher")
	}
	if len(ok.published) != 1 {
		t.Fatalf("expected healthy publisher to still receive the event")
	}
}

func TestLogPublisherWritesPayload(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	err := p.Publish(context.Background(), &domain.OutboxEvent{
		ID: "evt-1", EventType: domain.EventTypeAccountUpdated, Payload: map[string]any{"balance": "10"},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"payload":{"balance":"10"}`)) {
		t.Fatalf("expected payload in log line, got %s", buf.String())
	}
}

func TestJetStreamPublisher(t *testing.T) {
	js := &stubJetStream{}
	p := &JetStreamPublisher{js: js, prefix: "coinledger"}

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	err := p.Publish(context.Background(), &domain.OutboxEvent{
		ID:            "evt-9",
		EventType:     domain.EventTypeLedgerEventUpdated,
		AggregateType: domain.AggregateTypeLedgerEvent,
		AggregateID:   "le-1",
		AccountID:     "acc-1",
		Payload:       map[string]any{"status": "completed"},
		CreatedAt:     created,
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if js.subject != "coinledger.events.ledger_event.status_changed" {
		t.Fatalf("unexpected subject %q", js.subject)
	}
	if js.opts != 1 {
		t.Fatalf("expected the message id option, got %d options", js.opts)
	}

	var env Envelope
	if err := json.Unmarshal(js.data, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.ID != "evt-9" || env.AccountID != "acc-1" || !env.CreatedAt.Equal(created) {
		t.Fatalf("unexpected envelope %+v", env)
	}

	js.err = errors.New("no responders")
	if err := p.Publish(context.Background(), &domain.OutboxEvent{ID: "evt-10"}); err == nil {
		t.Fatal("expected publish error")
	}
}

func newTestPublisher(repo *stubOutboxRepo, pub *stubPublisher) *EventPublisher {
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Logger:     zerolog.Nop(),
		Metrics:    metrics.NewWithRegistry(prometheus.NewRegistry()),
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
	})
}

type stubOutboxRepo struct {
	events       []*domain.OutboxEvent
	marked       []string
	purgedBefore time.Time
}

func (s *stubOutboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return nil
}

func (s *stubOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if len(s.events) <= limit {
		return append([]*domain.OutboxEvent(nil), s.events...), nil
	}
	return append([]*domain.OutboxEvent(nil), s.events[:limit]...), nil
}

func (s *stubOutboxRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s.marked = append(s.marked, id)
	return nil
}

func (s *stubOutboxRepo) DeletePublished(ctx context.Context, before time.Time) error {
	s.purgedBefore = before
	return nil
}

type stubPublisher struct {
	published  []*domain.OutboxEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}

type stubJetStream struct {
	subject string
	data    []byte
	opts    int
	err     error
}

func (s *stubJetStream) Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.subject, s.data, s.opts = subject, payload, len(opts)
	return &jetstream.PubAck{Stream: "COINLEDGER", Sequence: 1}, nil
}
