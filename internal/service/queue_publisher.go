// Package queue_publisher publishes change events to RabbitMQ so that other
// instances reload their ledger or roster.  Publishing is best effort:
// errors are logged and returned, callers may ignore them.
package queue_publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
	q "github.com/iliyamo/festival-jury-scoring/internal/queue"
)

// Publisher sends events to the fanout exchange over one long-lived
// channel, re-dialing after a failure.
type Publisher struct {
	url        string
	instanceID string
	log        *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// New returns a publisher tagging every event with instanceID.  No
// connection is made until the first publish.
func New(url, instanceID string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{url: url, instanceID: instanceID, log: log.Named("event-publisher")}
}

// PublishScoresSubmitted announces a stored jury form.
func (p *Publisher) PublishScoresSubmitted(ctx context.Context, bandID, stageID int, juryID model.JuryMemberID) error {
	return p.publish(ctx, q.Event{
		Type:         q.EventScoresSubmitted,
		BandID:       bandID,
		StageID:      stageID,
		JuryMemberID: juryID,
	})
}

// PublishRosterChanged announces a change to one roster collection.
func (p *Publisher) PublishRosterChanged(ctx context.Context, collection string) error {
	return p.publish(ctx, q.Event{Type: q.EventRosterChanged, Collection: collection})
}

func (p *Publisher) publish(ctx context.Context, ev q.Event) error {
	ev.Source = p.instanceID
	ev.OccurredAt = time.Now().UTC()
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		p.log.Warn("broker unavailable", zap.String("type", ev.Type), zap.Error(err))
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, q.ExchangeName, "", false, false, pub); err != nil {
		p.log.Warn("publish failed", zap.String("type", ev.Type), zap.Error(err))
		p.reset()
		return err
	}
	return nil
}

// channel returns the open channel, dialing when needed.  p.mu must be held.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if err := ch.ExchangeDeclare(q.ExchangeName, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("exchange declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
