// Package queue defines the events instances of the service exchange over
// RabbitMQ and the consumer that turns them into local reloads.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
)

// ExchangeName is the fanout exchange every instance publishes to and
// binds its own queue on.
const ExchangeName = "jury.events"

// Event types.
const (
	EventScoresSubmitted = "scores.submitted"
	EventRosterChanged   = "roster.changed"
)

// Event announces a change that other instances must pick up.  Receivers
// always reload the full collection; the remaining fields are informative.
type Event struct {
	Type         string             `json:"type"`
	Source       string             `json:"source"`
	Collection   string             `json:"collection,omitempty"`
	BandID       int                `json:"band_id,omitempty"`
	StageID      int                `json:"stage_id,omitempty"`
	JuryMemberID model.JuryMemberID `json:"jury_member_id,omitempty"`
	OccurredAt   time.Time          `json:"occurred_at"`
}

// ErrUnknownEvent is returned by Dispatch for unsupported event types.
var ErrUnknownEvent = errors.New("unknown event type")

// Handlers are the reactions to incoming events.  A nil handler ignores
// its event type.
type Handlers struct {
	ScoresSubmitted func(ctx context.Context, ev Event) error
	RosterChanged   func(ctx context.Context, ev Event) error
}

// Dispatch decodes body and runs the matching handler.  Events published
// by instanceID itself are skipped.
func Dispatch(ctx context.Context, instanceID string, h Handlers, body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Source != "" && ev.Source == instanceID {
		return ev, nil
	}
	switch ev.Type {
	case EventScoresSubmitted:
		if h.ScoresSubmitted != nil {
			return ev, h.ScoresSubmitted(ctx, ev)
		}
	case EventRosterChanged:
		if h.RosterChanged != nil {
			return ev, h.RosterChanged(ctx, ev)
		}
	default:
		return ev, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return ev, nil
}
