package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, ev Event) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func TestDispatch(t *testing.T) {
	var scores, rosters []Event
	h := Handlers{
		ScoresSubmitted: func(_ context.Context, ev Event) error { scores = append(scores, ev); return nil },
		RosterChanged:   func(_ context.Context, ev Event) error { rosters = append(rosters, ev); return nil },
	}
	ctx := context.Background()

	_, err := Dispatch(ctx, "me", h, encode(t, Event{Type: EventScoresSubmitted, Source: "other", BandID: 3, OccurredAt: time.Now()}))
	require.NoError(t, err)
	_, err = Dispatch(ctx, "me", h, encode(t, Event{Type: EventRosterChanged, Source: "other", Collection: "bands"}))
	require.NoError(t, err)
	_, err = Dispatch(ctx, "me", h, encode(t, Event{Type: EventScoresSubmitted, Source: "me"}))
	require.NoError(t, err)

	require.Len(t, scores, 1, "own events are skipped")
	assert.Equal(t, 3, scores[0].BandID)
	require.Len(t, rosters, 1)
	assert.Equal(t, "bands", rosters[0].Collection)
}

func TestDispatch_Errors(t *testing.T) {
	boom := errors.New("reload failed")
	h := Handlers{ScoresSubmitted: func(context.Context, Event) error { return boom }}
	ctx := context.Background()

	_, err := Dispatch(ctx, "me", h, []byte("{"))
	assert.Error(t, err)

	_, err = Dispatch(ctx, "me", h, encode(t, Event{Type: "bands.deleted", Source: "other"}))
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, err = Dispatch(ctx, "me", h, encode(t, Event{Type: EventScoresSubmitted, Source: "other"}))
	assert.ErrorIs(t, err, boom)

	_, err = Dispatch(ctx, "me", h, encode(t, Event{Type: EventRosterChanged, Source: "other"}))
	assert.NoError(t, err, "missing handler ignores the event")
}

func TestSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleep(ctx, time.Hour))
	assert.True(t, sleep(context.Background(), time.Millisecond))
}
