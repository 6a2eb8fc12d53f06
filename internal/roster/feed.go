package roster

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Source loads the full roster from the backing store.
type Source interface {
	LoadRoster(ctx context.Context) (*Snapshot, error)
}

// Feed turns change notifications into a stream of full roster snapshots.
// Notifications are coalesced: any number of Notify calls made while a load
// is pending result in a single reload.
type Feed struct {
	source     Source
	log        *zap.Logger
	trigger    chan struct{}
	updates    chan *Snapshot
	retryDelay time.Duration
}

// NewFeed returns a feed reading from source.
func NewFeed(source Source, log *zap.Logger) *Feed {
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{
		source:     source,
		log:        log,
		trigger:    make(chan struct{}, 1),
		updates:    make(chan *Snapshot, 1),
		retryDelay: 2 * time.Second,
	}
}

// Updates is the snapshot stream.  It is closed when Run returns.
func (f *Feed) Updates() <-chan *Snapshot { return f.updates }

// Notify requests a reload.  It never blocks.
func (f *Feed) Notify() {
	select {
	case f.trigger <- struct{}{}:
	default:
	}
}

// Run loads an initial snapshot and then one per notification until ctx is
// done.  A failed load keeps the previous snapshot in force and is retried
// after a short delay.
func (f *Feed) Run(ctx context.Context) error {
	defer close(f.updates)

	f.Notify()
	var retry <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.trigger:
		case <-retry:
		}
		retry = nil

		snap, err := f.source.LoadRoster(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Error("roster reload failed", zap.Error(err), zap.Duration("retry_in", f.retryDelay))
			retry = time.After(f.retryDelay)
			continue
		}
		select {
		case f.updates <- snap:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
