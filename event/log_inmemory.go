package event

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/eventfold/go-eventfold/version"
)

// Interface implementation assertion.
var _ Log = new(InMemoryLog)

// InMemoryLog is a thread-safe, in-memory event.Log implementation.
//
// Its uniqueness check on (stream type, stream name, version) runs under
// an exclusive lock, giving the same exactly-one-winner semantics as the
// unique index of a durable backend. Useful for tests and as a reference
// implementation of the Log contract.
type InMemoryLog struct {
	mx      sync.RWMutex
	strict  bool
	streams map[StreamID][]Event
}

// NewInMemoryLog creates a new, empty InMemoryLog instance.
func NewInMemoryLog() *InMemoryLog {
	return &InMemoryLog{
		streams: make(map[StreamID][]Event),
	}
}

// NewStrictInMemoryLog creates an InMemoryLog that additionally rejects
// appends whose version is not exactly latest+1 for the stream, making
// version contiguity an enforced invariant rather than a usage convention.
func NewStrictInMemoryLog() *InMemoryLog {
	log := NewInMemoryLog()
	log.strict = true

	return log
}

// Append implements the event.Appender interface.
//
// The uniqueness check and the write happen under the same critical
// section: when two goroutines race on the same stream version, exactly
// one append succeeds and the other receives a ConflictError.
func (l *InMemoryLog) Append(_ context.Context, evt Event) error {
	if evt.Version == 0 {
		return fmt.Errorf("event.InMemoryLog: failed to append event, %w", ErrInvalidVersion)
	}

	l.mx.Lock()
	defer l.mx.Unlock()

	events := l.streams[evt.Stream]

	idx := sort.Search(len(events), func(i int) bool {
		return events[i].Version >= evt.Version
	})

	if idx < len(events) && events[idx].Version == evt.Version {
		return fmt.Errorf("event.InMemoryLog: failed to append event, %w", ConflictError{
			Stream:  evt.Stream,
			Version: evt.Version,
		})
	}

	if l.strict {
		var latest version.Version
		if len(events) > 0 {
			latest = events[len(events)-1].Version
		}

		if evt.Version != latest+1 {
			return fmt.Errorf("event.InMemoryLog: failed to append event, %w", ConflictError{
				Stream:  evt.Stream,
				Version: evt.Version,
			})
		}
	}

	// Copy-on-write keeps slices previously returned by Load stable.
	newEvents := make([]Event, 0, len(events)+1)
	newEvents = append(newEvents, events[:idx]...)
	newEvents = append(newEvents, evt)
	newEvents = append(newEvents, events[idx:]...)

	l.streams[evt.Stream] = newEvents

	return nil
}

// Load implements the event.Loader interface.
func (l *InMemoryLog) Load(_ context.Context, id StreamID) ([]Event, error) {
	l.mx.RLock()
	defer l.mx.RUnlock()

	events := l.streams[id]

	snapshot := make([]Event, len(events))
	copy(snapshot, events)

	return snapshot, nil
}

// LatestVersion implements the event.Indexer interface.
func (l *InMemoryLog) LatestVersion(_ context.Context, id StreamID) (version.Version, error) {
	l.mx.RLock()
	defer l.mx.RUnlock()

	events := l.streams[id]
	if len(events) == 0 {
		return 0, nil
	}

	return events[len(events)-1].Version, nil
}

// Exists implements the event.Indexer interface.
func (l *InMemoryLog) Exists(ctx context.Context, id StreamID) (bool, error) {
	latest, err := l.LatestVersion(ctx, id)
	if err != nil {
		return false, err
	}

	return latest > 0, nil
}

// StreamNames implements the event.Indexer interface.
func (l *InMemoryLog) StreamNames(_ context.Context, streamType string) ([]string, error) {
	l.mx.RLock()
	defer l.mx.RUnlock()

	names := make([]string, 0)

	for id, events := range l.streams {
		if id.Type == streamType && len(events) > 0 {
			names = append(names, id.Name)
		}
	}

	sort.Strings(names)

	return names, nil
}
