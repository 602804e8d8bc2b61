package event

import (
	"context"

	"github.com/eventfold/go-eventfold/version"
)

// Appender is the segregated Log interface for appending Domain Events.
type Appender interface {
	// Append adds the Event to its Event Stream.
	//
	// The Event version must be the caller's best-known next version for
	// the stream; no version is computed server-side. Version 0 is
	// rejected with ErrInvalidVersion before any write. If another Event
	// already occupies (stream type, stream name, version), the append
	// performs no write and returns a ConflictError. The uniqueness check
	// is atomic at the storage boundary: when two writers race on the same
	// version, exactly one of them succeeds.
	Append(ctx context.Context, evt Event) error
}

// Loader is the segregated Log interface for reading Event Streams.
type Loader interface {
	// Load returns all Events of the specified Event Stream, ordered by
	// version ascending, or an empty slice if the stream has no Events.
	//
	// The returned slice is a consistent snapshot as of call time: it never
	// contains a partially-visible append.
	Load(ctx context.Context, id StreamID) ([]Event, error)
}

// Indexer is the segregated Log interface for querying Event Stream
// metadata without loading Event payloads.
type Indexer interface {
	// LatestVersion returns the highest version stored for the Event Stream,
	// or 0 if the stream has no Events.
	//
	// The value is inherently racy against concurrent appenders: treat it
	// as a hint for computing the next version, and rely on Append's
	// ConflictError for correctness.
	LatestVersion(ctx context.Context, id StreamID) (version.Version, error)

	// Exists reports whether the Event Stream has at least one Event.
	Exists(ctx context.Context, id StreamID) (bool, error)

	// StreamNames returns the distinct names of all Event Streams of the
	// specified type, sorted lexicographically.
	StreamNames(ctx context.Context, streamType string) ([]string, error)
}

// Log is the complete interface for an Event Log: durable, ordered,
// conflict-safe storage of Domain Events.
type Log interface {
	Appender
	Loader
	Indexer
}

// FusedLog is a convenience type to fuse multiple Log interfaces
// where you might need to extend the functionality of a Log only partially.
//
// E.g. you might want to wrap the Append method of an existing Log
// implementation, but keep its Loader and Indexer behavior as-is.
// A FusedLog instance composed of the wrapper and the original Log
// can then be used wherever a full Log is required.
type FusedLog struct {
	Appender
	Loader
	Indexer
}
