package event

import (
	"errors"
	"fmt"

	"github.com/eventfold/go-eventfold/version"
)

// ErrInvalidVersion is returned by a Log when appending an Event with
// version 0, which is reserved for streams with no Events. Every Log
// implementation rejects such appends before touching storage.
var ErrInvalidVersion = errors.New("event: invalid event version, versions start from 1")

// ConflictError is returned by a Log when appending an Event whose
// (stream type, stream name, version) triple is already taken.
//
// The conflict is recoverable: the caller should re-read the latest
// version of the stream and retry the append with a fresh Event.
type ConflictError struct {
	Stream  StreamID
	Version version.Version
}

func (err ConflictError) Error() string {
	return fmt.Sprintf(
		"event: conflict detected, stream '%s' of type '%s' already has an event at version %d",
		err.Stream.Name, err.Stream.Type, err.Version,
	)
}

// StorageError is returned by a Log when the underlying durable store
// fails for reasons other than a version conflict (connectivity, timeouts,
// malformed queries). It is generally not recoverable by retrying
// the same operation.
type StorageError struct {
	// Op is the Log operation that failed (e.g. "append", "load").
	Op  string
	Err error
}

func (err StorageError) Error() string {
	return fmt.Sprintf("event: storage failure during %s, %s", err.Op, err.Err)
}

func (err StorageError) Unwrap() error { return err.Err }

// SerializationError is returned by a Log when an Event payload cannot be
// losslessly serialized before a write, or deserialized after a read.
// No partial write is performed when serialization fails on append.
type SerializationError struct {
	// EventType is the name identifier of the offending payload.
	EventType string
	Err       error
}

func (err SerializationError) Error() string {
	return fmt.Sprintf("event: failed to serialize payload of type '%s', %s", err.EventType, err.Err)
}

func (err SerializationError) Unwrap() error { return err.Err }
