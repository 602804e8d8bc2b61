// Package event contains the Domain Event model and the Log interface,
// the append-only, optimistically-locked storage for Domain Events.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/eventfold/go-eventfold/version"
)

// Payload is a Domain Event payload.
//
// Each payload type should have a unique name identifier, used to route
// the raw payload data to its concrete type when loading Events from a Log.
//
// Payload type names should be phrased in the past tense, to enforce
// the notion of "information that happened in the past" (e.g. "OrderCreated").
type Payload interface {
	Name() string
}

// StreamID represents the unique identifier for an Event Stream.
type StreamID struct {
	// Type is the type, or category, of the Event Stream.
	// Usually, this is the name of the Aggregate type (e.g. "Order").
	Type string

	// Name is the name of the Event Stream.
	// Usually, this is the string representation of the Aggregate id.
	Name string
}

// Event is an immutable Domain Event, recording some fact that happened
// to the Aggregate identified by the StreamID.
//
// Once appended to a Log, an Event is never updated or deleted.
type Event struct {
	// ID is the globally-unique identifier of the Event,
	// assigned at creation time and never reused.
	ID uuid.UUID

	// Stream identifies the Event Stream this Event belongs to.
	Stream StreamID

	// Version is the position of the Event in its Event Stream,
	// starting from 1. It is the authoritative ordering and
	// conflict-resolution key for the stream.
	Version version.Version

	// Payload carries the Domain information of the Event.
	Payload Payload

	// OccurredAt is the creation-time clock reading for the Event.
	// It is recorded for ordering and display only: Version, not time,
	// arbitrates conflicts.
	OccurredAt time.Time
}

// Type returns the name identifier of the Event payload.
func (evt Event) Type() string {
	return evt.Payload.Name()
}

// New creates a new Domain Event for the specified Event Stream,
// assigning a fresh Event id and the current UTC time.
//
// The version must be the caller's best-known next version for the stream,
// typically Log.LatestVersion + 1. The Log arbitrates races on Append.
func New(id StreamID, v version.Version, payload Payload) Event {
	return Event{
		ID:         uuid.New(),
		Stream:     id,
		Version:    v,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// RawPayload is a Payload implementation used for Events whose type
// is not known to the deserializing side, typically because they were
// written by a newer version of the application.
//
// It preserves the original type name and serialized data, so that
// loading and re-appending unknown Events is lossless.
type RawPayload struct {
	EventType string
	Data      []byte
}

// Name implements the Payload interface.
func (p RawPayload) Name() string { return p.EventType }
