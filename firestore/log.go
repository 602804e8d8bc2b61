// Package firestore provides an event.Log implementation targeted
// to Google Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/eventfold/go-eventfold/event"
	"github.com/eventfold/go-eventfold/version"
)

// DefaultCollection is the Firestore collection a Log points to
// when no Collection is specified.
const DefaultCollection = "events"

// Interface implementation assertion.
var _ event.Log = Log{}

// Log is an event.Log implementation backed by a Firestore collection,
// one document per Domain Event.
//
// Each document is keyed by its (stream type, stream name, version) triple,
// so that a document Create acts as the atomic compare-and-insert required
// for optimistic concurrency: creating an already-existing document fails
// with AlreadyExists, surfaced as an event.ConflictError.
//
// The Client's lifecycle belongs to the caller.
type Log struct {
	Client *firestore.Client
	Codec  event.Codec

	// Collection is the name of the Firestore collection holding the
	// Domain Events. DefaultCollection is used when empty.
	Collection string

	// Strict makes the Log reject appends whose version is not exactly
	// latest+1 for the stream, within the same transaction as the write.
	Strict bool
}

func (l Log) events() *firestore.CollectionRef {
	collection := l.Collection
	if collection == "" {
		collection = DefaultCollection
	}

	return l.Client.Collection(collection)
}

func documentID(id event.StreamID, v version.Version) string {
	return fmt.Sprintf("%s!%s!%d", id.Type, id.Name, v)
}

// Append implements the event.Appender interface.
func (l Log) Append(ctx context.Context, evt event.Event) error {
	if evt.Version == 0 {
		return fmt.Errorf("firestore.Log: failed to append event, %w", event.ErrInvalidVersion)
	}

	data, err := l.Codec.Serialize(evt.Payload)
	if err != nil {
		return fmt.Errorf("firestore.Log: failed to append event, %w", event.SerializationError{
			EventType: evt.Type(),
			Err:       err,
		})
	}

	docRef := l.events().Doc(documentID(evt.Stream, evt.Version))

	fields := map[string]interface{}{
		"event_id":    evt.ID.String(),
		"stream_type": evt.Stream.Type,
		"stream_name": evt.Stream.Name,
		"event_type":  evt.Type(),
		"version":     int64(evt.Version),
		"payload":     data,
		"occurred_at": evt.OccurredAt,
	}

	err = l.Client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		if l.Strict && evt.Version > 1 {
			prevRef := l.events().Doc(documentID(evt.Stream, evt.Version-1))

			if _, err := tx.Get(prevRef); status.Code(err) == codes.NotFound {
				return event.ConflictError{Stream: evt.Stream, Version: evt.Version}
			} else if err != nil {
				return err
			}
		}

		return tx.Create(docRef, fields)
	})

	var conflictErr event.ConflictError
	if errors.As(err, &conflictErr) || status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("firestore.Log: failed to append event, %w", event.ConflictError{
			Stream:  evt.Stream,
			Version: evt.Version,
		})
	}

	if err != nil {
		return fmt.Errorf("firestore.Log: failed to append event, %w", event.StorageError{
			Op:  "append",
			Err: err,
		})
	}

	return nil
}

func (l Log) eventFromDocument(id event.StreamID, doc *firestore.DocumentSnapshot) (event.Event, error) {
	var zeroValue event.Event

	var record struct {
		EventID    string    `firestore:"event_id"`
		EventType  string    `firestore:"event_type"`
		Version    int64     `firestore:"version"`
		Payload    []byte    `firestore:"payload"`
		OccurredAt time.Time `firestore:"occurred_at"`
	}

	if err := doc.DataTo(&record); err != nil {
		return zeroValue, event.StorageError{Op: "load", Err: err}
	}

	eventID, err := uuid.Parse(record.EventID)
	if err != nil {
		return zeroValue, event.StorageError{Op: "load", Err: err}
	}

	payload, err := l.Codec.Deserialize(record.EventType, record.Payload)
	if err != nil {
		return zeroValue, event.SerializationError{EventType: record.EventType, Err: err}
	}

	return event.Event{
		ID:         eventID,
		Stream:     id,
		Version:    version.Version(record.Version),
		Payload:    payload,
		OccurredAt: record.OccurredAt,
	}, nil
}

// Load implements the event.Loader interface.
func (l Log) Load(ctx context.Context, id event.StreamID) ([]event.Event, error) {
	iter := l.events().
		Where("stream_type", "==", id.Type).
		Where("stream_name", "==", id.Name).
		OrderBy("version", firestore.Asc).
		Documents(ctx)

	defer iter.Stop()

	events := make([]event.Event, 0)

	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("firestore.Log: failed to load events, %w", event.StorageError{
				Op:  "load",
				Err: err,
			})
		}

		evt, err := l.eventFromDocument(id, doc)
		if err != nil {
			return nil, fmt.Errorf("firestore.Log: failed to load events, %w", err)
		}

		events = append(events, evt)
	}

	return events, nil
}

// LatestVersion implements the event.Indexer interface.
func (l Log) LatestVersion(ctx context.Context, id event.StreamID) (version.Version, error) {
	iter := l.events().
		Where("stream_type", "==", id.Type).
		Where("stream_name", "==", id.Name).
		OrderBy("version", firestore.Desc).
		Limit(1).
		Documents(ctx)

	defer iter.Stop()

	doc, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("firestore.Log: failed to query latest version, %w", event.StorageError{
			Op:  "query latest version",
			Err: err,
		})
	}

	latest, ok := doc.Data()["version"].(int64)
	if !ok {
		return 0, fmt.Errorf("firestore.Log: failed to query latest version, unexpected version field type")
	}

	return version.Version(latest), nil
}

// Exists implements the event.Indexer interface.
func (l Log) Exists(ctx context.Context, id event.StreamID) (bool, error) {
	latest, err := l.LatestVersion(ctx, id)
	if err != nil {
		return false, err
	}

	return latest > 0, nil
}

// StreamNames implements the event.Indexer interface.
//
// Firestore has no distinct-values query: names are deduplicated
// client-side from the stream's documents.
func (l Log) StreamNames(ctx context.Context, streamType string) ([]string, error) {
	iter := l.events().
		Where("stream_type", "==", streamType).
		Select("stream_name").
		Documents(ctx)

	defer iter.Stop()

	seen := make(map[string]struct{})

	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("firestore.Log: failed to list stream names, %w", event.StorageError{
				Op:  "list stream names",
				Err: err,
			})
		}

		if name, ok := doc.Data()["stream_name"].(string); ok {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names, nil
}
