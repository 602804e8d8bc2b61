// Package postgres provides an event.Log implementation targeted
// to PostgreSQL databases.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventfold/go-eventfold/event"
	"github.com/eventfold/go-eventfold/logger"
	"github.com/eventfold/go-eventfold/version"
)

// Interface implementation assertion.
var _ event.Log = &Log{}

// Log is an event.Log implementation backed by a PostgreSQL table,
// one row per Domain Event.
//
// Optimistic concurrency relies entirely on the table's unique index over
// (stream_type, stream_name, version): an append is a single INSERT, and
// a unique-violation error from the database is surfaced as an
// event.ConflictError. No in-process locks are involved.
//
// Use RunMigrations to provision the schema before building a Log instance.
type Log struct {
	conn   *pgxpool.Pool
	codec  event.Codec
	logger logger.Logger

	eventsTableName string
	strict          bool
}

// NewLog creates a new Log instance using the provided connection pool
// and payload codec.
//
// The pool's lifecycle belongs to the caller: open it before first use,
// close it when the Log is no longer needed.
func NewLog(conn *pgxpool.Pool, codec event.Codec, opts ...Option[*Log]) *Log {
	log := &Log{
		conn:            conn,
		codec:           codec,
		eventsTableName: DefaultEventsTableName,
	}

	for _, opt := range opts {
		opt.apply(log)
	}

	return log
}

func (l *Log) storageError(op string, err error) error {
	return fmt.Errorf("postgres.Log: failed to %s, %w", op, event.StorageError{Op: op, Err: err})
}

// Append implements the event.Appender interface.
//
// The Event payload is serialized before touching the database: a
// serialization failure performs no write. A version conflict is reported
// through event.ConflictError; any other database failure through
// event.StorageError.
func (l *Log) Append(ctx context.Context, evt event.Event) error {
	if evt.Version == 0 {
		return fmt.Errorf("postgres.Log: failed to append event, %w", event.ErrInvalidVersion)
	}

	data, err := l.codec.Serialize(evt.Payload)
	if err != nil {
		return fmt.Errorf("postgres.Log: failed to append event, %w", event.SerializationError{
			EventType: evt.Type(),
			Err:       err,
		})
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (event_id, stream_type, stream_name, event_type, version, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.eventsTableName,
	)

	if l.strict {
		// The gap check runs in the same statement as the insert; the
		// unique index still arbitrates duplicate versions.
		query = fmt.Sprintf(
			`INSERT INTO %s (event_id, stream_type, stream_name, event_type, version, payload, occurred_at)
			SELECT $1, $2, $3, $4, $5, $6, $7
			WHERE $5::BIGINT = 1 OR EXISTS (
				SELECT 1 FROM %s
				WHERE stream_type = $2 AND stream_name = $3 AND version = $5::BIGINT - 1
			)`,
			l.eventsTableName, l.eventsTableName,
		)
	}

	tag, err := l.conn.Exec(
		ctx, query,
		evt.ID, evt.Stream.Type, evt.Stream.Name, evt.Type(),
		int64(evt.Version), data, evt.OccurredAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("postgres.Log: failed to append event, %w", event.ConflictError{
			Stream:  evt.Stream,
			Version: evt.Version,
		})
	}

	if err != nil {
		return l.storageError("append", err)
	}

	if tag.RowsAffected() == 0 {
		// Strict mode found no predecessor for version-1.
		return fmt.Errorf("postgres.Log: failed to append event, %w", event.ConflictError{
			Stream:  evt.Stream,
			Version: evt.Version,
		})
	}

	logger.Debug(l.logger, "event appended",
		logger.With("stream.type", evt.Stream.Type),
		logger.With("stream.name", evt.Stream.Name),
		logger.With("event.type", evt.Type()),
		logger.With("event.version", evt.Version),
	)

	return nil
}

// Load implements the event.Loader interface.
//
// A single query gives a consistent point-in-time snapshot of the stream,
// ordered by version ascending.
func (l *Log) Load(ctx context.Context, id event.StreamID) ([]event.Event, error) {
	query := fmt.Sprintf(
		`SELECT event_id, event_type, version, payload, occurred_at
		FROM %s
		WHERE stream_type = $1 AND stream_name = $2
		ORDER BY version`,
		l.eventsTableName,
	)

	rows, err := l.conn.Query(ctx, query, id.Type, id.Name)
	if err != nil {
		return nil, l.storageError("load", err)
	}
	defer rows.Close()

	events := make([]event.Event, 0)

	for rows.Next() {
		var (
			eventID    uuid.UUID
			eventType  string
			rawVersion int64
			data       []byte
		)

		evt := event.Event{Stream: id}

		if err := rows.Scan(&eventID, &eventType, &rawVersion, &data, &evt.OccurredAt); err != nil {
			return nil, l.storageError("load", err)
		}

		payload, err := l.codec.Deserialize(eventType, data)
		if err != nil {
			return nil, fmt.Errorf("postgres.Log: failed to load events, %w", event.SerializationError{
				EventType: eventType,
				Err:       err,
			})
		}

		evt.ID = eventID
		evt.Version = version.Version(rawVersion)
		evt.Payload = payload

		events = append(events, evt)
	}

	if err := rows.Err(); err != nil {
		return nil, l.storageError("load", err)
	}

	return events, nil
}

// LatestVersion implements the event.Indexer interface.
func (l *Log) LatestVersion(ctx context.Context, id event.StreamID) (version.Version, error) {
	query := fmt.Sprintf(
		`SELECT COALESCE(MAX(version), 0) FROM %s WHERE stream_type = $1 AND stream_name = $2`,
		l.eventsTableName,
	)

	var latest int64
	if err := l.conn.QueryRow(ctx, query, id.Type, id.Name).Scan(&latest); err != nil {
		return 0, l.storageError("query latest version", err)
	}

	return version.Version(latest), nil
}

// Exists implements the event.Indexer interface.
func (l *Log) Exists(ctx context.Context, id event.StreamID) (bool, error) {
	latest, err := l.LatestVersion(ctx, id)
	if err != nil {
		return false, err
	}

	return latest > 0, nil
}

// StreamNames implements the event.Indexer interface.
func (l *Log) StreamNames(ctx context.Context, streamType string) ([]string, error) {
	query := fmt.Sprintf(
		`SELECT DISTINCT stream_name FROM %s WHERE stream_type = $1 ORDER BY stream_name`,
		l.eventsTableName,
	)

	rows, err := l.conn.Query(ctx, query, streamType)
	if err != nil {
		return nil, l.storageError("list stream names", err)
	}
	defer rows.Close()

	names := make([]string, 0)

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, l.storageError("list stream names", err)
		}

		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, l.storageError("list stream names", err)
	}

	return names, nil
}
