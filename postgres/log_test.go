package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/eventfold/go-eventfold/event"
	"github.com/eventfold/go-eventfold/internal"
	"github.com/eventfold/go-eventfold/logger"
	"github.com/eventfold/go-eventfold/postgres"
	pginternal "github.com/eventfold/go-eventfold/postgres/internal"
	"github.com/eventfold/go-eventfold/serde"
	"github.com/eventfold/go-eventfold/version"
)

func newCodec(t *testing.T) event.Codec {
	t.Helper()

	registry := event.NewRegistry()
	require.NoError(t, event.RegisterPayload(
		registry,
		func() internal.IntPayload { return internal.IntPayload(0) },
		serde.NewJSON(func() internal.IntPayload { return internal.IntPayload(0) }),
	))

	return registry
}

// connectionDSN returns the DSN of the database under test, either from
// the DATABASE_URL environment variable or by starting a throwaway
// Postgres container.
func connectionDSN(t *testing.T, ctx context.Context) string {
	t.Helper()

	if dsn, ok := os.LookupEnv("DATABASE_URL"); ok {
		return dsn
	}

	container, err := pginternal.NewPostgresContainer(ctx)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	return container.ConnectionDSN
}

func TestLog(t *testing.T) {
	if testing.Short() {
		t.SkipNow()
	}

	ctx := context.Background()
	dsn := connectionDSN(t, ctx)

	require.NoError(t, postgres.RunMigrations(dsn))

	conn, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	t.Cleanup(conn.Close)

	codec := newCodec(t)

	suite.Run(t, event.NewLogSuite(func() event.Log {
		return postgres.NewLog(conn, codec, postgres.WithLogger(logger.NewTest(t)))
	}))

	t.Run("strict versioning rejects gaps", func(t *testing.T) {
		log := postgres.NewLog(conn, codec, postgres.WithStrictVersioning())

		id := event.StreamID{Type: "strict-test", Name: "stream-1"}

		require.NoError(t, log.Append(ctx, event.New(id, 1, internal.IntPayload(1))))

		err := log.Append(ctx, event.New(id, 3, internal.IntPayload(3)))

		var conflictErr event.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, version.Version(3), conflictErr.Version)

		latest, err := log.LatestVersion(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, version.Version(1), latest)
	})

	t.Run("serialization failure performs no write", func(t *testing.T) {
		log := postgres.NewLog(conn, codec)

		id := event.StreamID{Type: "serde-test", Name: "stream-1"}

		err := log.Append(ctx, event.New(id, 1, internal.StringPayload("not registered")))

		var serdeErr event.SerializationError
		require.ErrorAs(t, err, &serdeErr)
		assert.Equal(t, "string_payload", serdeErr.EventType)

		exists, err := log.Exists(ctx, id)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("load surfaces payload decode failures", func(t *testing.T) {
		log := postgres.NewLog(conn, codec)

		id := event.StreamID{Type: "decode-test", Name: "stream-1"}

		// A raw payload named like a registered type routes its bytes to the
		// JSON deserializer on load, which fails on the malformed document.
		raw := event.RawPayload{EventType: "int_payload", Data: []byte(`{malformed`)}
		require.NoError(t, log.Append(ctx, event.New(id, 1, raw)))

		_, err := log.Load(ctx, id)

		var serdeErr event.SerializationError
		require.ErrorAs(t, err, &serdeErr)
		assert.Equal(t, "int_payload", serdeErr.EventType)
	})

	t.Run("unknown event types round-trip as raw payloads", func(t *testing.T) {
		log := postgres.NewLog(conn, codec)

		id := event.StreamID{Type: "raw-test", Name: "stream-1"}

		raw := event.RawPayload{
			EventType: "SomethingNewHappened",
			Data:      []byte(`{"some":"fields"}`),
		}

		require.NoError(t, log.Append(ctx, event.New(id, 1, raw)))

		events, err := log.Load(ctx, id)
		require.NoError(t, err)
		require.Len(t, events, 1)

		got, ok := events[0].Payload.(event.RawPayload)
		require.True(t, ok)
		assert.Equal(t, raw.EventType, got.EventType)
		assert.JSONEq(t, string(raw.Data), string(got.Data))
	})
}
