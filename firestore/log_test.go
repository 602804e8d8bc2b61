package firestore_test

import (
	"context"
	"testing"

	gcfirestore "cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/gcloud"

	"github.com/eventfold/go-eventfold/event"
	"github.com/eventfold/go-eventfold/firestore"
	"github.com/eventfold/go-eventfold/internal"
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

// newEmulatorClient starts a Firestore emulator through testcontainers
// and returns a client pointed at it.
func newEmulatorClient(t *testing.T, ctx context.Context) *gcfirestore.Client {
	t.Helper()

	container, err := gcloud.RunFirestore(
		ctx,
		"gcr.io/google.com/cloudsdktool/cloud-sdk:469.0.0-emulators",
		gcloud.WithProjectID("eventfold-test"),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	t.Setenv("FIRESTORE_EMULATOR_HOST", container.URI)

	client, err := gcfirestore.NewClient(ctx, "eventfold-test")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func TestLog(t *testing.T) {
	if testing.Short() {
		t.SkipNow()
	}

	ctx := context.Background()
	client := newEmulatorClient(t, ctx)
	codec := newCodec(t)

	suite.Run(t, event.NewLogSuite(func() event.Log {
		return firestore.Log{Client: client, Codec: codec}
	}))

	t.Run("serialization failure performs no write", func(t *testing.T) {
		log := firestore.Log{Client: client, Codec: codec}

		id := event.StreamID{Type: "serde-test", Name: "stream-1"}

		err := log.Append(ctx, event.New(id, 1, internal.StringPayload("not registered")))

		var serdeErr event.SerializationError
		require.ErrorAs(t, err, &serdeErr)
		assert.Equal(t, "string_payload", serdeErr.EventType)

		exists, err := log.Exists(ctx, id)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("strict versioning rejects gaps", func(t *testing.T) {
		log := firestore.Log{Client: client, Codec: codec, Strict: true}

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
}
