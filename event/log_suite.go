package event

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"github.com/eventfold/go-eventfold/internal"
	"github.com/eventfold/go-eventfold/version"
)

// LogSuite is a conformance testing suite for event.Log implementations.
//
// Stream types and names are randomized in each test, so the suite can run
// against shared durable backends without cross-test interference.
type LogSuite struct {
	suite.Suite

	logFactory func() Log
	log        Log // NOTE: this instance is initialized in SetupTest.
}

// NewLogSuite creates a new Log testing suite using the provided
// event.Log factory.
func NewLogSuite(factory func() Log) *LogSuite {
	ls := new(LogSuite)
	ls.logFactory = factory

	return ls
}

// SetupTest initializes a fresh Log handle for each test in the suite.
func (ls *LogSuite) SetupTest() {
	ls.log = ls.logFactory()
}

func randomStreamID() StreamID {
	return StreamID{
		Type: "test-type-" + uuid.NewString(),
		Name: uuid.NewString(),
	}
}

// TestEmptyStream asserts the Log behavior for streams with no Events:
// zero latest version, negative existence and an empty Load result.
func (ls *LogSuite) TestEmptyStream() {
	t := ls.T()
	ctx := context.Background()

	id := randomStreamID()

	latest, err := ls.log.LatestVersion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, version.Version(0), latest)

	exists, err := ls.log.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)

	events, err := ls.log.Load(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, events)
}

// TestAppendAndLoad asserts round-trip fidelity of appended Events,
// and that Load returns them ordered by version ascending.
func (ls *LogSuite) TestAppendAndLoad() {
	t := ls.T()
	ctx := context.Background()

	id := randomStreamID()

	expected := []Event{
		New(id, 1, internal.IntPayload(1)),
		New(id, 2, internal.IntPayload(2)),
		New(id, 3, internal.IntPayload(3)),
	}

	for _, evt := range expected {
		require.NoError(t, ls.log.Append(ctx, evt))
	}

	events, err := ls.log.Load(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, len(expected))

	for i, evt := range events {
		assert.Equal(t, expected[i].ID, evt.ID)
		assert.Equal(t, expected[i].Stream, evt.Stream)
		assert.Equal(t, expected[i].Version, evt.Version)
		assert.Equal(t, expected[i].Payload, evt.Payload)

		// Durable backends may truncate the timestamp to their native
		// precision, so compare within a small tolerance.
		assert.WithinDuration(t, expected[i].OccurredAt, evt.OccurredAt, time.Millisecond)
	}

	latest, err := ls.log.LatestVersion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, version.Version(3), latest)

	exists, err := ls.log.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)
}

// TestRejectsZeroVersion asserts that version 0, reserved for empty
// streams, is rejected on append with ErrInvalidVersion and no write.
func (ls *LogSuite) TestRejectsZeroVersion() {
	t := ls.T()
	ctx := context.Background()

	id := randomStreamID()

	err := ls.log.Append(ctx, New(id, 0, internal.IntPayload(1)))
	require.ErrorIs(t, err, ErrInvalidVersion)

	exists, err := ls.log.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestConflict asserts that appending a second Event at an occupied
// version fails with a ConflictError and performs no write.
func (ls *LogSuite) TestConflict() {
	t := ls.T()
	ctx := context.Background()

	id := randomStreamID()

	require.NoError(t, ls.log.Append(ctx, New(id, 1, internal.IntPayload(1))))

	err := ls.log.Append(ctx, New(id, 1, internal.IntPayload(2)))
	require.Error(t, err)

	var conflictErr ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, id, conflictErr.Stream)
	assert.Equal(t, version.Version(1), conflictErr.Version)

	events, err := ls.log.Load(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, internal.IntPayload(1), events[0].Payload)
}

// TestConcurrentAppend races two writers on the same stream version:
// exactly one append must win, and the log must contain exactly one
// Event at that version afterward.
func (ls *LogSuite) TestConcurrentAppend() {
	t := ls.T()
	ctx := context.Background()

	id := randomStreamID()

	require.NoError(t, ls.log.Append(ctx, New(id, 1, internal.IntPayload(1))))

	results := make([]error, 2)
	group, groupCtx := errgroup.WithContext(ctx)

	for i := range results {
		group.Go(func() error {
			results[i] = ls.log.Append(groupCtx, New(id, 2, internal.IntPayload(i)))

			return nil
		})
	}

	require.NoError(t, group.Wait())

	var conflicts, successes int

	for _, err := range results {
		var conflictErr ConflictError

		switch {
		case err == nil:
			successes++
		case errors.As(err, &conflictErr):
			conflicts++
		default:
			t.Fatalf("unexpected append error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	events, err := ls.log.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	latest, err := ls.log.LatestVersion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, version.Version(2), latest)
}

// TestStreamNames asserts that stream enumeration returns distinct names,
// sorted lexicographically, scoped to the requested stream type.
func (ls *LogSuite) TestStreamNames() {
	t := ls.T()
	ctx := context.Background()

	streamType := "test-type-" + uuid.NewString()
	otherType := "test-type-" + uuid.NewString()

	first := StreamID{Type: streamType, Name: "b-" + uuid.NewString()}
	second := StreamID{Type: streamType, Name: "a-" + uuid.NewString()}
	third := StreamID{Type: otherType, Name: uuid.NewString()}

	require.NoError(t, ls.log.Append(ctx, New(first, 1, internal.IntPayload(1))))
	require.NoError(t, ls.log.Append(ctx, New(first, 2, internal.IntPayload(2))))
	require.NoError(t, ls.log.Append(ctx, New(second, 1, internal.IntPayload(1))))
	require.NoError(t, ls.log.Append(ctx, New(third, 1, internal.IntPayload(1))))

	names, err := ls.log.StreamNames(ctx, streamType)
	require.NoError(t, err)

	// Insertion order was b-first, a-second: enumeration must be sorted.
	assert.Equal(t, []string{second.Name, first.Name}, names)
}
