package order_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventfold/go-eventfold/event"
	"github.com/eventfold/go-eventfold/order"
	"github.com/eventfold/go-eventfold/version"
)

func orderEvents(orderID string, payloads ...event.Payload) []event.Event {
	events := make([]event.Event, 0, len(payloads))

	for i, payload := range payloads {
		events = append(events, event.New(
			order.StreamID(orderID),
			version.Version(i+1),
			payload,
		))
	}

	return events
}

func TestProjectEmptyStream(t *testing.T) {
	projected := order.Project("order-001", nil)

	assert.Equal(t, "order-001", projected.ID)
	assert.Equal(t, order.StatusNotCreated, projected.Status)
	assert.Equal(t, version.Version(0), projected.Version)
	assert.Empty(t, projected.Items)
	assert.False(t, projected.IsCreated())
}

func TestProjectCreatedWithItems(t *testing.T) {
	events := orderEvents("order-001",
		order.Created{CustomerID: "customer-123"},
		order.ItemAdded{ItemID: "apple", Quantity: 3, Price: 1.50},
		order.ItemAdded{ItemID: "banana", Quantity: 2, Price: 0.75},
	)

	projected := order.Project("order-001", events)

	assert.Equal(t, "customer-123", projected.CustomerID)
	assert.Equal(t, order.StatusCreated, projected.Status)
	assert.Equal(t, version.Version(3), projected.Version)
	assert.InDelta(t, 6.00, projected.Total(), 1e-9)
	assert.Equal(t, 5, projected.ItemCount())

	assert.True(t, projected.HasItem("apple"))

	item, ok := projected.Item("banana")
	require.True(t, ok)
	assert.Equal(t, order.Item{Quantity: 2, Price: 0.75}, item)
}

func TestProjectIsDeterministic(t *testing.T) {
	events := orderEvents("order-001",
		order.Created{CustomerID: "customer-123"},
		order.ItemAdded{ItemID: "apple", Quantity: 3, Price: 1.50},
		order.Paid{PaymentMethod: "credit_card"},
	)

	first := order.Project("order-001", events)
	second := order.Project("order-001", events)

	assert.Equal(t, first, second)

	// Replaying is the designed read mechanism: a third run over the same
	// history must not drift.
	assert.Equal(t, first, order.Project("order-001", events))
}

func TestProjectPaid(t *testing.T) {
	events := orderEvents("order-001",
		order.Created{CustomerID: "customer-1"},
		order.Paid{PaymentMethod: "credit_card"},
	)

	projected := order.Project("order-001", events)

	assert.Equal(t, order.StatusPaid, projected.Status)
	assert.Equal(t, version.Version(2), projected.Version)
	assert.True(t, projected.IsPaid())
	assert.False(t, projected.IsCreated())
	assert.False(t, projected.IsCancelled())
}

func TestProjectCancelled(t *testing.T) {
	events := orderEvents("order-001",
		order.Created{CustomerID: "customer-1"},
		order.Cancelled{Reason: "out of stock"},
	)

	projected := order.Project("order-001", events)

	assert.Equal(t, order.StatusCancelled, projected.Status)
	assert.True(t, projected.IsCancelled())
}

func TestProjectItemRemoved(t *testing.T) {
	events := orderEvents("order-001",
		order.Created{CustomerID: "customer-1"},
		order.ItemAdded{ItemID: "apple", Quantity: 3, Price: 1.50},
		order.ItemRemoved{ItemID: "apple"},
	)

	projected := order.Project("order-001", events)

	assert.False(t, projected.HasItem("apple"))
	assert.Zero(t, projected.Total())
	assert.Equal(t, version.Version(3), projected.Version)
}

// Removing an item that is not in the Order must not change any domain
// field, but the version still advances to the removal event's version.
func TestProjectItemRemovedIsNoOpWhenAbsent(t *testing.T) {
	events := orderEvents("order-001",
		order.Created{CustomerID: "customer-1"},
		order.ItemAdded{ItemID: "apple", Quantity: 3, Price: 1.50},
	)

	before := order.Project("order-001", events)

	withRemoval := append(events, event.New(
		order.StreamID("order-001"), 3,
		order.ItemRemoved{ItemID: "missing"},
	))

	after := order.Project("order-001", withRemoval)

	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.CustomerID, after.CustomerID)
	assert.Equal(t, version.Version(3), after.Version)
}

func TestProjectUnrecognizedEventAdvancesVersionOnly(t *testing.T) {
	events := orderEvents("order-001",
		order.Created{CustomerID: "customer-1"},
	)

	unknown := event.New(order.StreamID("order-001"), 2, event.RawPayload{
		EventType: "OrderShipped",
		Data:      []byte(`{"carrier":"acme"}`),
	})

	projected := order.Project("order-001", append(events, unknown))

	assert.Equal(t, order.StatusCreated, projected.Status)
	assert.Equal(t, "customer-1", projected.CustomerID)
	assert.Equal(t, version.Version(2), projected.Version)
}

func TestItemAddedUpsertsLineItem(t *testing.T) {
	events := orderEvents("order-001",
		order.Created{CustomerID: "customer-1"},
		order.ItemAdded{ItemID: "apple", Quantity: 3, Price: 1.50},
		order.ItemAdded{ItemID: "apple", Quantity: 1, Price: 2.00},
	)

	projected := order.Project("order-001", events)

	item, ok := projected.Item("apple")
	require.True(t, ok)
	assert.Equal(t, order.Item{Quantity: 1, Price: 2.00}, item)
	assert.Equal(t, 1, projected.ItemCount())
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	log := event.NewInMemoryLog()

	registry := event.NewRegistry()
	require.NoError(t, order.RegisterEvents(registry))

	id := order.StreamID("order-001")

	require.NoError(t, log.Append(ctx, event.New(id, 1, order.Created{CustomerID: "customer-1"})))
	require.NoError(t, log.Append(ctx, event.New(id, 2, order.ItemAdded{ItemID: "apple", Quantity: 3, Price: 1.50})))

	projected, err := order.Get(ctx, log, "order-001")
	require.NoError(t, err)

	assert.Equal(t, order.StatusCreated, projected.Status)
	assert.Equal(t, version.Version(2), projected.Version)
	assert.InDelta(t, 4.50, projected.Total(), 1e-9)
}
