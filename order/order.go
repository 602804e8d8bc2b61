package order

import (
	"context"
	"fmt"

	"github.com/eventfold/go-eventfold/event"
	"github.com/eventfold/go-eventfold/version"
)

// Status represents the lifecycle state of an Order.
type Status string

// All the Order lifecycle states.
const (
	StatusNotCreated Status = "not_created"
	StatusCreated    Status = "created"
	StatusPaid       Status = "paid"
	StatusCancelled  Status = "cancelled"
)

// Item is a line item of an Order.
type Item struct {
	Quantity int
	Price    float64
}

// Order is the materialized state of an Order aggregate, reconstructed
// by replaying its Event Stream through Project.
//
// It is ephemeral: it has no lifetime of its own and is never persisted
// by this module.
type Order struct {
	ID         string
	CustomerID string
	Items      map[string]Item
	Status     Status

	// Version is the version of the last Event folded into this state,
	// or 0 if the Order has no Events.
	Version version.Version
}

// Project folds the ordered Event sequence into the current Order state.
//
// The fold is pure, deterministic and idempotent: the same ordered sequence
// always yields an identical Order, and repeated calls are side-effect free.
// It is the designed mechanism for reading current state, not a one-shot
// migration.
//
// Events with unrecognized payload kinds (e.g. event.RawPayload written by
// a newer application version) leave the domain fields untouched; the Order
// version still advances to their version, so that version tracking stays
// independent of payload recognition.
func Project(orderID string, events []event.Event) *Order {
	order := &Order{
		ID:     orderID,
		Items:  make(map[string]Item),
		Status: StatusNotCreated,
	}

	for _, evt := range events {
		order.apply(evt)
	}

	return order
}

// Get loads the Event Stream of the specified Order from the Log
// and returns its projected state.
//
// An Order with no Events projects to its zero state (version 0,
// status "not_created"): use Exists on the Log to tell the two apart
// when it matters.
func Get(ctx context.Context, log event.Loader, orderID string) (*Order, error) {
	events, err := log.Load(ctx, StreamID(orderID))
	if err != nil {
		return nil, fmt.Errorf("order.Get: failed to load events, %w", err)
	}

	return Project(orderID, events), nil
}

func (o *Order) apply(evt event.Event) {
	switch payload := evt.Payload.(type) {
	case Created:
		o.CustomerID = payload.CustomerID
		o.Status = StatusCreated
	case ItemAdded:
		o.Items[payload.ItemID] = Item{
			Quantity: payload.Quantity,
			Price:    payload.Price,
		}
	case ItemRemoved:
		delete(o.Items, payload.ItemID)
	case Paid:
		o.Status = StatusPaid
	case Cancelled:
		o.Status = StatusCancelled
	}

	o.Version = evt.Version
}

// Total returns the total value of the Order, summing quantity times price
// over all its line items.
func (o *Order) Total() float64 {
	var total float64

	for _, item := range o.Items {
		total += float64(item.Quantity) * item.Price
	}

	return total
}

// ItemCount returns the total quantity of all line items in the Order.
func (o *Order) ItemCount() int {
	var count int

	for _, item := range o.Items {
		count += item.Quantity
	}

	return count
}

// HasItem reports whether the Order contains the specified line item.
func (o *Order) HasItem(itemID string) bool {
	_, ok := o.Items[itemID]

	return ok
}

// Item returns the line item with the specified id, if present.
func (o *Order) Item(itemID string) (Item, bool) {
	item, ok := o.Items[itemID]

	return item, ok
}

// IsCreated reports whether the Order has been created but not yet
// paid or cancelled.
func (o *Order) IsCreated() bool { return o.Status == StatusCreated }

// IsPaid reports whether the Order has been paid.
func (o *Order) IsPaid() bool { return o.Status == StatusPaid }

// IsCancelled reports whether the Order has been cancelled.
func (o *Order) IsCancelled() bool { return o.Status == StatusCancelled }

// String returns a human-readable summary of the Order, for debugging.
func (o *Order) String() string {
	return fmt.Sprintf(
		"Order(id=%s, customer=%s, items=%d, total=%.2f, status=%s, version=%d)",
		o.ID, o.CustomerID, len(o.Items), o.Total(), o.Status, o.Version,
	)
}
