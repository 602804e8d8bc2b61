// Package order models the Order aggregate: its Domain Event kinds and
// the pure projection that folds an ordered Event sequence into the
// current Order state.
package order

import (
	"github.com/eventfold/go-eventfold/event"
)

// StreamType is the Event Stream type of the Order aggregate.
const StreamType = "Order"

// StreamID returns the Event Stream identifier for the specified Order.
func StreamID(orderID string) event.StreamID {
	return event.StreamID{
		Type: StreamType,
		Name: orderID,
	}
}

// Interface implementation assertions for all the Order event kinds.
var (
	_ event.Payload = Created{}
	_ event.Payload = ItemAdded{}
	_ event.Payload = ItemRemoved{}
	_ event.Payload = Paid{}
	_ event.Payload = Cancelled{}
)

// Created is the domain event fired after an Order is created
// by a customer.
type Created struct {
	CustomerID string `json:"customer_id"`
}

// Name implements the event.Payload interface.
func (Created) Name() string { return "OrderCreated" }

// ItemAdded is the domain event fired after a line item is added to,
// or replaced in, an Order.
type ItemAdded struct {
	ItemID   string  `json:"item_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Name implements the event.Payload interface.
func (ItemAdded) Name() string { return "ItemAdded" }

// ItemRemoved is the domain event fired after a line item is removed
// from an Order.
type ItemRemoved struct {
	ItemID string `json:"item_id"`
}

// Name implements the event.Payload interface.
func (ItemRemoved) Name() string { return "ItemRemoved" }

// Paid is the domain event fired after an Order is paid.
type Paid struct {
	PaymentMethod string `json:"payment_method"`
}

// Name implements the event.Payload interface.
func (Paid) Name() string { return "OrderPaid" }

// Cancelled is the domain event fired after an Order is cancelled.
type Cancelled struct {
	Reason string `json:"reason"`
}

// Name implements the event.Payload interface.
func (Cancelled) Name() string { return "OrderCancelled" }
