package order

import (
	"fmt"

	"github.com/eventfold/go-eventfold/event"
	"github.com/eventfold/go-eventfold/serde"
)

// RegisterEvents adds all the Order event kinds to the provided Registry,
// using their JSON representation for persistence.
func RegisterEvents(registry *event.Registry) error {
	wrapErr := func(err error) error {
		return fmt.Errorf("order.RegisterEvents: failed to register payload, %w", err)
	}

	if err := event.RegisterPayload(registry,
		func() Created { return Created{} },
		serde.NewJSON(func() Created { return Created{} }),
	); err != nil {
		return wrapErr(err)
	}

	if err := event.RegisterPayload(registry,
		func() ItemAdded { return ItemAdded{} },
		serde.NewJSON(func() ItemAdded { return ItemAdded{} }),
	); err != nil {
		return wrapErr(err)
	}

	if err := event.RegisterPayload(registry,
		func() ItemRemoved { return ItemRemoved{} },
		serde.NewJSON(func() ItemRemoved { return ItemRemoved{} }),
	); err != nil {
		return wrapErr(err)
	}

	if err := event.RegisterPayload(registry,
		func() Paid { return Paid{} },
		serde.NewJSON(func() Paid { return Paid{} }),
	); err != nil {
		return wrapErr(err)
	}

	if err := event.RegisterPayload(registry,
		func() Cancelled { return Cancelled{} },
		serde.NewJSON(func() Cancelled { return Cancelled{} }),
	); err != nil {
		return wrapErr(err)
	}

	return nil
}
