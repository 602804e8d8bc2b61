// Package internal contains test fixtures shared by the module's test suites.
package internal

// IntPayload is an event payload used for testing purposes.
type IntPayload int

// Name implements the event.Payload interface.
func (IntPayload) Name() string { return "int_payload" }

// StringPayload is an event payload used for testing purposes.
type StringPayload string

// Name implements the event.Payload interface.
func (StringPayload) Name() string { return "string_payload" }
