package event

import (
	"fmt"

	"github.com/eventfold/go-eventfold/serde"
)

// Codec translates Domain Event payloads to and from their raw persisted
// representation. Durable Log implementations are payload-agnostic and
// consume this interface; the event type name is persisted alongside the
// raw data and used to route deserialization.
type Codec interface {
	serde.BytesSerializer[Payload]

	// Deserialize maps the raw data of an Event with the specified
	// type name back into its concrete Payload type.
	Deserialize(eventType string, data []byte) (Payload, error)
}

// Registry is a Codec implementation routing payloads by their type name.
//
// Use RegisterPayload to add type information for each Domain Event kind.
// Deserializing an Event whose type has not been registered does not fail:
// it yields a RawPayload carrying the original type name and data, so that
// Logs can be read (and re-appended) by application versions that do not
// know every Event kind yet.
type Registry struct {
	serializers   map[string]func(Payload) ([]byte, error)
	deserializers map[string]func([]byte) (Payload, error)
}

// NewRegistry creates an empty payload Registry.
func NewRegistry() *Registry {
	return &Registry{
		serializers:   make(map[string]func(Payload) ([]byte, error)),
		deserializers: make(map[string]func([]byte) (Payload, error)),
	}
}

// RegisterPayload adds type information for the payload type returned by the
// provided factory, using the supplied serde for its raw representation.
//
// An error is returned if a different payload type has already been
// registered with the same name.
func RegisterPayload[T Payload](registry *Registry, factory func() T, payloadSerde serde.Bytes[T]) error {
	name := factory().Name()

	if _, ok := registry.deserializers[name]; ok {
		return fmt.Errorf("event.Registry: payload '%s' has already been registered", name)
	}

	registry.serializers[name] = func(payload Payload) ([]byte, error) {
		concrete, ok := payload.(T)
		if !ok {
			return nil, fmt.Errorf("event.Registry: unexpected payload type %T for '%s'", payload, name)
		}

		return payloadSerde.Serialize(concrete)
	}

	registry.deserializers[name] = func(data []byte) (Payload, error) {
		return payloadSerde.Deserialize(data)
	}

	return nil
}

// Serialize implements the Codec interface.
//
// RawPayload instances pass through untouched, preserving data written
// by applications with a wider payload vocabulary.
func (registry *Registry) Serialize(payload Payload) ([]byte, error) {
	if raw, ok := payload.(RawPayload); ok {
		return raw.Data, nil
	}

	serialize, ok := registry.serializers[payload.Name()]
	if !ok {
		return nil, fmt.Errorf("event.Registry: payload '%s' has not been registered", payload.Name())
	}

	return serialize(payload)
}

// Deserialize implements the Codec interface.
func (registry *Registry) Deserialize(eventType string, data []byte) (Payload, error) {
	deserialize, ok := registry.deserializers[eventType]
	if !ok {
		raw := RawPayload{
			EventType: eventType,
			Data:      make([]byte, len(data)),
		}
		copy(raw.Data, data)

		return raw, nil
	}

	return deserialize(data)
}
