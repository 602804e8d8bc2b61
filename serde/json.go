package serde

import (
	"encoding/json"
	"fmt"
)

// NewJSONSerializer returns a serializer encoding the value to its
// JSON representation.
func NewJSONSerializer[T any]() SerializerFunc[T, []byte] {
	return func(value T) ([]byte, error) {
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("serde.JSON: failed to encode value, %w", err)
		}

		return data, nil
	}
}

// NewJSONDeserializer returns a deserializer decoding JSON bytes into a
// fresh instance obtained from the factory.
//
// The factory supplies the decoding target, so types using pointer
// semantics can pre-allocate what json.Unmarshal expects.
func NewJSONDeserializer[T any](factory func() T) DeserializerFunc[T, []byte] {
	return func(data []byte) (T, error) {
		value := factory()

		if err := json.Unmarshal(data, &value); err != nil {
			var zeroValue T

			return zeroValue, fmt.Errorf("serde.JSON: failed to decode value, %w", err)
		}

		return value, nil
	}
}

// NewJSON returns a serde mapping the type to and from its
// JSON representation.
func NewJSON[T any](factory func() T) Fused[T, []byte] {
	return Fuse(
		NewJSONSerializer[T](),
		NewJSONDeserializer(factory),
	)
}
