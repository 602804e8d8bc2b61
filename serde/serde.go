// Package serde contains serialization and deserialization components,
// used to map Domain Event payloads to and from their persisted
// representations.
package serde

// Serializer is used to serialize a Source type into a Destination type.
type Serializer[Src any, Dst any] interface {
	Serialize(src Src) (Dst, error)
}

// SerializerFunc is a functional implementation of the Serializer interface.
type SerializerFunc[Src any, Dst any] func(src Src) (Dst, error)

// Serialize implements the serde.Serializer interface.
func (fn SerializerFunc[Src, Dst]) Serialize(src Src) (Dst, error) { return fn(src) }

// Deserializer is used to deserialize a Source type from a Destination type.
type Deserializer[Src any, Dst any] interface {
	Deserialize(dst Dst) (Src, error)
}

// DeserializerFunc is a functional implementation of the Deserializer interface.
type DeserializerFunc[Src any, Dst any] func(dst Dst) (Src, error)

// Deserialize implements the serde.Deserializer interface.
func (fn DeserializerFunc[Src, Dst]) Deserialize(dst Dst) (Src, error) { return fn(dst) }

// Serde is used to serialize and deserialize between a Source
// and a Destination type.
type Serde[Src any, Dst any] interface {
	Serializer[Src, Dst]
	Deserializer[Src, Dst]
}

// Fused provides a convenient way to fuse together different implementations
// of a Serializer and Deserializer, and use it as a Serde.
type Fused[Src any, Dst any] struct {
	Serializer[Src, Dst]
	Deserializer[Src, Dst]
}

// Fuse combines a Serializer and a Deserializer with compatible types
// and returns a Serde implementation through serde.Fused.
func Fuse[Src, Dst any](serializer Serializer[Src, Dst], deserializer Deserializer[Src, Dst]) Fused[Src, Dst] {
	return Fused[Src, Dst]{
		Serializer:   serializer,
		Deserializer: deserializer,
	}
}

// Byte-array specializations, the shape storage backends consume: persisted
// payloads are raw bytes regardless of the encoding that produced them.

// BytesSerializer serializes a Source type into raw bytes.
type BytesSerializer[Src any] interface {
	Serializer[Src, []byte]
}

// BytesDeserializer deserializes a Source type from raw bytes.
type BytesDeserializer[Src any] interface {
	Deserializer[Src, []byte]
}

// Bytes maps a Source type to and from raw bytes.
type Bytes[Src any] interface {
	Serde[Src, []byte]
}
