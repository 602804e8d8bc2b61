package serde

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// NewProtoJSONSerializer uses the provided serializer to map the Source type
// to a Protobuf message, then marshals it to its canonical JSON encoding.
func NewProtoJSONSerializer[Src any, Dst proto.Message](
	serializer Serializer[Src, Dst],
) SerializerFunc[Src, []byte] {
	return func(src Src) ([]byte, error) {
		model, err := serializer.Serialize(src)
		if err != nil {
			return nil, fmt.Errorf("serde.ProtoJSON: failed to serialize through serializer, %w", err)
		}

		data, err := protojson.Marshal(model)
		if err != nil {
			return nil, fmt.Errorf("serde.ProtoJSON: failed to marshal serializer model, %w", err)
		}

		return data, nil
	}
}

// NewProtoJSONDeserializer unmarshals a canonical Protobuf JSON byte-array
// into a new message obtained from the factory, then uses the provided
// deserializer to map it back to the Source type.
func NewProtoJSONDeserializer[Src any, Dst proto.Message](
	deserializer Deserializer[Src, Dst],
	protoFactory func() Dst,
) DeserializerFunc[Src, []byte] {
	return func(data []byte) (Src, error) {
		var zeroValue Src

		model := protoFactory()
		if err := protojson.Unmarshal(data, model); err != nil {
			return zeroValue, fmt.Errorf("serde.ProtoJSON: failed to unmarshal deserializer model, %w", err)
		}

		src, err := deserializer.Deserialize(model)
		if err != nil {
			return zeroValue, fmt.Errorf("serde.ProtoJSON: failed to deserialize through deserializer, %w", err)
		}

		return src, nil
	}
}

// NewProtoJSON returns a serde instance mapping the Source type through
// its Protobuf message representation to canonical Protobuf JSON.
func NewProtoJSON[Src any, Dst proto.Message](
	serdes Serde[Src, Dst],
	protoFactory func() Dst,
) Fused[Src, []byte] {
	return Fused[Src, []byte]{
		Serializer:   NewProtoJSONSerializer[Src, Dst](serdes),
		Deserializer: NewProtoJSONDeserializer[Src, Dst](serdes, protoFactory),
	}
}
