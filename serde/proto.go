package serde

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// NewProtoSerializer uses the provided serializer to map the Source type
// to a Protobuf message, then marshals it to the Protobuf wire format.
func NewProtoSerializer[Src any, Dst proto.Message](
	serializer Serializer[Src, Dst],
) SerializerFunc[Src, []byte] {
	return func(src Src) ([]byte, error) {
		model, err := serializer.Serialize(src)
		if err != nil {
			return nil, fmt.Errorf("serde.Proto: failed to serialize through serializer, %w", err)
		}

		data, err := proto.Marshal(model)
		if err != nil {
			return nil, fmt.Errorf("serde.Proto: failed to marshal serializer model, %w", err)
		}

		return data, nil
	}
}

// NewProtoDeserializer unmarshals a Protobuf wire-format byte-array into
// a new message obtained from the factory, then uses the provided
// deserializer to map it back to the Source type.
func NewProtoDeserializer[Src any, Dst proto.Message](
	deserializer Deserializer[Src, Dst],
	protoFactory func() Dst,
) DeserializerFunc[Src, []byte] {
	return func(data []byte) (Src, error) {
		var zeroValue Src

		model := protoFactory()
		if err := proto.Unmarshal(data, model); err != nil {
			return zeroValue, fmt.Errorf("serde.Proto: failed to unmarshal deserializer model, %w", err)
		}

		src, err := deserializer.Deserialize(model)
		if err != nil {
			return zeroValue, fmt.Errorf("serde.Proto: failed to deserialize through deserializer, %w", err)
		}

		return src, nil
	}
}

// NewProto returns a serde instance mapping the Source type through
// its Protobuf message representation to the Protobuf wire format.
func NewProto[Src any, Dst proto.Message](
	serdes Serde[Src, Dst],
	protoFactory func() Dst,
) Fused[Src, []byte] {
	return Fused[Src, []byte]{
		Serializer:   NewProtoSerializer[Src, Dst](serdes),
		Deserializer: NewProtoDeserializer[Src, Dst](serdes, protoFactory),
	}
}
