package serde

import (
	"fmt"
)

// Chained is a two-stage Serde, mapping a Source type through an
// intermediate representation (e.g. a wire model) down to a Destination type.
type Chained[Src any, Mid any, Dst any] struct {
	first  Serde[Src, Mid]
	second Serde[Mid, Dst]
}

// Serialize implements the serde.Serializer interface.
func (s Chained[Src, Mid, Dst]) Serialize(src Src) (Dst, error) {
	var zeroValue Dst

	mid, err := s.first.Serialize(src)
	if err != nil {
		return zeroValue, fmt.Errorf("serde.Chained: first stage serializer failed, %w", err)
	}

	dst, err := s.second.Serialize(mid)
	if err != nil {
		return zeroValue, fmt.Errorf("serde.Chained: second stage serializer failed, %w", err)
	}

	return dst, nil
}

// Deserialize implements the serde.Deserializer interface.
func (s Chained[Src, Mid, Dst]) Deserialize(dst Dst) (Src, error) {
	var zeroValue Src

	mid, err := s.second.Deserialize(dst)
	if err != nil {
		return zeroValue, fmt.Errorf("serde.Chained: second stage deserializer failed, %w", err)
	}

	src, err := s.first.Deserialize(mid)
	if err != nil {
		return zeroValue, fmt.Errorf("serde.Chained: first stage deserializer failed, %w", err)
	}

	return src, nil
}

// Chain fuses two Serde instances with a compatible intermediate type
// into a single two-stage Serde.
func Chain[Src any, Mid any, Dst any](
	first Serde[Src, Mid],
	second Serde[Mid, Dst],
) Chained[Src, Mid, Dst] {
	return Chained[Src, Mid, Dst]{first: first, second: second}
}
