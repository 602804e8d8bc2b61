package serde_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/eventfold/go-eventfold/serde"
)

func TestChain(t *testing.T) {
	// First stage maps an int to its string representation,
	// second stage maps the string to JSON bytes.
	first := serde.Fuse[int, string](
		serde.SerializerFunc[int, string](func(src int) (string, error) {
			return strconv.Itoa(src), nil
		}),
		serde.DeserializerFunc[int, string](strconv.Atoi),
	)

	second := serde.NewJSON(func() string { return "" })

	chained := serde.Chain[int, string, []byte](first, second)

	data, err := chained.Serialize(42)
	require.NoError(t, err)
	assert.JSONEq(t, `"42"`, string(data))

	got, err := chained.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestNewProto(t *testing.T) {
	wrapperSerde := serde.Fuse[string, *wrapperspb.StringValue](
		serde.SerializerFunc[string, *wrapperspb.StringValue](func(src string) (*wrapperspb.StringValue, error) {
			return wrapperspb.String(src), nil
		}),
		serde.DeserializerFunc[string, *wrapperspb.StringValue](func(dst *wrapperspb.StringValue) (string, error) {
			return dst.GetValue(), nil
		}),
	)

	protoSerde := serde.NewProto[string, *wrapperspb.StringValue](
		wrapperSerde,
		func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} },
	)

	data, err := protoSerde.Serialize("hello")
	require.NoError(t, err)

	got, err := protoSerde.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestNewProtoJSON(t *testing.T) {
	wrapperSerde := serde.Fuse[string, *wrapperspb.StringValue](
		serde.SerializerFunc[string, *wrapperspb.StringValue](func(src string) (*wrapperspb.StringValue, error) {
			return wrapperspb.String(src), nil
		}),
		serde.DeserializerFunc[string, *wrapperspb.StringValue](func(dst *wrapperspb.StringValue) (string, error) {
			return dst.GetValue(), nil
		}),
	)

	protoJSONSerde := serde.NewProtoJSON[string, *wrapperspb.StringValue](
		wrapperSerde,
		func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} },
	)

	data, err := protoJSONSerde.Serialize("hello")
	require.NoError(t, err)
	assert.JSONEq(t, `"hello"`, string(data))

	got, err := protoJSONSerde.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}
