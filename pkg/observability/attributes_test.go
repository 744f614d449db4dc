package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func TestWithSessionAttrs(t *testing.T) {
	attrs := WithSessionAttrs("01J0SESSION", "")
	assert.Equal(t, []attribute.KeyValue{attribute.String(AttrSessionID, "01J0SESSION")}, attrs)

	attrs = WithSessionAttrs("01J0SESSION", "req-1")
	assert.Len(t, attrs, 2)
	assert.Equal(t, "req-1", attrs[1].Value.AsString())
}

func TestWithCheckoutAttrs(t *testing.T) {
	assert.Len(t, WithCheckoutAttrs("create_order", ""), 1)

	attrs := WithCheckoutAttrs("approve", "ORDER-1")
	assert.Equal(t, attribute.Key(AttrProviderOrderID), attrs[1].Key)
}

func TestWithOrderAttrs(t *testing.T) {
	attrs := WithOrderAttrs("01J0REF", 25)
	assert.Len(t, attrs, 2)
	assert.Equal(t, int64(25), attrs[1].Value.AsInt64())
	assert.Len(t, WithOrderAttrs("01J0REF", 0), 1)
}

func TestAddAttrsToSpan_NonRecordingIsNoop(t *testing.T) {
	span := trace.SpanFromContext(context.Background())
	AddAttrsToSpan(span, WithSessionAttrs("x", "y")...)
	AddAttrsToSpan(nil)
}
