package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewTracerProviderDisabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestStartSpanReturnsUsableSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "checkout.place_order",
		Attr("order_number", "ORD-1"),
		Attr("amount", int64(4300)),
	)
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	RecordError(span, errors.New("gateway unavailable"))
	RecordError(span, nil)
	span.End()
}

func TestAttrCoversCommonTypes(t *testing.T) {
	assert.Equal(t, "order_number", string(Attr("order_number", "ORD-1").Key))
	assert.Equal(t, int64(7), Attr("count", 7).Value.AsInt64())
	assert.Equal(t, int64(42), Attr("quantity", int64(42)).Value.AsInt64())
	assert.True(t, Attr("tracked", true).Value.AsBool())
	assert.Equal(t, 0.25, Attr("ratio", 0.25).Value.AsFloat64())
	assert.Equal(t, "map[]", Attr("other", map[string]string{}).Value.AsString())
}
