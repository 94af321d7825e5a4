package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
)

type fakeWriter struct {
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)

	return nil
}

func TestDispatchKeysByProduct(t *testing.T) {
	w := &fakeWriter{}
	frozen := order.FrozenDraft{OrderID: "o-9", Product: order.ProductSnapshot{ID: 42, Name: "Screwdriver set"}}

	require.NoError(t, NewDispatcher(w, "New order").Dispatch(context.Background(), frozen))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))
	assert.Equal(t, "o-9", string(w.msgs[0].Headers[0].Value))
	assert.Contains(t, string(w.msgs[0].Value), `"product":"Screwdriver set"`)
}

func TestNewWriter(t *testing.T) {
	w := NewWriter([]string{"kafka:9092"}, "storefront.orders")
	assert.Equal(t, "storefront.orders", w.Topic)
	assert.Equal(t, kafka.RequireOne, w.RequiredAcks)
}
