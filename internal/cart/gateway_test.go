package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncGateway_FetchCart(t *testing.T) {
	b := &mockBackend{items: []domain.CartLineItem{line("p1", "10.00", 2)}}
	gw := NewSyncGateway(b)

	c, err := gw.FetchCart(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "20.00", c.TotalAmount.StringFixed(2))
}

func TestSyncGateway_WrapsErrors(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	b := &mockBackend{err: cause}
	gw := NewSyncGateway(b)

	_, fetchErr := gw.FetchCart(context.Background())
	removeErr := gw.RemoveItem(context.Background(), "p1")
	addErr := gw.AddItem(context.Background(), "p1", 1)

	for _, err := range []error{fetchErr, removeErr, addErr} {
		var syncErr *domain.SyncError
		require.ErrorAs(t, err, &syncErr)
		assert.ErrorIs(t, err, cause)
	}
	assert.Equal(t, "p1", b.removedID)
}

func TestSyncGateway_AddItem(t *testing.T) {
	b := &mockBackend{}
	gw := NewSyncGateway(b)

	require.NoError(t, gw.AddItem(context.Background(), "p7", 3))

	assert.Equal(t, "p7", b.addedID)
	assert.Equal(t, 3, b.addedQty)
}
