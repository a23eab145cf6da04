package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

func usd(amount int64) valueobject.Money {
	return valueobject.MustMoney(amount, valueobject.USD)
}

func TestOwnerValidate(t *testing.T) {
	t.Run("customer owner", func(t *testing.T) {
		o := CustomerOwner(uuid.New())
		assert.NoError(t, o.Validate())
		assert.False(t, o.IsGuest())
	})

	t.Run("guest owner", func(t *testing.T) {
		o := GuestOwner("sess-123")
		assert.NoError(t, o.Validate())
		assert.True(t, o.IsGuest())
	})

	t.Run("rejects empty owner", func(t *testing.T) {
		assert.Error(t, Owner{}.Validate())
	})

	t.Run("rejects dual identity", func(t *testing.T) {
		id := uuid.New()
		assert.Error(t, Owner{CustomerID: &id, SessionID: "sess"}.Validate())
	})
}

func TestCartAddItem(t *testing.T) {
	c, err := NewCart(GuestOwner("sess-1"))
	require.NoError(t, err)
	productID := uuid.New()

	t.Run("adds a new line with price snapshot", func(t *testing.T) {
		require.NoError(t, c.AddItem(productID, nil, 2, usd(1000)))
		require.Len(t, c.Items, 1)
		assert.Equal(t, int64(2), c.Items[0].Quantity)
		assert.Equal(t, int64(1000), c.Items[0].PriceAtAdd)
	})

	t.Run("merges quantity for the same line and keeps snapshot", func(t *testing.T) {
		require.NoError(t, c.AddItem(productID, nil, 1, usd(1200)))
		require.Len(t, c.Items, 1)
		assert.Equal(t, int64(3), c.Items[0].Quantity)
		assert.Equal(t, int64(1000), c.Items[0].PriceAtAdd)
	})

	t.Run("variant gets its own line", func(t *testing.T) {
		variantID := uuid.New()
		require.NoError(t, c.AddItem(productID, &variantID, 1, usd(1100)))
		assert.Len(t, c.Items, 2)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		assert.Error(t, c.AddItem(uuid.New(), nil, 0, usd(100)))
	})
}

func TestCartUpdateAndRemove(t *testing.T) {
	c, err := NewCart(GuestOwner("sess-1"))
	require.NoError(t, err)
	productID := uuid.New()
	require.NoError(t, c.AddItem(productID, nil, 1, usd(500)))

	require.NoError(t, c.UpdateItemQuantity(productID, nil, 5))
	assert.Equal(t, int64(5), c.Items[0].Quantity)

	assert.Error(t, c.UpdateItemQuantity(uuid.New(), nil, 1))
	assert.Error(t, c.UpdateItemQuantity(productID, nil, 0))

	require.NoError(t, c.RemoveItem(productID, nil))
	assert.True(t, c.IsEmpty())
	assert.Error(t, c.RemoveItem(productID, nil))
}

func TestCartSubtotal(t *testing.T) {
	c, err := NewCart(GuestOwner("sess-1"))
	require.NoError(t, err)
	require.NoError(t, c.AddItem(uuid.New(), nil, 2, usd(1000)))
	require.NoError(t, c.AddItem(uuid.New(), nil, 1, usd(250)))

	assert.Equal(t, int64(2250), c.Subtotal().Amount())
	assert.Equal(t, int64(3), c.ItemCount())
}

func TestCartDiscount(t *testing.T) {
	c, err := NewCart(CustomerOwner(uuid.New()))
	require.NoError(t, err)

	require.NoError(t, c.ApplyDiscount("WELCOME10", usd(1000)))
	assert.Equal(t, "WELCOME10", c.DiscountCode)
	assert.Equal(t, int64(1000), c.DiscountAmount)

	assert.Error(t, c.ApplyDiscount("", usd(1)))
	assert.Error(t, c.ApplyDiscount("NEG", usd(-1)))

	c.RemoveDiscount()
	assert.Empty(t, c.DiscountCode)
	assert.Zero(t, c.DiscountAmount)
}

func TestCartRefreshPrice(t *testing.T) {
	c, err := NewCart(GuestOwner("sess-1"))
	require.NoError(t, err)
	productID := uuid.New()
	require.NoError(t, c.AddItem(productID, nil, 2, usd(1000)))

	c.RefreshPrice(productID, nil, usd(1200))
	assert.Equal(t, int64(1200), c.Items[0].PriceAtAdd)
	assert.Equal(t, int64(2), c.Items[0].Quantity)
}

func TestCartMergeFrom(t *testing.T) {
	customerID := uuid.New()
	shared := uuid.New()

	user, err := NewCart(CustomerOwner(customerID))
	require.NoError(t, err)
	require.NoError(t, user.AddItem(shared, nil, 1, usd(1000)))

	guest, err := NewCart(GuestOwner("sess-9"))
	require.NoError(t, err)
	require.NoError(t, guest.AddItem(shared, nil, 2, usd(1100)))
	require.NoError(t, guest.AddItem(uuid.New(), nil, 1, usd(300)))

	user.MergeFrom(guest)

	require.Len(t, user.Items, 2)
	assert.Equal(t, int64(3), user.Items[0].Quantity)
	// The receiving cart's snapshot wins for merged lines
	assert.Equal(t, int64(1000), user.Items[0].PriceAtAdd)
	assert.True(t, guest.IsEmpty())
}

func TestCartAssignToCustomer(t *testing.T) {
	c, err := NewCart(GuestOwner("sess-1"))
	require.NoError(t, err)
	customerID := uuid.New()

	require.NoError(t, c.AssignToCustomer(customerID))
	assert.Equal(t, &customerID, c.CustomerID)
	assert.Empty(t, c.SessionID)
	assert.False(t, c.Owner().IsGuest())

	assert.Error(t, c.AssignToCustomer(uuid.New()))
}
