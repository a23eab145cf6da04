package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcart "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/application/settings"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

type fixture struct {
	cartRepo    *MockCartRepository
	productRepo *MockProductRepository
	orderRepo   *MockOrderRepository
	userRepo    *MockUserRepository
	ledger      *MockInventoryRepository
	gateway     *MockGateway
	svc         *Service
}

func newFixture(method payment.Method) *fixture {
	f := &fixture{
		cartRepo:    new(MockCartRepository),
		productRepo: new(MockProductRepository),
		orderRepo:   new(MockOrderRepository),
		userRepo:    new(MockUserRepository),
		ledger:      new(MockInventoryRepository),
		gateway:     &MockGateway{method: method},
	}
	policy := settings.StaticProvider{P: settings.StorePolicy{
		Currency:         valueobject.USD,
		ShippingMode:     settings.ShippingModeFlat,
		FlatShippingCost: 5000,
	}}
	validator := appcart.NewValidator(f.productRepo, f.ledger, f.cartRepo, zap.NewNop())
	f.svc = NewService(
		f.cartRepo, f.productRepo, f.orderRepo, f.userRepo, f.ledger,
		validator, staticRegistry{f.gateway}, policy, nopAudit{}, zap.NewNop(),
	)
	return f
}

func checkoutRequest(method payment.Method) Request {
	return Request{
		ShippingAddress: AddressRequest{
			Name: "Ada Lovelace", Line1: "12 Byron St", City: "London",
			PostalCode: "N1 2AB", Country: "GB",
		},
		PaymentMethod: method,
	}
}

// seed puts an active product of the given price and a cart holding qty of
// it into the fixture's repositories
func (f *fixture) seed(t *testing.T, customerID uuid.UUID, price, qty int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("SKU-1", "Plain Tee", valueobject.MustMoney(price, valueobject.USD))
	require.NoError(t, err)
	require.NoError(t, product.Publish())
	product.SetInventoryTracking(false)

	c, err := cart.NewCart(cart.CustomerOwner(customerID))
	require.NoError(t, err)
	require.NoError(t, c.AddItem(product.ID, nil, qty, valueobject.MustMoney(price, valueobject.USD)))

	f.cartRepo.On("FindByOwner", mock.Anything, cart.CustomerOwner(customerID)).Return(c, nil)
	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.productRepo.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{*product}, nil)
	f.userRepo.On("FindByID", mock.Anything, customerID).Return(nil, shared.ErrNotFound)
	return product
}

func TestCheckoutCOD(t *testing.T) {
	f := newFixture(payment.MethodCOD)
	customerID := uuid.New()
	product := f.seed(t, customerID, 1000, 2)

	f.ledger.On("Reserve", mock.Anything, product.ID, (*uuid.UUID)(nil), int64(2)).Return(nil)
	f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
	f.gateway.On("CreateIntent", mock.Anything, mock.Anything).
		Return(&payment.Intent{GatewayOrderRef: "cod-ref", Amount: 7000, Currency: "USD"}, nil)
	f.cartRepo.On("Save", mock.Anything, mock.AnythingOfType("*cart.Cart")).Return(nil)

	outcome, err := f.svc.Checkout(context.Background(), customerID, checkoutRequest(payment.MethodCOD))
	require.NoError(t, err)

	assert.False(t, outcome.RequiresPayment)
	assert.Equal(t, order.StatusPending, outcome.Order.Status)
	assert.Equal(t, order.PaymentStatusPending, outcome.Order.Payment.Status)
	assert.Equal(t, int64(7000), outcome.Order.Pricing.Total)
	require.Len(t, outcome.Order.Items, 1)
	assert.Equal(t, "Plain Tee", outcome.Order.Items[0].ProductName)

	// COD clears the cart immediately
	f.cartRepo.AssertCalled(t, "Save", mock.Anything, mock.MatchedBy(func(c *cart.Cart) bool {
		return c.IsEmpty()
	}))
	f.ledger.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutHostedGateway(t *testing.T) {
	f := newFixture(payment.MethodRazorpay)
	customerID := uuid.New()
	product := f.seed(t, customerID, 1000, 1)

	f.ledger.On("Reserve", mock.Anything, product.ID, (*uuid.UUID)(nil), int64(1)).Return(nil)
	f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
	f.gateway.On("CreateIntent", mock.Anything, mock.Anything).
		Return(&payment.Intent{
			GatewayOrderRef: "order_rzp_1",
			Amount:          6000,
			Currency:        "USD",
			ClientData:      map[string]string{"key": "rzp_test", "gateway_order_id": "order_rzp_1"},
		}, nil)

	outcome, err := f.svc.Checkout(context.Background(), customerID, checkoutRequest(payment.MethodRazorpay))
	require.NoError(t, err)

	assert.True(t, outcome.RequiresPayment)
	assert.Equal(t, "order_rzp_1", outcome.Order.Payment.GatewayOrderRef)
	assert.Equal(t, "rzp_test", outcome.GatewayData["key"])

	// The cart is not cleared until verify succeeds
	f.cartRepo.AssertNotCalled(t, "Save", mock.Anything, mock.MatchedBy(func(c *cart.Cart) bool {
		return c.IsEmpty()
	}))
}

func TestCheckoutOutOfStockCompensates(t *testing.T) {
	f := newFixture(payment.MethodCOD)
	customerID := uuid.New()

	first, err := catalog.NewProduct("SKU-1", "Tee", valueobject.MustMoney(1000, valueobject.USD))
	require.NoError(t, err)
	require.NoError(t, first.Publish())
	first.SetInventoryTracking(false)
	second, err := catalog.NewProduct("SKU-2", "Mug", valueobject.MustMoney(500, valueobject.USD))
	require.NoError(t, err)
	require.NoError(t, second.Publish())
	second.SetInventoryTracking(false)

	c, err := cart.NewCart(cart.CustomerOwner(customerID))
	require.NoError(t, err)
	require.NoError(t, c.AddItem(first.ID, nil, 2, valueobject.MustMoney(1000, valueobject.USD)))
	require.NoError(t, c.AddItem(second.ID, nil, 1, valueobject.MustMoney(500, valueobject.USD)))

	f.cartRepo.On("FindByOwner", mock.Anything, cart.CustomerOwner(customerID)).Return(c, nil)
	f.productRepo.On("FindByID", mock.Anything, first.ID).Return(first, nil)
	f.productRepo.On("FindByID", mock.Anything, second.ID).Return(second, nil)
	f.productRepo.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{*first, *second}, nil)

	f.ledger.On("Reserve", mock.Anything, first.ID, (*uuid.UUID)(nil), int64(2)).Return(nil)
	f.ledger.On("Reserve", mock.Anything, second.ID, (*uuid.UUID)(nil), int64(1)).Return(shared.ErrOutOfStock)
	f.ledger.On("Release", mock.Anything, first.ID, (*uuid.UUID)(nil), int64(2)).Return(nil)

	_, err = f.svc.Checkout(context.Background(), customerID, checkoutRequest(payment.MethodCOD))
	assert.ErrorIs(t, err, shared.ErrOutOfStock)

	// The successful reservation was rolled back; no order was created
	f.ledger.AssertCalled(t, "Release", mock.Anything, first.ID, (*uuid.UUID)(nil), int64(2))
	f.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCheckoutGatewayFailureCompensates(t *testing.T) {
	f := newFixture(payment.MethodRazorpay)
	customerID := uuid.New()
	product := f.seed(t, customerID, 1000, 1)

	f.ledger.On("Reserve", mock.Anything, product.ID, (*uuid.UUID)(nil), int64(1)).Return(nil)
	f.ledger.On("Release", mock.Anything, product.ID, (*uuid.UUID)(nil), int64(1)).Return(nil)
	f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
	f.gateway.On("CreateIntent", mock.Anything, mock.Anything).Return(nil, payment.ErrGatewayUnavailable)

	_, err := f.svc.Checkout(context.Background(), customerID, checkoutRequest(payment.MethodRazorpay))
	assert.ErrorIs(t, err, shared.ErrGatewayUnavailable)

	f.ledger.AssertCalled(t, "Release", mock.Anything, product.ID, (*uuid.UUID)(nil), int64(1))
}

func TestCheckoutRefSaveFailureCancelsThenReleases(t *testing.T) {
	f := newFixture(payment.MethodRazorpay)
	customerID := uuid.New()
	product := f.seed(t, customerID, 1000, 3)

	f.ledger.On("Reserve", mock.Anything, product.ID, (*uuid.UUID)(nil), int64(3)).Return(nil)
	f.ledger.On("Release", mock.Anything, product.ID, (*uuid.UUID)(nil), int64(3)).Return(nil)
	f.gateway.On("CreateIntent", mock.Anything, mock.Anything).
		Return(&payment.Intent{GatewayOrderRef: "order_rzp_2", Amount: 8000, Currency: "USD"}, nil)

	// Initial save succeeds, persisting the gateway ref fails, the
	// cancellation save succeeds
	var cancelled *order.Order
	f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once()
	f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).
		Return(shared.NewDomainError("DB_ERROR", "write failed")).Once()
	f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).
		Run(func(args mock.Arguments) { cancelled = args.Get(1).(*order.Order) }).
		Return(nil).Once()

	_, err := f.svc.Checkout(context.Background(), customerID, checkoutRequest(payment.MethodRazorpay))
	require.Error(t, err)

	// The order was cancelled so the reaper will never pick it up, and
	// the reserved stock came back exactly once
	require.NotNil(t, cancelled)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)
	f.ledger.AssertNumberOfCalls(t, "Release", 1)
}

func TestCheckoutRefSaveFailureDefersReleaseToReaper(t *testing.T) {
	f := newFixture(payment.MethodRazorpay)
	customerID := uuid.New()
	product := f.seed(t, customerID, 1000, 2)

	f.ledger.On("Reserve", mock.Anything, product.ID, (*uuid.UUID)(nil), int64(2)).Return(nil)
	f.gateway.On("CreateIntent", mock.Anything, mock.Anything).
		Return(&payment.Intent{GatewayOrderRef: "order_rzp_3", Amount: 7000, Currency: "USD"}, nil)

	// Only the initial save succeeds; both the ref save and the
	// cancellation save fail
	f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once()
	f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).
		Return(shared.NewDomainError("DB_ERROR", "write failed")).Twice()

	_, err := f.svc.Checkout(context.Background(), customerID, checkoutRequest(payment.MethodRazorpay))
	require.Error(t, err)

	// The order row still reads pending, so the stock stays reserved for
	// the reaper to cancel and release; an immediate release here would
	// return the same units twice
	f.ledger.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutInvalidCart(t *testing.T) {
	f := newFixture(payment.MethodCOD)
	customerID := uuid.New()

	// Cart holds a stale price; current catalog price differs
	product, err := catalog.NewProduct("SKU-1", "Tee", valueobject.MustMoney(1200, valueobject.USD))
	require.NoError(t, err)
	require.NoError(t, product.Publish())
	product.SetInventoryTracking(false)

	c, err := cart.NewCart(cart.CustomerOwner(customerID))
	require.NoError(t, err)
	require.NoError(t, c.AddItem(product.ID, nil, 1, valueobject.MustMoney(1000, valueobject.USD)))

	f.cartRepo.On("FindByOwner", mock.Anything, cart.CustomerOwner(customerID)).Return(c, nil)
	f.cartRepo.On("Save", mock.Anything, c).Return(nil)
	f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	_, err = f.svc.Checkout(context.Background(), customerID, checkoutRequest(payment.MethodCOD))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrCartInvalid)

	var invalid *CartInvalidError
	require.ErrorAs(t, err, &invalid)
	require.Len(t, invalid.Result.PriceChanges, 1)

	f.ledger.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(payment.MethodCOD)
	customerID := uuid.New()
	c, err := cart.NewCart(cart.CustomerOwner(customerID))
	require.NoError(t, err)
	f.cartRepo.On("FindByOwner", mock.Anything, cart.CustomerOwner(customerID)).Return(c, nil)

	_, err = f.svc.Checkout(context.Background(), customerID, checkoutRequest(payment.MethodCOD))
	assert.Error(t, err)
}

func TestCheckoutUnknownMethod(t *testing.T) {
	f := newFixture(payment.MethodCOD)
	_, err := f.svc.Checkout(context.Background(), uuid.New(), checkoutRequest(payment.Method("wire")))
	assert.ErrorIs(t, err, payment.ErrUnsupportedMethod)
}
