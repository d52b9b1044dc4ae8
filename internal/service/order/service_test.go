package order

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/metrics"
	"github.com/vladislavdragonenkov/commerce/internal/storage/memory"
)

type fixture struct {
	orders    domain.OrderStore
	lineItems interface {
		domain.LineItemLoader
		Add(ctx context.Context, item domain.LineItem) (int64, error)
	}
	adjustments interface {
		domain.AdjustmentLoader
		Add(ctx context.Context, adj domain.Adjustment) (int64, error)
	}
	addresses domain.AddressStore
	lookups   interface {
		domain.CustomerLoader
		domain.ShippingMethodLoader
		PutCustomer(domain.Customer)
		PutShippingMethod(domain.ShippingMethod)
	}
	methods  domain.PaymentMethodStore
	registry *prometheus.Registry
	service  *Service
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		orders:      memory.NewOrderStore(),
		lineItems:   memory.NewLineItemStore(),
		adjustments: memory.NewAdjustmentStore(),
		addresses:   memory.NewAddressStore(),
		lookups:     memory.NewLookupStore(),
		methods:     memory.NewPaymentMethodStore(),
		registry:    prometheus.NewRegistry(),
	}
	m := metrics.NewSaveMetricsWithRegisterer(f.registry)
	resolver := NewResolver(Loaders{
		LineItems:       f.lineItems,
		Adjustments:     f.adjustments,
		Addresses:       f.addresses,
		Customers:       f.lookups,
		PaymentMethods:  f.methods,
		ShippingMethods: f.lookups,
	}, m)
	opts = append([]Option{WithMetrics(m)}, opts...)
	f.service = NewService(f.orders, resolver, opts...)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewNumber(t *testing.T) {
	number := NewNumber()
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), number)
	assert.NotEqual(t, number, NewNumber())
}

func TestService_NewCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cart, err := f.service.NewCart(ctx, 11)
	require.NoError(t, err)
	require.NotNil(t, cart)

	assert.NotZero(t, cart.ID)
	assert.Len(t, cart.Number, 32)
	assert.Equal(t, "USD", cart.Currency)
	assert.Equal(t, int64(11), cart.CustomerID)
	assert.True(t, cart.IsCart())
	assert.False(t, cart.CreatedAt.IsZero())

	empty, err := cart.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestService_CreateRetriesOnNumberCollision(t *testing.T) {
	numbers := []string{"aaaa", "aaaa", "bbbb"}
	next := func() string {
		n := numbers[0]
		numbers = numbers[1:]
		return n
	}
	f := newFixture(t, WithNumberGenerator(next), WithDefaultCurrency("eur"))
	ctx := context.Background()

	first, err := f.service.NewCart(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "aaaa", first.Number)
	assert.Equal(t, "EUR", first.Currency)

	second, err := f.service.NewCart(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "bbbb", second.Number)
}

func TestService_CreateGivesUpAfterCollisions(t *testing.T) {
	f := newFixture(t, WithNumberGenerator(func() string { return "same" }))
	ctx := context.Background()

	_, err := f.service.NewCart(ctx, 0)
	require.NoError(t, err)

	_, err = f.service.NewCart(ctx, 0)
	assert.ErrorIs(t, err, ErrNumberExhausted)
}

func TestService_CreateExplicitNumberConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, domain.Order{Number: "fixed"})
	require.NoError(t, err)

	_, err = f.service.Create(ctx, domain.Order{Number: "fixed"})
	assert.ErrorIs(t, err, domain.ErrOrderNumberConflict)

	_, err = f.service.Create(ctx, domain.Order{ID: 5})
	assert.Error(t, err)
}

func TestService_GetByIDAndNumberMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	byID, err := f.service.GetByID(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, byID)

	byNumber, err := f.service.GetByNumber(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, byNumber)
}

func TestService_AggregateResolvesAssociations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.lookups.PutCustomer(domain.Customer{ID: 3, UserID: 9, Email: "ada@example.com"})
	f.lookups.PutShippingMethod(domain.ShippingMethod{ID: 4, Handle: "express", Name: "Express", Enabled: true})
	addressID, err := f.addresses.Insert(ctx, domain.Address{FirstName: "Ada", LastName: "Lovelace", CountryID: 1})
	require.NoError(t, err)
	methodID, err := f.methods.Insert(ctx, domain.PaymentMethod{Name: "Card", Class: "Dummy", PaymentType: domain.PaymentTypePurchase})
	require.NoError(t, err)

	created, err := f.service.Create(ctx, domain.Order{
		Number:               "abcdef0123456789",
		CustomerID:           3,
		ShippingAddressID:    addressID,
		BillingAddressID:     999,
		PaymentMethodID:      methodID,
		ShippingMethodHandle: "express",
		BaseShippingCost:     dec("5"),
		TotalPrice:           dec("27.5"),
	})
	require.NoError(t, err)

	_, err = f.lineItems.Add(ctx, domain.LineItem{OrderID: created.ID, Qty: 2, Price: dec("10"), Tax: dec("1.25")})
	require.NoError(t, err)
	_, err = f.lineItems.Add(ctx, domain.LineItem{OrderID: created.ID, Qty: 1, Price: dec("2.5"), SaleAmount: dec("-0.5")})
	require.NoError(t, err)
	_, err = f.adjustments.Add(ctx, domain.Adjustment{OrderID: created.ID, Type: domain.AdjustmentTypeTax, Amount: dec("1.25")})
	require.NoError(t, err)

	agg, err := f.service.GetByNumber(ctx, "abcdef0123456789")
	require.NoError(t, err)
	require.NotNil(t, agg)
	assert.Equal(t, "abcdef0", agg.String())

	qty, err := agg.TotalQty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, qty)

	subtotal, err := agg.ItemSubtotalWithSale(ctx)
	require.NoError(t, err)
	assert.True(t, dec("22").Equal(subtotal), subtotal.String())

	shipping, err := agg.TotalShippingCost(ctx)
	require.NoError(t, err)
	assert.True(t, dec("5").Equal(shipping))

	adjs, err := agg.Adjustments(ctx)
	require.NoError(t, err)
	assert.Len(t, adjs, 1)

	shippingAddress, err := agg.ShippingAddress(ctx)
	require.NoError(t, err)
	require.NotNil(t, shippingAddress)
	assert.Equal(t, "Ada Lovelace", shippingAddress.FullName())

	billing, err := agg.BillingAddress(ctx)
	require.NoError(t, err)
	assert.Nil(t, billing)

	guest, err := agg.IsGuest(ctx)
	require.NoError(t, err)
	assert.False(t, guest)

	shippingMethodID, err := agg.ShippingMethodID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), shippingMethodID)

	method, err := agg.PaymentMethod(ctx)
	require.NoError(t, err)
	require.NotNil(t, method)
	assert.Equal(t, "Card", method.Name)

	assert.False(t, agg.IsPaid())
	agg.TotalPaid = dec("27.499")
	assert.True(t, agg.IsPaid())
}

func TestService_UpdateHeader(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cart, err := f.service.NewCart(ctx, 1)
	require.NoError(t, err)

	cart.Email = "buyer@example.com"
	cart.TotalPaid = dec("12.345678")
	require.NoError(t, f.service.UpdateHeader(ctx, cart))

	reloaded, err := f.service.GetByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", reloaded.Email)
	assert.True(t, dec("12.3457").Equal(reloaded.TotalPaid))

	err = f.service.UpdateHeader(ctx, f.service.Aggregate(domain.Order{}))
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestService_RejectsNegativeAmounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for name, order := range map[string]domain.Order{
		"itemTotal":        {ItemTotal: dec("-1")},
		"totalPrice":       {TotalPrice: dec("-0.01")},
		"totalPaid":        {TotalPaid: dec("-5")},
		"baseDiscount":     {BaseDiscount: dec("-2")},
		"baseShippingCost": {BaseShippingCost: dec("-3.5")},
	} {
		_, err := f.service.Create(ctx, order)
		assert.ErrorIs(t, err, domain.ErrNegativeAmount, name)
		assert.ErrorContains(t, err, name)
	}

	cart, err := f.service.NewCart(ctx, 1)
	require.NoError(t, err)
	cart.TotalPaid = dec("-10")
	err = f.service.UpdateHeader(ctx, cart)
	assert.ErrorIs(t, err, domain.ErrNegativeAmount)

	reloaded, err := f.service.GetByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.TotalPaid.IsZero())
}

func TestService_DeleteByIDCleansChildren(t *testing.T) {
	items := memory.NewLineItemStore()
	f := newFixture(t, WithCleaners(items))
	ctx := context.Background()

	cart, err := f.service.NewCart(ctx, 0)
	require.NoError(t, err)
	_, err = items.Add(ctx, domain.LineItem{OrderID: cart.ID, Qty: 1, Price: dec("1")})
	require.NoError(t, err)

	deleted, err := f.service.DeleteByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	left, err := items.LoadAllForOrder(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	deleted, err = f.service.DeleteByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

type brokenCleaner struct{}

func (brokenCleaner) DeleteForOrder(context.Context, int64) error {
	return errors.New("cleanup failed")
}

func TestService_DeleteByIDStopsOnCleanerError(t *testing.T) {
	f := newFixture(t, WithCleaners(brokenCleaner{}))
	ctx := context.Background()

	cart, err := f.service.NewCart(ctx, 0)
	require.NoError(t, err)

	deleted, err := f.service.DeleteByID(ctx, cart.ID)
	require.Error(t, err)
	assert.False(t, deleted)

	still, err := f.service.GetByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)
}
