package order

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/metrics"
	"github.com/vladislavdragonenkov/commerce/internal/storage/memory"
)

type erroringCustomers struct{ err error }

func (e erroringCustomers) CustomerByID(context.Context, int64) (domain.Customer, error) {
	return domain.Customer{}, e.err
}

func associationCount(t *testing.T, reg *prometheus.Registry, association, result string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "commerce_order_association_loads_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["association"] == association && labels["result"] == result {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestResolver_MissesAreNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	lookups := memory.NewLookupStore()
	resolver := NewResolver(Loaders{
		Addresses:       memory.NewAddressStore(),
		Customers:       lookups,
		PaymentMethods:  memory.NewPaymentMethodStore(),
		ShippingMethods: lookups,
		LineItems:       memory.NewLineItemStore(),
	}, metrics.NewSaveMetricsWithRegisterer(reg))
	ctx := context.Background()

	address, err := resolver.Address(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, address)

	customer, err := resolver.Customer(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, customer)

	method, err := resolver.PaymentMethod(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, method)

	shipping, err := resolver.ShippingMethod(ctx, "ground")
	require.NoError(t, err)
	assert.Nil(t, shipping)

	items, err := resolver.LineItems(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)

	adjs, err := resolver.Adjustments(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, adjs)

	assert.Equal(t, float64(1), associationCount(t, reg, "address", "miss"))
	assert.Equal(t, float64(1), associationCount(t, reg, "lineItems", "miss"))
}

func TestResolver_PropagatesStoreErrors(t *testing.T) {
	storeErr := errors.New("connection reset")
	resolver := NewResolver(Loaders{Customers: erroringCustomers{err: storeErr}}, nil)

	customer, err := resolver.Customer(context.Background(), 1)
	assert.Nil(t, customer)
	assert.ErrorIs(t, err, storeErr)
}

func TestResolver_RecordsHits(t *testing.T) {
	reg := prometheus.NewRegistry()
	lookups := memory.NewLookupStore()
	lookups.PutCustomer(domain.Customer{ID: 2})
	resolver := NewResolver(Loaders{Customers: lookups}, metrics.NewSaveMetricsWithRegisterer(reg))

	customer, err := resolver.Customer(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.False(t, customer.Registered())

	assert.Equal(t, float64(1), associationCount(t, reg, "customer", "hit"))
}
