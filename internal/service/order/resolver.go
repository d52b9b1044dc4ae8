package order

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/metrics"
)

// Loaders — источники связанных с заказом сущностей.
type Loaders struct {
	LineItems       domain.LineItemLoader
	Adjustments     domain.AdjustmentLoader
	Addresses       domain.AddressStore
	Customers       domain.CustomerLoader
	PaymentMethods  domain.PaymentMethodStore
	ShippingMethods domain.ShippingMethodLoader
}

// Resolver реализует domain.AssociationResolver поверх хранилищ.
// Отсутствующая запись превращается в nil, остальные ошибки возвращаются как есть.
type Resolver struct {
	loaders Loaders
	metrics *metrics.SaveMetrics
}

// NewResolver создаёт Resolver. m может быть nil.
func NewResolver(loaders Loaders, m *metrics.SaveMetrics) *Resolver {
	return &Resolver{loaders: loaders, metrics: m}
}

func (r *Resolver) record(association string, found bool) {
	if r.metrics != nil {
		r.metrics.RecordAssociationLoad(association, found)
	}
}

// LineItems загружает позиции заказа.
func (r *Resolver) LineItems(ctx context.Context, orderID int64) ([]domain.LineItem, error) {
	if r.loaders.LineItems == nil {
		return nil, nil
	}
	items, err := r.loaders.LineItems.LoadAllForOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load line items for order %d: %w", orderID, err)
	}
	r.record("lineItems", len(items) > 0)
	return items, nil
}

// Adjustments загружает корректировки заказа.
func (r *Resolver) Adjustments(ctx context.Context, orderID int64) ([]domain.Adjustment, error) {
	if r.loaders.Adjustments == nil {
		return nil, nil
	}
	adjs, err := r.loaders.Adjustments.LoadAllForOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load adjustments for order %d: %w", orderID, err)
	}
	r.record("adjustments", len(adjs) > 0)
	return adjs, nil
}

// Address загружает адрес по идентификатору.
func (r *Resolver) Address(ctx context.Context, id int64) (*domain.Address, error) {
	if r.loaders.Addresses == nil {
		return nil, nil
	}
	return resolveOne(r, "address", func() (domain.Address, error) {
		return r.loaders.Addresses.FindByID(ctx, id)
	})
}

// Customer загружает покупателя.
func (r *Resolver) Customer(ctx context.Context, id int64) (*domain.Customer, error) {
	if r.loaders.Customers == nil {
		return nil, nil
	}
	return resolveOne(r, "customer", func() (domain.Customer, error) {
		return r.loaders.Customers.CustomerByID(ctx, id)
	})
}

// PaymentMethod загружает способ оплаты.
func (r *Resolver) PaymentMethod(ctx context.Context, id int64) (*domain.PaymentMethod, error) {
	if r.loaders.PaymentMethods == nil {
		return nil, nil
	}
	return resolveOne(r, "paymentMethod", func() (domain.PaymentMethod, error) {
		return r.loaders.PaymentMethods.FindByID(ctx, id)
	})
}

// ShippingMethod находит способ доставки по handle.
func (r *Resolver) ShippingMethod(ctx context.Context, handle string) (*domain.ShippingMethod, error) {
	if r.loaders.ShippingMethods == nil {
		return nil, nil
	}
	return resolveOne(r, "shippingMethod", func() (domain.ShippingMethod, error) {
		return r.loaders.ShippingMethods.ShippingMethodByHandle(ctx, handle)
	})
}

func resolveOne[T any](r *Resolver, association string, load func() (T, error)) (*T, error) {
	value, err := load()
	if err != nil {
		if domain.IsNotFound(err) {
			r.record(association, false)
			return nil, nil
		}
		return nil, fmt.Errorf("load %s: %w", association, err)
	}
	r.record(association, true)
	return &value, nil
}

var _ domain.AssociationResolver = (*Resolver)(nil)
