package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

const orderColumns = `
	id, number, coupon_code, item_total, total_price, total_paid, base_discount, base_shipping_cost,
	currency, email, date_ordered, date_paid, last_ip, message, return_url, cancel_url,
	shipping_address_id, billing_address_id, shipping_method_handle, payment_method_id,
	customer_id, order_status_id, created_at, updated_at`

type orderStore struct {
	store *Store
}

// NewOrderStore создаёт PostgreSQL-реализацию OrderStore.
// Денежные поля хранятся в NUMERIC(14,4).
func NewOrderStore(store *Store) domain.OrderStore {
	return &orderStore{store: store}
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order                         domain.Order
		dateOrdered, datePaid         sql.NullTime
		shippingAddress, billingAddr  sql.NullInt64
		paymentMethod, customer, stat sql.NullInt64
	)
	err := row.Scan(
		&order.ID, &order.Number, &order.CouponCode,
		&order.ItemTotal, &order.TotalPrice, &order.TotalPaid, &order.BaseDiscount, &order.BaseShippingCost,
		&order.Currency, &order.Email, &dateOrdered, &datePaid,
		&order.LastIP, &order.Message, &order.ReturnURL, &order.CancelURL,
		&shippingAddress, &billingAddr, &order.ShippingMethodHandle, &paymentMethod,
		&customer, &stat, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	order.DateOrdered = timePtr(dateOrdered)
	order.DatePaid = timePtr(datePaid)
	order.ShippingAddressID = shippingAddress.Int64
	order.BillingAddressID = billingAddr.Int64
	order.PaymentMethodID = paymentMethod.Int64
	order.CustomerID = customer.Int64
	order.OrderStatusID = stat.Int64
	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.UpdatedAt.UTC()
	return order, nil
}

func (r *orderStore) FindByID(ctx context.Context, id int64) (domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *orderStore) FindByNumber(ctx context.Context, number string) (domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE number = $1`, number)
}

func (r *orderStore) findOne(ctx context.Context, query string, arg any) (domain.Order, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	order, err := scanOrder(r.store.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	return order, nil
}

func (r *orderStore) Insert(ctx context.Context, order domain.Order) (int64, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	order.Normalize()
	now := time.Now().UTC()

	var id int64
	err := r.store.db.QueryRowContext(ctx, `
		INSERT INTO orders (
			number, coupon_code, item_total, total_price, total_paid, base_discount, base_shipping_cost,
			currency, email, date_ordered, date_paid, last_ip, message, return_url, cancel_url,
			shipping_address_id, billing_address_id, shipping_method_handle, payment_method_id,
			customer_id, order_status_id, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$22)
		RETURNING id
	`,
		order.Number, order.CouponCode, order.ItemTotal, order.TotalPrice, order.TotalPaid,
		order.BaseDiscount, order.BaseShippingCost, order.Currency, order.Email,
		nullTime(order.DateOrdered), nullTime(order.DatePaid), order.LastIP, order.Message,
		order.ReturnURL, order.CancelURL, nullID(order.ShippingAddressID), nullID(order.BillingAddressID),
		order.ShippingMethodHandle, nullID(order.PaymentMethodID), nullID(order.CustomerID),
		nullID(order.OrderStatusID), now,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrOrderNumberConflict
		}
		if isCheckViolation(err) {
			return 0, fmt.Errorf("insert order: %w", domain.ErrNegativeAmount)
		}
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

func (r *orderStore) Update(ctx context.Context, order domain.Order) error {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	order.Normalize()
	res, err := r.store.db.ExecContext(ctx, `
		UPDATE orders
		SET number = $2,
		    coupon_code = $3,
		    item_total = $4,
		    total_price = $5,
		    total_paid = $6,
		    base_discount = $7,
		    base_shipping_cost = $8,
		    currency = $9,
		    email = $10,
		    date_ordered = $11,
		    date_paid = $12,
		    last_ip = $13,
		    message = $14,
		    return_url = $15,
		    cancel_url = $16,
		    shipping_address_id = $17,
		    billing_address_id = $18,
		    shipping_method_handle = $19,
		    payment_method_id = $20,
		    customer_id = $21,
		    order_status_id = $22,
		    updated_at = $23
		WHERE id = $1
	`,
		order.ID, order.Number, order.CouponCode, order.ItemTotal, order.TotalPrice, order.TotalPaid,
		order.BaseDiscount, order.BaseShippingCost, order.Currency, order.Email,
		nullTime(order.DateOrdered), nullTime(order.DatePaid), order.LastIP, order.Message,
		order.ReturnURL, order.CancelURL, nullID(order.ShippingAddressID), nullID(order.BillingAddressID),
		order.ShippingMethodHandle, nullID(order.PaymentMethodID), nullID(order.CustomerID),
		nullID(order.OrderStatusID), time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderNumberConflict
		}
		if isCheckViolation(err) {
			return fmt.Errorf("update order %d: %w", order.ID, domain.ErrNegativeAmount)
		}
		return fmt.Errorf("update order: %w", err)
	}
	return requireAffected(res, domain.ErrOrderNotFound)
}

// DeleteByID удаляет заказ; позиции и корректировки удаляются каскадом.
func (r *orderStore) DeleteByID(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.store, "orders", id)
}

var _ domain.OrderStore = (*orderStore)(nil)
