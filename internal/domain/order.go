package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MoneyScale — точность хранения денежных полей заказа.
const MoneyScale = 4

// Order — заголовок заказа или корзины в том виде, в каком он лежит в хранилище.
// Пока DateOrdered не задан, заказ остаётся редактируемой корзиной.
type Order struct {
	ID         int64
	Number     string
	CouponCode string

	ItemTotal        decimal.Decimal
	TotalPrice       decimal.Decimal
	TotalPaid        decimal.Decimal
	BaseDiscount     decimal.Decimal
	BaseShippingCost decimal.Decimal

	Currency    string
	Email       string
	DateOrdered *time.Time
	DatePaid    *time.Time

	LastIP    string
	Message   string
	ReturnURL string
	CancelURL string

	ShippingAddressID    int64
	BillingAddressID     int64
	ShippingMethodHandle string
	PaymentMethodID      int64
	CustomerID           int64
	OrderStatusID        int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateAmounts проверяет, что ни одно денежное поле заголовка не отрицательно.
func (o Order) ValidateAmounts() error {
	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"itemTotal", o.ItemTotal},
		{"totalPrice", o.TotalPrice},
		{"totalPaid", o.TotalPaid},
		{"baseDiscount", o.BaseDiscount},
		{"baseShippingCost", o.BaseShippingCost},
	}
	for _, amount := range amounts {
		if amount.value.IsNegative() {
			return fmt.Errorf("%s %s: %w", amount.field, amount.value.String(), ErrNegativeAmount)
		}
	}
	return nil
}

// IsCart сообщает, что заказ ещё не оформлен.
func (o Order) IsCart() bool {
	return o.DateOrdered == nil
}

// ShortNumber возвращает первые 7 символов номера, в таком виде он показывается покупателю.
func (o Order) ShortNumber() string {
	if len(o.Number) <= 7 {
		return o.Number
	}
	return o.Number[:7]
}

func (o Order) String() string {
	return o.ShortNumber()
}

// Normalize приводит денежные поля к точности хранения.
func (o *Order) Normalize() {
	o.ItemTotal = o.ItemTotal.Round(MoneyScale)
	o.TotalPrice = o.TotalPrice.Round(MoneyScale)
	o.TotalPaid = o.TotalPaid.Round(MoneyScale)
	o.BaseDiscount = o.BaseDiscount.Round(MoneyScale)
	o.BaseShippingCost = o.BaseShippingCost.Round(MoneyScale)
}
