package domain

import "github.com/shopspring/decimal"

// AdjustmentType классифицирует корректировку заказа.
type AdjustmentType string

const (
	AdjustmentTypeTax      AdjustmentType = "tax"
	AdjustmentTypeDiscount AdjustmentType = "discount"
	AdjustmentTypeShipping AdjustmentType = "shipping"
	AdjustmentTypeCustom   AdjustmentType = "custom"
)

// Adjustment — именованная денежная корректировка, привязанная к заказу.
type Adjustment struct {
	ID          int64
	OrderID     int64
	Type        AdjustmentType
	Name        string
	Description string
	Amount      decimal.Decimal
	// Included означает, что сумма уже учтена в цене позиций (например, НДС внутри цены).
	Included bool
}

// Adjustments — набор корректировок заказа.
type Adjustments []Adjustment

// Total суммирует корректировки, не включённые в цену позиций.
func (adjs Adjustments) Total() decimal.Decimal {
	total := decimal.Zero
	for _, adj := range adjs {
		if adj.Included {
			continue
		}
		total = total.Add(adj.Amount)
	}
	return total
}

// ByType возвращает корректировки указанного типа в исходном порядке.
func (adjs Adjustments) ByType(t AdjustmentType) Adjustments {
	var out Adjustments
	for _, adj := range adjs {
		if adj.Type == t {
			out = append(out, adj)
		}
	}
	return out
}
