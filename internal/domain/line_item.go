package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem представляет одну позицию корзины или заказа.
// Габариты и вес указаны на единицу товара, денежные поля указаны на всю позицию,
// кроме SaleAmount, который задаётся на единицу.
type LineItem struct {
	ID      int64
	OrderID int64
	// Qty — количество единиц товара, не может быть отрицательным.
	Qty int
	// Price — базовая цена за единицу.
	Price decimal.Decimal
	// SaleAmount — скидка (отрицательная) или наценка за единицу относительно Price.
	SaleAmount decimal.Decimal

	Weight decimal.Decimal
	Length decimal.Decimal
	Width  decimal.Decimal
	Height decimal.Decimal

	Tax          decimal.Decimal
	TaxIncluded  decimal.Decimal
	Discount     decimal.Decimal
	ShippingCost decimal.Decimal

	CreatedAt time.Time
}

// Validate проверяет, что позицию можно сохранить.
func (li LineItem) Validate() error {
	if li.Qty < 0 {
		return fmt.Errorf("qty %d: %w", li.Qty, ErrNegativeQuantity)
	}
	return nil
}

// SalePrice возвращает цену за единицу с учётом распродажи.
func (li LineItem) SalePrice() decimal.Decimal {
	return li.Price.Add(li.SaleAmount)
}

// SubtotalWithSale возвращает стоимость позиции с учётом распродажи.
func (li LineItem) SubtotalWithSale() decimal.Decimal {
	return li.SalePrice().Mul(decimal.NewFromInt(int64(li.Qty)))
}

func (li LineItem) qty() decimal.Decimal {
	return decimal.NewFromInt(int64(li.Qty))
}

// LineItems — упорядоченный набор позиций с чистыми функциями свёртки.
// Ни одна свёртка не обращается к хранилищу и не изменяет позиции.
type LineItems []LineItem

// TotalQty суммирует количество по всем позициям.
func (items LineItems) TotalQty() int {
	total := 0
	for _, item := range items {
		total += item.Qty
	}
	return total
}

// TotalTax суммирует налог по позициям.
func (items LineItems) TotalTax() decimal.Decimal {
	return items.sum(func(li LineItem) decimal.Decimal { return li.Tax })
}

// TotalTaxIncluded суммирует налог, уже включённый в цену.
func (items LineItems) TotalTaxIncluded() decimal.Decimal {
	return items.sum(func(li LineItem) decimal.Decimal { return li.TaxIncluded })
}

// TotalDiscount суммирует скидки по позициям.
func (items LineItems) TotalDiscount() decimal.Decimal {
	return items.sum(func(li LineItem) decimal.Decimal { return li.Discount })
}

// TotalShippingCost суммирует стоимость доставки по позициям.
func (items LineItems) TotalShippingCost() decimal.Decimal {
	return items.sum(func(li LineItem) decimal.Decimal { return li.ShippingCost })
}

// TotalWeight возвращает Σ qty × weight.
func (items LineItems) TotalWeight() decimal.Decimal {
	return items.sum(func(li LineItem) decimal.Decimal { return li.qty().Mul(li.Weight) })
}

// TotalLength возвращает Σ qty × length.
func (items LineItems) TotalLength() decimal.Decimal {
	return items.sum(func(li LineItem) decimal.Decimal { return li.qty().Mul(li.Length) })
}

// TotalWidth возвращает Σ qty × width.
func (items LineItems) TotalWidth() decimal.Decimal {
	return items.sum(func(li LineItem) decimal.Decimal { return li.qty().Mul(li.Width) })
}

// TotalHeight возвращает Σ qty × height.
func (items LineItems) TotalHeight() decimal.Decimal {
	return items.sum(func(li LineItem) decimal.Decimal { return li.qty().Mul(li.Height) })
}

// TotalSaleAmount возвращает Σ qty × saleAmount.
func (items LineItems) TotalSaleAmount() decimal.Decimal {
	return items.sum(func(li LineItem) decimal.Decimal { return li.qty().Mul(li.SaleAmount) })
}

// ItemSubtotalWithSale суммирует стоимость позиций с учётом распродажи.
func (items LineItems) ItemSubtotalWithSale() decimal.Decimal {
	return items.sum(LineItem.SubtotalWithSale)
}

func (items LineItems) sum(value func(LineItem) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(value(item))
	}
	return total
}
