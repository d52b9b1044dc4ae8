package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

const defaultCurrencyDecimals = 2

// association — ключ кэша связанных сущностей агрегата.
type association string

const (
	assocLineItems       association = "lineItems"
	assocAdjustments     association = "adjustments"
	assocShippingAddress association = "shippingAddress"
	assocBillingAddress  association = "billingAddress"
	assocCustomer        association = "customer"
	assocPaymentMethod   association = "paymentMethod"
	assocShippingMethod  association = "shippingMethod"
)

// Totals — снимок всех производных значений заказа.
type Totals struct {
	Qty                  int
	Tax                  decimal.Decimal
	TaxIncluded          decimal.Decimal
	Discount             decimal.Decimal
	ShippingCost         decimal.Decimal
	Weight               decimal.Decimal
	Length               decimal.Decimal
	Width                decimal.Decimal
	Height               decimal.Decimal
	SaleAmount           decimal.Decimal
	ItemSubtotalWithSale decimal.Decimal
	AdjustmentsTotal     decimal.Decimal
}

// AggregateOption настраивает Aggregate.
type AggregateOption func(*Aggregate)

// WithCurrencyPrecision задаёт источник точности валют для IsPaid.
func WithCurrencyPrecision(precision CurrencyPrecision) AggregateOption {
	return func(a *Aggregate) {
		a.precision = precision
	}
}

// WithDefaultCurrency задаёт валюту магазина, если у заказа валюта не указана.
func WithDefaultCurrency(code string) AggregateOption {
	return func(a *Aggregate) {
		a.defaultCurrency = code
	}
}

// Aggregate — корень агрегата заказа: заголовок, лениво загружаемые связи
// и производные итоги. Кэш связей принадлежит экземпляру и живёт столько же, сколько он.
// Экземпляр не предназначен для конкурентного использования.
type Aggregate struct {
	Order

	resolver        AssociationResolver
	precision       CurrencyPrecision
	defaultCurrency string
	cache           map[association]any
}

// NewAggregate создаёт агрегат поверх заголовка заказа.
func NewAggregate(order Order, resolver AssociationResolver, opts ...AggregateOption) *Aggregate {
	a := &Aggregate{
		Order:    order,
		resolver: resolver,
		cache:    make(map[association]any),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LineItems возвращает позиции заказа, загружая их при первом обращении.
func (a *Aggregate) LineItems(ctx context.Context) (LineItems, error) {
	if cached, ok := a.cache[assocLineItems]; ok {
		return cached.(LineItems), nil
	}
	var items LineItems
	if a.resolver != nil && a.ID != 0 {
		loaded, err := a.resolver.LineItems(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		items = loaded
	}
	a.cache[assocLineItems] = items
	return items, nil
}

// SetLineItems подменяет позиции без обращения к загрузчику.
func (a *Aggregate) SetLineItems(items []LineItem) {
	a.cache[assocLineItems] = LineItems(items)
}

// Adjustments возвращает корректировки заказа, загружая их при первом обращении.
func (a *Aggregate) Adjustments(ctx context.Context) (Adjustments, error) {
	if cached, ok := a.cache[assocAdjustments]; ok {
		return cached.(Adjustments), nil
	}
	var adjs Adjustments
	if a.resolver != nil && a.ID != 0 {
		loaded, err := a.resolver.Adjustments(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		adjs = loaded
	}
	a.cache[assocAdjustments] = adjs
	return adjs, nil
}

// SetAdjustments подменяет корректировки без обращения к загрузчику.
func (a *Aggregate) SetAdjustments(adjs []Adjustment) {
	a.cache[assocAdjustments] = Adjustments(adjs)
}

// ShippingAddress возвращает адрес доставки или nil.
func (a *Aggregate) ShippingAddress(ctx context.Context) (*Address, error) {
	return a.address(ctx, assocShippingAddress, a.ShippingAddressID)
}

// SetShippingAddress подменяет адрес доставки, например для ещё не сохранённой корзины.
func (a *Aggregate) SetShippingAddress(address *Address) {
	a.cache[assocShippingAddress] = address
}

// BillingAddress возвращает платёжный адрес или nil.
func (a *Aggregate) BillingAddress(ctx context.Context) (*Address, error) {
	return a.address(ctx, assocBillingAddress, a.BillingAddressID)
}

// SetBillingAddress подменяет платёжный адрес без обращения к загрузчику.
func (a *Aggregate) SetBillingAddress(address *Address) {
	a.cache[assocBillingAddress] = address
}

func (a *Aggregate) address(ctx context.Context, key association, id int64) (*Address, error) {
	if cached, ok := a.cache[key]; ok {
		return cached.(*Address), nil
	}
	var address *Address
	if a.resolver != nil && id != 0 {
		loaded, err := a.resolver.Address(ctx, id)
		if err != nil {
			return nil, err
		}
		address = loaded
	}
	a.cache[key] = address
	return address, nil
}

// Customer возвращает покупателя заказа или nil.
func (a *Aggregate) Customer(ctx context.Context) (*Customer, error) {
	if cached, ok := a.cache[assocCustomer]; ok {
		return cached.(*Customer), nil
	}
	var customer *Customer
	if a.resolver != nil && a.CustomerID != 0 {
		loaded, err := a.resolver.Customer(ctx, a.CustomerID)
		if err != nil {
			return nil, err
		}
		customer = loaded
	}
	a.cache[assocCustomer] = customer
	return customer, nil
}

// PaymentMethod возвращает выбранный способ оплаты или nil.
func (a *Aggregate) PaymentMethod(ctx context.Context) (*PaymentMethod, error) {
	if cached, ok := a.cache[assocPaymentMethod]; ok {
		return cached.(*PaymentMethod), nil
	}
	var method *PaymentMethod
	if a.resolver != nil && a.PaymentMethodID != 0 {
		loaded, err := a.resolver.PaymentMethod(ctx, a.PaymentMethodID)
		if err != nil {
			return nil, err
		}
		method = loaded
	}
	a.cache[assocPaymentMethod] = method
	return method, nil
}

// ShippingMethod возвращает выбранный способ доставки или nil.
func (a *Aggregate) ShippingMethod(ctx context.Context) (*ShippingMethod, error) {
	if cached, ok := a.cache[assocShippingMethod]; ok {
		return cached.(*ShippingMethod), nil
	}
	var method *ShippingMethod
	if a.resolver != nil && a.ShippingMethodHandle != "" {
		loaded, err := a.resolver.ShippingMethod(ctx, a.ShippingMethodHandle)
		if err != nil {
			return nil, err
		}
		method = loaded
	}
	a.cache[assocShippingMethod] = method
	return method, nil
}

// ShippingMethodID возвращает идентификатор выбранного способа доставки или 0.
func (a *Aggregate) ShippingMethodID(ctx context.Context) (int64, error) {
	method, err := a.ShippingMethod(ctx)
	if err != nil || method == nil {
		return 0, err
	}
	return method.ID, nil
}

// TotalQty возвращает общее количество единиц товара.
func (a *Aggregate) TotalQty(ctx context.Context) (int, error) {
	items, err := a.LineItems(ctx)
	if err != nil {
		return 0, err
	}
	return items.TotalQty(), nil
}

// TotalTax возвращает сумму налога по позициям.
func (a *Aggregate) TotalTax(ctx context.Context) (decimal.Decimal, error) {
	return a.fold(ctx, LineItems.TotalTax)
}

// TotalTaxIncluded возвращает сумму налога, включённого в цену.
func (a *Aggregate) TotalTaxIncluded(ctx context.Context) (decimal.Decimal, error) {
	return a.fold(ctx, LineItems.TotalTaxIncluded)
}

// TotalDiscount возвращает скидки по позициям плюс скидку на заказ.
func (a *Aggregate) TotalDiscount(ctx context.Context) (decimal.Decimal, error) {
	total, err := a.fold(ctx, LineItems.TotalDiscount)
	if err != nil {
		return decimal.Zero, err
	}
	return total.Add(a.BaseDiscount), nil
}

// TotalShippingCost возвращает доставку по позициям плюс базовую доставку заказа.
func (a *Aggregate) TotalShippingCost(ctx context.Context) (decimal.Decimal, error) {
	total, err := a.fold(ctx, LineItems.TotalShippingCost)
	if err != nil {
		return decimal.Zero, err
	}
	return total.Add(a.BaseShippingCost), nil
}

// TotalWeight возвращает общий вес.
func (a *Aggregate) TotalWeight(ctx context.Context) (decimal.Decimal, error) {
	return a.fold(ctx, LineItems.TotalWeight)
}

// TotalLength возвращает суммарную длину.
func (a *Aggregate) TotalLength(ctx context.Context) (decimal.Decimal, error) {
	return a.fold(ctx, LineItems.TotalLength)
}

// TotalWidth возвращает суммарную ширину.
func (a *Aggregate) TotalWidth(ctx context.Context) (decimal.Decimal, error) {
	return a.fold(ctx, LineItems.TotalWidth)
}

// TotalHeight возвращает суммарную высоту.
func (a *Aggregate) TotalHeight(ctx context.Context) (decimal.Decimal, error) {
	return a.fold(ctx, LineItems.TotalHeight)
}

// TotalSaleAmount возвращает сумму распродажных изменений цены.
func (a *Aggregate) TotalSaleAmount(ctx context.Context) (decimal.Decimal, error) {
	return a.fold(ctx, LineItems.TotalSaleAmount)
}

// ItemSubtotalWithSale возвращает стоимость позиций с учётом распродажи.
func (a *Aggregate) ItemSubtotalWithSale(ctx context.Context) (decimal.Decimal, error) {
	return a.fold(ctx, LineItems.ItemSubtotalWithSale)
}

// IsEmpty сообщает, что в заказе нет ни одной единицы товара.
func (a *Aggregate) IsEmpty(ctx context.Context) (bool, error) {
	qty, err := a.TotalQty(ctx)
	if err != nil {
		return false, err
	}
	return qty == 0, nil
}

// Totals вычисляет все производные значения за один проход по кэшу.
func (a *Aggregate) Totals(ctx context.Context) (Totals, error) {
	items, err := a.LineItems(ctx)
	if err != nil {
		return Totals{}, err
	}
	adjs, err := a.Adjustments(ctx)
	if err != nil {
		return Totals{}, err
	}
	return Totals{
		Qty:                  items.TotalQty(),
		Tax:                  items.TotalTax(),
		TaxIncluded:          items.TotalTaxIncluded(),
		Discount:             items.TotalDiscount().Add(a.BaseDiscount),
		ShippingCost:         items.TotalShippingCost().Add(a.BaseShippingCost),
		Weight:               items.TotalWeight(),
		Length:               items.TotalLength(),
		Width:                items.TotalWidth(),
		Height:               items.TotalHeight(),
		SaleAmount:           items.TotalSaleAmount(),
		ItemSubtotalWithSale: items.ItemSubtotalWithSale(),
		AdjustmentsTotal:     adjs.Total(),
	}, nil
}

// IsPaid сравнивает оплаченную сумму с ценой заказа после округления обеих
// до точности валюты.
func (a *Aggregate) IsPaid() bool {
	places := int32(a.currencyDecimals())
	paid := a.TotalPaid.Round(places)
	price := a.TotalPrice.Round(places)
	return paid.GreaterThanOrEqual(price)
}

// IsEditable: корзину можно менять всегда, оформленный заказ только при наличии прав.
func (a *Aggregate) IsEditable(ctx context.Context, authz EditAuthorizer) bool {
	if a.DateOrdered == nil {
		return true
	}
	if authz == nil {
		return false
	}
	return authz.CanManageOrders(ctx)
}

// IsGuest сообщает, что заказ оформлен без учётной записи.
// Заказ без покупателя всегда считается гостевым.
func (a *Aggregate) IsGuest(ctx context.Context) (bool, error) {
	customer, err := a.Customer(ctx)
	if err != nil {
		return false, err
	}
	if customer == nil {
		return true, nil
	}
	return !customer.Registered(), nil
}

// activeCurrency возвращает валюту заказа, а при её отсутствии валюту магазина.
func (a *Aggregate) activeCurrency() string {
	if a.Currency != "" {
		return a.Currency
	}
	return a.defaultCurrency
}

func (a *Aggregate) currencyDecimals() int {
	if a.precision == nil {
		return defaultCurrencyDecimals
	}
	return a.precision.DecimalsFor(a.activeCurrency())
}

func (a *Aggregate) fold(ctx context.Context, f func(LineItems) decimal.Decimal) (decimal.Decimal, error) {
	items, err := a.LineItems(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return f(items), nil
}
