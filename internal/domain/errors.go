package domain

import "errors"

var (
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrAddressNotFound возвращается, если адрес не найден в хранилище.
	ErrAddressNotFound = errors.New("address not found")
	// ErrPaymentMethodNotFound возвращается, если способ оплаты не найден в хранилище.
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	// ErrCustomerNotFound возвращается, если покупатель не найден.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrShippingMethodNotFound возвращается, если способ доставки с таким handle не найден.
	ErrShippingMethodNotFound = errors.New("shipping method not found")
	// ErrStateNotFound возвращается, если регион не найден.
	ErrStateNotFound = errors.New("state not found")
	// ErrCountryNotFound возвращается, если страна не найдена.
	ErrCountryNotFound = errors.New("country not found")
	// ErrOrderNumberConflict сигнализирует о повторном номере заказа при вставке.
	ErrOrderNumberConflict = errors.New("order number already exists")
	// ErrNegativeQuantity возвращается для позиции с отрицательным количеством.
	ErrNegativeQuantity = errors.New("line item quantity must not be negative")
	// ErrNegativeAmount возвращается, если денежное поле заказа меньше нуля.
	ErrNegativeAmount = errors.New("order amount must not be negative")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

var notFoundErrors = []error{
	ErrOrderNotFound,
	ErrAddressNotFound,
	ErrPaymentMethodNotFound,
	ErrCustomerNotFound,
	ErrShippingMethodNotFound,
	ErrStateNotFound,
	ErrCountryNotFound,
}

// IsNotFound проверяет, относится ли ошибка к отсутствующей записи любого типа.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
