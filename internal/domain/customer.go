package domain

// Customer связывает заказы с покупателем. UserID != 0 означает зарегистрированного пользователя.
type Customer struct {
	ID     int64
	UserID int64
	Email  string
}

// Registered сообщает, привязан ли покупатель к учётной записи.
func (c Customer) Registered() bool {
	return c.UserID != 0
}

// ShippingMethod описывает способ доставки, на который ссылается заказ по handle.
type ShippingMethod struct {
	ID      int64
	Handle  string
	Name    string
	Enabled bool
}
