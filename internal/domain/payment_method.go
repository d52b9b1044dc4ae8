package domain

// PaymentType определяет, как шлюз проводит платёж.
type PaymentType string

const (
	// PaymentTypeAuthorize — только авторизация суммы, списание позже.
	PaymentTypeAuthorize PaymentType = "authorize"
	// PaymentTypePurchase — авторизация и списание одним запросом.
	PaymentTypePurchase PaymentType = "purchase"
)

// PaymentMethod — настроенный способ оплаты поверх конкретного платёжного шлюза.
// Class выбирает адаптер шлюза, Settings принадлежат этому адаптеру.
type PaymentMethod struct {
	Validatable `json:"-" validate:"-"`

	ID              int64          `json:"id" validate:"-"`
	Name            string         `json:"name" validate:"required,max=255"`
	PaymentType     PaymentType    `json:"paymentType" validate:"required,oneof=authorize purchase"`
	Class           string         `json:"class" validate:"required,max=150"`
	FrontendEnabled bool           `json:"frontendEnabled" validate:"-"`
	Settings        map[string]any `json:"settings" validate:"-"`
}

// EntityID возвращает идентификатор способа оплаты.
func (pm *PaymentMethod) EntityID() int64 { return pm.ID }

// SetEntityID проставляет идентификатор, выданный хранилищем.
func (pm *PaymentMethod) SetEntityID(id int64) { pm.ID = id }

// PaymentMethodSummary — публичные поля способа оплаты без настроек шлюза.
type PaymentMethodSummary struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	PaymentType     PaymentType `json:"paymentType"`
	Class           string      `json:"class"`
	FrontendEnabled bool        `json:"frontendEnabled"`
}

// Summary возвращает способ оплаты без Settings: там лежат ключи и пароли шлюза.
func (pm *PaymentMethod) Summary() PaymentMethodSummary {
	return PaymentMethodSummary{
		ID:              pm.ID,
		Name:            pm.Name,
		PaymentType:     pm.PaymentType,
		Class:           pm.Class,
		FrontendEnabled: pm.FrontendEnabled,
	}
}
