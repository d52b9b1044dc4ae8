package gateway

import "github.com/vladislavdragonenkov/commerce/internal/validation"

// Классы встроенных шлюзов.
const (
	ClassDummy         = "Dummy"
	ClassManual        = "Manual"
	ClassStripe        = "Stripe"
	ClassPayPalExpress = "PayPal_Express"
)

// DummySettings — тестовый шлюз, который принимает любые карты.
type DummySettings struct{}

// ManualSettings — оплата вне магазина (счёт, наличные при получении).
type ManualSettings struct {
	Instructions string `json:"instructions" validate:"max=1000"`
}

// StripeSettings — настройки Stripe.
type StripeSettings struct {
	APIKey         string `json:"apiKey" validate:"required"`
	PublishableKey string `json:"publishableKey"`
}

// PayPalExpressSettings — настройки PayPal Express Checkout.
type PayPalExpressSettings struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	Signature string `json:"signature" validate:"required"`
	TestMode  bool   `json:"testMode"`
	BrandName string `json:"brandName" validate:"max=255"`
}

// DefaultRegistry возвращает реестр со встроенными шлюзами.
func DefaultRegistry(v *validation.Validator) *Registry {
	if v == nil {
		v = validation.New()
	}
	r := NewRegistry()
	r.Register(ClassDummy, SettingsFactory(ClassDummy, "Dummy", DummySettings{}, v))
	r.Register(ClassManual, SettingsFactory(ClassManual, "Manual", ManualSettings{}, v))
	r.Register(ClassStripe, SettingsFactory(ClassStripe, "Stripe", StripeSettings{}, v))
	r.Register(ClassPayPalExpress, SettingsFactory(ClassPayPalExpress, "PayPal Express", PayPalExpressSettings{TestMode: true}, v))
	return r
}
