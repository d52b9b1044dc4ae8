package memory

import (
	"context"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// paymentMethodStoreInMemory — in-memory реализация PaymentMethodStore.
type paymentMethodStoreInMemory struct {
	methods *table[domain.PaymentMethod]
}

// NewPaymentMethodStore возвращает in-memory хранилище способов оплаты.
func NewPaymentMethodStore() domain.PaymentMethodStore {
	return &paymentMethodStoreInMemory{methods: newTable[domain.PaymentMethod]()}
}

// storedPaymentMethod отвязывает настройки от вызывающего кода.
func storedPaymentMethod(method domain.PaymentMethod) domain.PaymentMethod {
	method.ClearErrors()
	settings := make(map[string]any, len(method.Settings))
	for key, value := range method.Settings {
		settings[key] = value
	}
	method.Settings = settings
	return method
}

func (s *paymentMethodStoreInMemory) FindByID(_ context.Context, id int64) (domain.PaymentMethod, error) {
	method, ok := s.methods.get(id)
	if !ok {
		return domain.PaymentMethod{}, domain.ErrPaymentMethodNotFound
	}
	return storedPaymentMethod(method), nil
}

func (s *paymentMethodStoreInMemory) FindAll(_ context.Context) ([]domain.PaymentMethod, error) {
	return s.copyAll(s.methods.list(nil)), nil
}

func (s *paymentMethodStoreInMemory) FindAllByFrontendEnabled(_ context.Context, enabled bool) ([]domain.PaymentMethod, error) {
	return s.copyAll(s.methods.list(func(method domain.PaymentMethod) bool {
		return method.FrontendEnabled == enabled
	})), nil
}

func (s *paymentMethodStoreInMemory) Insert(_ context.Context, method domain.PaymentMethod) (int64, error) {
	return s.methods.insert(func(id int64) domain.PaymentMethod {
		method = storedPaymentMethod(method)
		method.ID = id
		return method
	}), nil
}

func (s *paymentMethodStoreInMemory) Update(_ context.Context, method domain.PaymentMethod) error {
	if !s.methods.update(method.ID, storedPaymentMethod(method)) {
		return domain.ErrPaymentMethodNotFound
	}
	return nil
}

func (s *paymentMethodStoreInMemory) DeleteByID(_ context.Context, id int64) (bool, error) {
	return s.methods.delete(id), nil
}

func (s *paymentMethodStoreInMemory) copyAll(methods []domain.PaymentMethod) []domain.PaymentMethod {
	for i := range methods {
		methods[i] = storedPaymentMethod(methods[i])
	}
	return methods
}

var _ domain.PaymentMethodStore = (*paymentMethodStoreInMemory)(nil)
