// Package paymentmethod реализует репозиторий способов оплаты.
// Настройки способа оплаты принадлежат адаптеру шлюза, выбранному по Class.
package paymentmethod

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/gateway"
	"github.com/vladislavdragonenkov/commerce/internal/metrics"
	"github.com/vladislavdragonenkov/commerce/internal/service/persist"
	"github.com/vladislavdragonenkov/commerce/internal/validation"
)

const entityName = "payment_method"

// Ключи ошибок, которые выставляет шлюз.
const (
	FieldClass    = "class"
	FieldSettings = "settings"
)

type options struct {
	logger    *log.Entry
	metrics   *metrics.SaveMetrics
	validator *validation.Validator
	registry  *gateway.Registry
	hooks     []persist.Hooks[*domain.PaymentMethod]
}

// Option настраивает Service.
type Option func(*options)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics включает запись метрик.
func WithMetrics(m *metrics.SaveMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithValidator подменяет валидатор записей.
func WithValidator(v *validation.Validator) Option {
	return func(o *options) {
		o.validator = v
	}
}

// WithRegistry задаёт реестр шлюзов. По умолчанию используются встроенные шлюзы.
func WithRegistry(registry *gateway.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithHooks добавляет наблюдателей сохранения.
func WithHooks(hooks ...persist.Hooks[*domain.PaymentMethod]) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// Service — репозиторий способов оплаты.
type Service struct {
	store    domain.PaymentMethodStore
	registry *gateway.Registry
	runner   *persist.Runner[*domain.PaymentMethod, domain.PaymentMethod]
	metrics  *metrics.SaveMetrics
	logger   *log.Entry
}

// NewService создаёт сервис способов оплаты.
func NewService(store domain.PaymentMethodStore, opts ...Option) *Service {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.WithField("component", "payment-method-service")
	}
	if o.validator == nil {
		o.validator = validation.New()
	}
	if o.registry == nil {
		o.registry = gateway.DefaultRegistry(o.validator)
	}

	s := &Service{
		store:    store,
		registry: o.registry,
		metrics:  o.metrics,
		logger:   o.logger,
	}

	runnerOpts := []persist.Option{persist.WithLogger(o.logger)}
	if o.metrics != nil {
		runnerOpts = append(runnerOpts, persist.WithRecorder(o.metrics))
	}

	v := o.validator
	steps := persist.Steps[*domain.PaymentMethod, domain.PaymentMethod]{
		Entity:   entityName,
		NotFound: domain.ErrPaymentMethodNotFound,
		Find:     store.FindByID,
		New:      func() domain.PaymentMethod { return domain.PaymentMethod{} },
		Map:      s.mapPaymentMethod,
		Validate: func(_ context.Context, _ *domain.PaymentMethod, record domain.PaymentMethod) domain.FieldErrors {
			return v.Struct(record)
		},
		Insert: store.Insert,
		Update: store.Update,
	}
	s.runner = persist.NewRunner(steps, persist.Chain(o.hooks...), runnerOpts...)
	return s
}

// mapPaymentMethod переносит поля и заменяет настройки нормализованными атрибутами шлюза.
// Ошибки шлюза собираются под ключом settings, неизвестный класс попадает под ключ class.
func (s *Service) mapPaymentMethod(_ context.Context, model *domain.PaymentMethod, record domain.PaymentMethod) (domain.PaymentMethod, domain.FieldErrors) {
	errs := make(domain.FieldErrors)

	record.Name = model.Name
	record.PaymentType = model.PaymentType
	record.Class = model.Class
	record.FrontendEnabled = model.FrontendEnabled
	record.Settings = map[string]any{}

	if model.Class == "" {
		// пустой класс уже отмечен правилом required
		return record, errs
	}

	adapter, err := s.registry.Resolve(model.Class, model.Settings)
	switch {
	case errors.Is(err, gateway.ErrUnknownGateway):
		errs.Add(FieldClass, fmt.Sprintf("Class %q is not a supported gateway.", model.Class))
		return record, errs
	case err != nil:
		errs.Add(FieldSettings, fmt.Sprintf("Settings could not be read: %v.", err))
		return record, errs
	}

	record.Settings = adapter.Attributes()
	for _, message := range adapter.Validate() {
		errs.Add(FieldSettings, message)
	}
	return record, errs
}

// Adapter строит адаптер шлюза для сохранённого способа оплаты.
func (s *Service) Adapter(method domain.PaymentMethod) (gateway.Adapter, error) {
	return s.registry.Resolve(method.Class, method.Settings)
}

// GetByID возвращает способ оплаты или nil, если его нет.
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.PaymentMethod, error) {
	method, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentMethodNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment method %d: %w", id, err)
	}
	return &method, nil
}

// ListAll возвращает все способы оплаты.
func (s *Service) ListAll(ctx context.Context) ([]domain.PaymentMethod, error) {
	methods, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	return methods, nil
}

// ListFrontendEnabled возвращает способы оплаты, доступные покупателю на витрине.
func (s *Service) ListFrontendEnabled(ctx context.Context) ([]domain.PaymentMethod, error) {
	methods, err := s.store.FindAllByFrontendEnabled(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list frontend payment methods: %w", err)
	}
	return methods, nil
}

// Save сохраняет способ оплаты. false без ошибки означает невалидную модель или вето.
func (s *Service) Save(ctx context.Context, method *domain.PaymentMethod) (bool, error) {
	outcome, err := s.runner.Save(ctx, method)
	if err != nil {
		return false, err
	}
	return outcome == persist.OutcomeSaved, nil
}

// DeleteByID удаляет способ оплаты.
func (s *Service) DeleteByID(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete payment method %d: %w", id, err)
	}
	if deleted {
		if s.metrics != nil {
			s.metrics.RecordDelete(entityName)
		}
		s.logger.WithField("payment_method_id", id).Info("payment method deleted")
	}
	return deleted, nil
}
