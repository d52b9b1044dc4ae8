// Package address реализует репозиторий адресов поверх протокола сохранения.
package address

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/metrics"
	"github.com/vladislavdragonenkov/commerce/internal/service/persist"
	"github.com/vladislavdragonenkov/commerce/internal/validation"
)

const entityName = "address"

// ErrLinkUnsupported возвращается, если хранилище не умеет привязывать адреса к покупателю.
var ErrLinkUnsupported = errors.New("address store does not support customer links")

// CustomerLinker — необязательная возможность хранилища адресов.
type CustomerLinker interface {
	LinkToCustomer(ctx context.Context, customerID, addressID int64) error
}

type options struct {
	logger    *log.Entry
	metrics   *metrics.SaveMetrics
	validator *validation.Validator
	hooks     []persist.Hooks[*domain.Address]
}

// Option настраивает Service.
type Option func(*options)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics включает запись метрик сохранения и удаления.
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

// WithHooks добавляет наблюдателей сохранения. Порядок вызова совпадает с порядком добавления.
func WithHooks(hooks ...persist.Hooks[*domain.Address]) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// Service — репозиторий адресов.
type Service struct {
	store   domain.AddressStore
	runner  *persist.Runner[*domain.Address, domain.Address]
	metrics *metrics.SaveMetrics
	logger  *log.Entry
}

// NewService создаёт сервис адресов.
func NewService(store domain.AddressStore, opts ...Option) *Service {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.WithField("component", "address-service")
	}
	if o.validator == nil {
		o.validator = validation.New()
	}

	runnerOpts := []persist.Option{persist.WithLogger(o.logger)}
	if o.metrics != nil {
		runnerOpts = append(runnerOpts, persist.WithRecorder(o.metrics))
	}

	v := o.validator
	steps := persist.Steps[*domain.Address, domain.Address]{
		Entity:   entityName,
		NotFound: domain.ErrAddressNotFound,
		Find:     store.FindByID,
		New:      func() domain.Address { return domain.Address{} },
		Map:      mapAddress,
		Validate: func(_ context.Context, _ *domain.Address, record domain.Address) domain.FieldErrors {
			return v.Struct(record)
		},
		Insert: store.Insert,
		Update: store.Update,
	}

	return &Service{
		store:   store,
		runner:  persist.NewRunner(steps, persist.Chain(o.hooks...), runnerOpts...),
		metrics: o.metrics,
		logger:  o.logger,
	}
}

// mapAddress нормализует регион на модели и переносит поля в запись.
func mapAddress(_ context.Context, model *domain.Address, record domain.Address) (domain.Address, domain.FieldErrors) {
	model.ResolveState()

	record.FirstName = model.FirstName
	record.LastName = model.LastName
	record.Address1 = model.Address1
	record.Address2 = model.Address2
	record.City = model.City
	record.ZipCode = model.ZipCode
	record.Phone = model.Phone
	record.AlternativePhone = model.AlternativePhone
	record.BusinessName = model.BusinessName
	record.BusinessTaxID = model.BusinessTaxID
	record.CountryID = model.CountryID
	record.StateID = model.StateID
	record.StateName = model.StateName
	return record, nil
}

// GetByID возвращает адрес или nil, если его нет.
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Address, error) {
	address, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAddressNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get address %d: %w", id, err)
	}
	return &address, nil
}

// ListByCustomerID возвращает адреса покупателя.
func (s *Service) ListByCustomerID(ctx context.Context, customerID int64) ([]domain.Address, error) {
	addresses, err := s.store.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list addresses for customer %d: %w", customerID, err)
	}
	return addresses, nil
}

// Save сохраняет адрес. false без ошибки означает невалидную модель или вето;
// ошибки полей остаются на модели.
func (s *Service) Save(ctx context.Context, address *domain.Address) (bool, error) {
	outcome, err := s.runner.Save(ctx, address)
	if err != nil {
		return false, err
	}
	return outcome == persist.OutcomeSaved, nil
}

// LinkToCustomer привязывает сохранённый адрес к покупателю.
func (s *Service) LinkToCustomer(ctx context.Context, customerID, addressID int64) error {
	linker, ok := s.store.(CustomerLinker)
	if !ok {
		return ErrLinkUnsupported
	}
	if err := linker.LinkToCustomer(ctx, customerID, addressID); err != nil {
		return fmt.Errorf("link address %d to customer %d: %w", addressID, customerID, err)
	}
	return nil
}

// DeleteByID удаляет адрес. Удаление отсутствующего адреса не считается ошибкой.
func (s *Service) DeleteByID(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete address %d: %w", id, err)
	}
	if deleted {
		if s.metrics != nil {
			s.metrics.RecordDelete(entityName)
		}
		s.logger.WithField("address_id", id).Info("address deleted")
	}
	return deleted, nil
}
