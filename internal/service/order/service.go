// Package order собирает агрегаты заказов из хранилищ и создаёт корзины.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/currency"
	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/metrics"
)

const (
	entityName = "order"

	// DefaultCurrency — валюта магазина по умолчанию.
	DefaultCurrency = "USD"

	maxNumberAttempts = 3
)

// ErrNumberExhausted возвращается, если не удалось подобрать свободный номер заказа.
var ErrNumberExhausted = errors.New("could not allocate a unique order number")

// Cleaner удаляет дочерние записи заказа там, где хранилище не делает этого само.
type Cleaner interface {
	DeleteForOrder(ctx context.Context, orderID int64) error
}

type options struct {
	cleaners        []Cleaner
	logger          *log.Entry
	metrics         *metrics.SaveMetrics
	precision       domain.CurrencyPrecision
	defaultCurrency string
	numbers         func() string
}

// Option настраивает Service.
type Option func(*options)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics включает запись метрик удаления.
func WithMetrics(m *metrics.SaveMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithCurrencyPrecision задаёт источник точности валют для создаваемых агрегатов.
func WithCurrencyPrecision(precision domain.CurrencyPrecision) Option {
	return func(o *options) {
		o.precision = precision
	}
}

// WithDefaultCurrency задаёт валюту магазина.
func WithDefaultCurrency(code string) Option {
	return func(o *options) {
		o.defaultCurrency = code
	}
}

// WithCleaners задаёт хранилища позиций и корректировок, очищаемые при удалении заказа.
func WithCleaners(cleaners ...Cleaner) Option {
	return func(o *options) {
		o.cleaners = append(o.cleaners, cleaners...)
	}
}

// WithNumberGenerator подменяет генератор номеров заказов.
func WithNumberGenerator(next func() string) Option {
	return func(o *options) {
		o.numbers = next
	}
}

// Service выдаёт агрегаты заказов.
type Service struct {
	orders          domain.OrderStore
	resolver        domain.AssociationResolver
	precision       domain.CurrencyPrecision
	defaultCurrency string
	numbers         func() string
	cleaners        []Cleaner
	metrics         *metrics.SaveMetrics
	logger          *log.Entry
}

// NewService создаёт сервис заказов.
func NewService(orders domain.OrderStore, resolver domain.AssociationResolver, opts ...Option) *Service {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.WithField("component", "order-service")
	}
	if o.precision == nil {
		o.precision = currency.NewISOPrecision(currency.DefaultDecimals)
	}
	if o.defaultCurrency == "" {
		o.defaultCurrency = DefaultCurrency
	}
	if o.numbers == nil {
		o.numbers = NewNumber
	}
	return &Service{
		orders:          orders,
		resolver:        resolver,
		precision:       o.precision,
		defaultCurrency: strings.ToUpper(o.defaultCurrency),
		numbers:         o.numbers,
		cleaners:        o.cleaners,
		metrics:         o.metrics,
		logger:          o.logger,
	}
}

// NewNumber возвращает 32 шестнадцатеричных символа случайного UUID.
func NewNumber() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Aggregate оборачивает заголовок заказа в агрегат со связями сервиса.
func (s *Service) Aggregate(order domain.Order) *domain.Aggregate {
	return domain.NewAggregate(order, s.resolver,
		domain.WithCurrencyPrecision(s.precision),
		domain.WithDefaultCurrency(s.defaultCurrency),
	)
}

// GetByID возвращает агрегат заказа или nil, если заказа нет.
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Aggregate, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return s.Aggregate(order), nil
}

// GetByNumber возвращает агрегат заказа по полному номеру или nil.
func (s *Service) GetByNumber(ctx context.Context, number string) (*domain.Aggregate, error) {
	order, err := s.orders.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by number %q: %w", number, err)
	}
	return s.Aggregate(order), nil
}

// NewCart создаёт пустую корзину покупателя в валюте магазина.
func (s *Service) NewCart(ctx context.Context, customerID int64) (*domain.Aggregate, error) {
	return s.Create(ctx, domain.Order{CustomerID: customerID})
}

// Create сохраняет новый заголовок заказа. Пустой номер и валюта заполняются сервисом;
// при конфликте сгенерированного номера выдаётся новый.
func (s *Service) Create(ctx context.Context, order domain.Order) (*domain.Aggregate, error) {
	if order.ID != 0 {
		return nil, fmt.Errorf("create order: id %d already assigned", order.ID)
	}
	if order.Currency == "" {
		order.Currency = s.defaultCurrency
	}
	order.Currency = strings.ToUpper(order.Currency)
	if err := order.ValidateAmounts(); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	generated := order.Number == ""
	attempts := 1
	if generated {
		attempts = maxNumberAttempts
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if generated {
			order.Number = s.numbers()
		}
		id, err := s.orders.Insert(ctx, order)
		if err == nil {
			stored, err := s.orders.FindByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("reload order %d: %w", id, err)
			}
			s.logger.WithFields(log.Fields{
				"order_id": id,
				"number":   stored.ShortNumber(),
			}).Info("order created")
			return s.Aggregate(stored), nil
		}
		if !errors.Is(err, domain.ErrOrderNumberConflict) || !generated {
			return nil, fmt.Errorf("create order: %w", err)
		}
		s.logger.WithField("attempt", attempt).Warn("order number collision, regenerating")
	}
	return nil, ErrNumberExhausted
}

// UpdateHeader сохраняет поля заголовка агрегата. Связи и кэш агрегата не затрагиваются.
func (s *Service) UpdateHeader(ctx context.Context, aggregate *domain.Aggregate) error {
	if aggregate == nil || aggregate.ID == 0 {
		return fmt.Errorf("update order: %w", domain.ErrOrderNotFound)
	}
	if err := aggregate.Order.ValidateAmounts(); err != nil {
		return fmt.Errorf("update order %d: %w", aggregate.ID, err)
	}
	if err := s.orders.Update(ctx, aggregate.Order); err != nil {
		return fmt.Errorf("update order %d: %w", aggregate.ID, err)
	}
	return nil
}

// DeleteByID удаляет заказ вместе с позициями и корректировками.
func (s *Service) DeleteByID(ctx context.Context, id int64) (bool, error) {
	for _, cleaner := range s.cleaners {
		if err := cleaner.DeleteForOrder(ctx, id); err != nil {
			return false, fmt.Errorf("delete children of order %d: %w", id, err)
		}
	}
	deleted, err := s.orders.DeleteByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete order %d: %w", id, err)
	}
	if deleted {
		if s.metrics != nil {
			s.metrics.RecordDelete(entityName)
		}
		s.logger.WithField("order_id", id).Info("order deleted")
	}
	return deleted, nil
}
