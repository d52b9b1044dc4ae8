package domain

import (
	"context"
	"time"
)

// AddressStore описывает хранилище адресов.
type AddressStore interface {
	// FindByID возвращает адрес или ErrAddressNotFound.
	FindByID(ctx context.Context, id int64) (Address, error)
	// FindByCustomerID возвращает адреса, привязанные к покупателю.
	FindByCustomerID(ctx context.Context, customerID int64) ([]Address, error)
	// Insert сохраняет новый адрес и возвращает выданный идентификатор.
	Insert(ctx context.Context, address Address) (int64, error)
	// Update перезаписывает существующий адрес или возвращает ErrAddressNotFound.
	Update(ctx context.Context, address Address) error
	// DeleteByID удаляет адрес; false означает, что удалять было нечего.
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

// CustomerAddressStore — хранилище адресов с привязкой адреса к покупателю.
type CustomerAddressStore interface {
	AddressStore
	LinkToCustomer(ctx context.Context, customerID, addressID int64) error
}

// PaymentMethodStore описывает хранилище способов оплаты.
type PaymentMethodStore interface {
	FindByID(ctx context.Context, id int64) (PaymentMethod, error)
	FindAll(ctx context.Context) ([]PaymentMethod, error)
	// FindAllByFrontendEnabled фильтрует способы оплаты по флагу frontendEnabled.
	FindAllByFrontendEnabled(ctx context.Context, enabled bool) ([]PaymentMethod, error)
	Insert(ctx context.Context, method PaymentMethod) (int64, error)
	Update(ctx context.Context, method PaymentMethod) error
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

// OrderStore описывает хранилище заголовков заказов (без позиций и корректировок).
type OrderStore interface {
	FindByID(ctx context.Context, id int64) (Order, error)
	FindByNumber(ctx context.Context, number string) (Order, error)
	Insert(ctx context.Context, order Order) (int64, error)
	Update(ctx context.Context, order Order) error
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

// LineItemLoader загружает позиции заказа в стабильном порядке.
type LineItemLoader interface {
	LoadAllForOrder(ctx context.Context, orderID int64) ([]LineItem, error)
}

// AdjustmentLoader загружает корректировки заказа.
type AdjustmentLoader interface {
	LoadAllForOrder(ctx context.Context, orderID int64) ([]Adjustment, error)
}

// LineItemStore добавляет и загружает позиции заказа.
type LineItemStore interface {
	LineItemLoader
	// Add отклоняет позицию с отрицательным количеством (ErrNegativeQuantity).
	Add(ctx context.Context, item LineItem) (int64, error)
}

// AdjustmentStore добавляет и загружает корректировки заказа.
type AdjustmentStore interface {
	AdjustmentLoader
	Add(ctx context.Context, adj Adjustment) (int64, error)
}

// CustomerLoader загружает покупателя или возвращает ErrCustomerNotFound.
type CustomerLoader interface {
	CustomerByID(ctx context.Context, id int64) (Customer, error)
}

// ShippingMethodLoader находит способ доставки по handle или возвращает ErrShippingMethodNotFound.
type ShippingMethodLoader interface {
	ShippingMethodByHandle(ctx context.Context, handle string) (ShippingMethod, error)
}

// GeoLookup — справочник стран и регионов.
type GeoLookup interface {
	StateByID(ctx context.Context, id int64) (State, error)
	CountryByID(ctx context.Context, id int64) (Country, error)
}

// Lookups объединяет справочники, которые хранилище отдаёт одним объектом.
type Lookups interface {
	CustomerLoader
	ShippingMethodLoader
	GeoLookup
}

// CurrencyPrecision сообщает количество знаков после запятой для валюты.
type CurrencyPrecision interface {
	DecimalsFor(currencyCode string) int
}

// EditAuthorizer решает, можно ли редактировать оформленный заказ.
type EditAuthorizer interface {
	CanManageOrders(ctx context.Context) bool
}

// AssociationResolver загружает связанные с заказом сущности.
// Если связанной записи нет, возвращается nil или пустой срез без ошибки.
type AssociationResolver interface {
	LineItems(ctx context.Context, orderID int64) ([]LineItem, error)
	Adjustments(ctx context.Context, orderID int64) ([]Adjustment, error)
	Address(ctx context.Context, id int64) (*Address, error)
	Customer(ctx context.Context, id int64) (*Customer, error)
	PaymentMethod(ctx context.Context, id int64) (*PaymentMethod, error)
	ShippingMethod(ctx context.Context, handle string) (*ShippingMethod, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(ctx context.Context, msg OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// OutboxPurger удаляет обработанные (sent и failed) сообщения outbox.
type OutboxPurger interface {
	// PurgeProcessed удаляет до limit сообщений, обновлённых не позже before, и возвращает их число.
	PurgeProcessed(ctx context.Context, before time.Time, limit int) (int, error)
}

// OutboxStore — outbox вместе с очисткой обработанных сообщений.
type OutboxStore interface {
	OutboxRepository
	OutboxPurger
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
