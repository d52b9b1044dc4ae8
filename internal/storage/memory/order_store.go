package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// orderStoreInMemory хранит заголовки заказов с уникальным номером.
type orderStoreInMemory struct {
	orders *table[domain.Order]

	// numbersMu сериализует проверку уникальности номера с записью.
	numbersMu sync.Mutex
}

// NewOrderStore возвращает in-memory хранилище заказов.
func NewOrderStore() domain.OrderStore {
	return &orderStoreInMemory{orders: newTable[domain.Order]()}
}

func (s *orderStoreInMemory) FindByID(_ context.Context, id int64) (domain.Order, error) {
	order, ok := s.orders.get(id)
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderStoreInMemory) FindByNumber(_ context.Context, number string) (domain.Order, error) {
	order, ok := s.orders.find(func(o domain.Order) bool { return o.Number == number })
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// Insert сохраняет заказ; повторный номер даёт ErrOrderNumberConflict.
func (s *orderStoreInMemory) Insert(_ context.Context, order domain.Order) (int64, error) {
	s.numbersMu.Lock()
	defer s.numbersMu.Unlock()

	if _, exists := s.orders.find(func(o domain.Order) bool { return o.Number == order.Number }); exists {
		return 0, domain.ErrOrderNumberConflict
	}

	now := time.Now().UTC()
	order.Normalize()
	return s.orders.insert(func(id int64) domain.Order {
		order.ID = id
		order.CreatedAt = now
		order.UpdatedAt = now
		return order
	}), nil
}

func (s *orderStoreInMemory) Update(_ context.Context, order domain.Order) error {
	s.numbersMu.Lock()
	defer s.numbersMu.Unlock()

	current, ok := s.orders.get(order.ID)
	if !ok {
		return domain.ErrOrderNotFound
	}
	if _, clash := s.orders.find(func(o domain.Order) bool {
		return o.Number == order.Number && o.ID != order.ID
	}); clash {
		return domain.ErrOrderNumberConflict
	}

	order.Normalize()
	order.CreatedAt = current.CreatedAt
	order.UpdatedAt = time.Now().UTC()
	s.orders.update(order.ID, order)
	return nil
}

func (s *orderStoreInMemory) DeleteByID(_ context.Context, id int64) (bool, error) {
	return s.orders.delete(id), nil
}

var _ domain.OrderStore = (*orderStoreInMemory)(nil)
