package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// LineItemStore — in-memory позиции; дочерние записи удаляются явно, каскада нет.
type LineItemStore interface {
	domain.LineItemStore
	DeleteForOrder(ctx context.Context, orderID int64) error
}

// AdjustmentStore — in-memory корректировки с явным удалением по заказу.
type AdjustmentStore interface {
	domain.AdjustmentStore
	DeleteForOrder(ctx context.Context, orderID int64) error
}

// lineItemStoreInMemory хранит позиции заказов.
type lineItemStoreInMemory struct {
	items *table[domain.LineItem]
}

// NewLineItemStore возвращает in-memory хранилище позиций.
func NewLineItemStore() LineItemStore {
	return &lineItemStoreInMemory{items: newTable[domain.LineItem]()}
}

// Add сохраняет позицию и возвращает её идентификатор.
func (s *lineItemStoreInMemory) Add(_ context.Context, item domain.LineItem) (int64, error) {
	if err := item.Validate(); err != nil {
		return 0, fmt.Errorf("add line item: %w", err)
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	return s.items.insert(func(id int64) domain.LineItem {
		item.ID = id
		return item
	}), nil
}

// LoadAllForOrder возвращает позиции заказа в порядке добавления.
func (s *lineItemStoreInMemory) LoadAllForOrder(_ context.Context, orderID int64) ([]domain.LineItem, error) {
	return s.items.list(func(item domain.LineItem) bool { return item.OrderID == orderID }), nil
}

// DeleteForOrder удаляет все позиции заказа.
func (s *lineItemStoreInMemory) DeleteForOrder(_ context.Context, orderID int64) error {
	for _, item := range s.items.list(func(item domain.LineItem) bool { return item.OrderID == orderID }) {
		s.items.delete(item.ID)
	}
	return nil
}

// adjustmentStoreInMemory хранит корректировки заказов.
type adjustmentStoreInMemory struct {
	adjustments *table[domain.Adjustment]
}

// NewAdjustmentStore возвращает in-memory хранилище корректировок.
func NewAdjustmentStore() AdjustmentStore {
	return &adjustmentStoreInMemory{adjustments: newTable[domain.Adjustment]()}
}

// Add сохраняет корректировку и возвращает её идентификатор.
func (s *adjustmentStoreInMemory) Add(_ context.Context, adj domain.Adjustment) (int64, error) {
	return s.adjustments.insert(func(id int64) domain.Adjustment {
		adj.ID = id
		return adj
	}), nil
}

func (s *adjustmentStoreInMemory) LoadAllForOrder(_ context.Context, orderID int64) ([]domain.Adjustment, error) {
	return s.adjustments.list(func(adj domain.Adjustment) bool { return adj.OrderID == orderID }), nil
}

// DeleteForOrder удаляет все корректировки заказа.
func (s *adjustmentStoreInMemory) DeleteForOrder(_ context.Context, orderID int64) error {
	for _, adj := range s.adjustments.list(func(adj domain.Adjustment) bool { return adj.OrderID == orderID }) {
		s.adjustments.delete(adj.ID)
	}
	return nil
}

var (
	_ domain.LineItemLoader   = (*lineItemStoreInMemory)(nil)
	_ domain.AdjustmentLoader = (*adjustmentStoreInMemory)(nil)
)
