package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

type lineItemStore struct {
	store *Store
}

// NewLineItemStore создаёт PostgreSQL-хранилище позиций заказа.
func NewLineItemStore(store *Store) domain.LineItemStore {
	return &lineItemStore{store: store}
}

// Add сохраняет позицию и возвращает её идентификатор.
func (r *lineItemStore) Add(ctx context.Context, item domain.LineItem) (int64, error) {
	if err := item.Validate(); err != nil {
		return 0, fmt.Errorf("insert line item: %w", err)
	}
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := r.store.db.QueryRowContext(ctx, `
		INSERT INTO line_items (
			order_id, qty, price, sale_amount, weight, length, width, height,
			tax, tax_included, discount, shipping_cost, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id
	`,
		item.OrderID, item.Qty, item.Price, item.SaleAmount, item.Weight, item.Length, item.Width,
		item.Height, item.Tax, item.TaxIncluded, item.Discount, item.ShippingCost, item.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert line item: %w", err)
	}
	return id, nil
}

// LoadAllForOrder возвращает позиции заказа в порядке добавления.
func (r *lineItemStore) LoadAllForOrder(ctx context.Context, orderID int64) ([]domain.LineItem, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, order_id, qty, price, sale_amount, weight, length, width, height,
		       tax, tax_included, discount, shipping_cost, created_at
		FROM line_items
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.LineItem, 0)
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.Qty, &item.Price, &item.SaleAmount,
			&item.Weight, &item.Length, &item.Width, &item.Height,
			&item.Tax, &item.TaxIncluded, &item.Discount, &item.ShippingCost, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate line items: %w", err)
	}
	return items, nil
}

type adjustmentStore struct {
	store *Store
}

// NewAdjustmentStore создаёт PostgreSQL-хранилище корректировок заказа.
func NewAdjustmentStore(store *Store) domain.AdjustmentStore {
	return &adjustmentStore{store: store}
}

// Add сохраняет корректировку и возвращает её идентификатор.
func (r *adjustmentStore) Add(ctx context.Context, adj domain.Adjustment) (int64, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	var id int64
	if err := r.store.db.QueryRowContext(ctx, `
		INSERT INTO adjustments (order_id, type, name, description, amount, included)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, adj.OrderID, string(adj.Type), adj.Name, adj.Description, adj.Amount, adj.Included).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert adjustment: %w", err)
	}
	return id, nil
}

func (r *adjustmentStore) LoadAllForOrder(ctx context.Context, orderID int64) ([]domain.Adjustment, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, order_id, type, name, description, amount, included
		FROM adjustments
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load adjustments: %w", err)
	}
	defer rows.Close()

	adjs := make([]domain.Adjustment, 0)
	for rows.Next() {
		var (
			adj     domain.Adjustment
			adjType string
		)
		if err := rows.Scan(&adj.ID, &adj.OrderID, &adjType, &adj.Name, &adj.Description, &adj.Amount, &adj.Included); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		adj.Type = domain.AdjustmentType(adjType)
		adjs = append(adjs, adj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate adjustments: %w", err)
	}
	return adjs, nil
}

var (
	_ domain.LineItemLoader   = (*lineItemStore)(nil)
	_ domain.AdjustmentLoader = (*adjustmentStore)(nil)
)
