package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

const paymentMethodColumns = `id, name, payment_type, class, frontend_enabled, settings`

type paymentMethodStore struct {
	store *Store
}

// NewPaymentMethodStore создаёт PostgreSQL-реализацию PaymentMethodStore.
// Настройки шлюза хранятся в JSONB.
func NewPaymentMethodStore(store *Store) domain.PaymentMethodStore {
	return &paymentMethodStore{store: store}
}

func scanPaymentMethod(row rowScanner) (domain.PaymentMethod, error) {
	var (
		method      domain.PaymentMethod
		paymentType string
		settings    []byte
	)
	if err := row.Scan(&method.ID, &method.Name, &paymentType, &method.Class, &method.FrontendEnabled, &settings); err != nil {
		return domain.PaymentMethod{}, err
	}
	method.PaymentType = domain.PaymentType(paymentType)
	method.Settings = map[string]any{}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &method.Settings); err != nil {
			return domain.PaymentMethod{}, fmt.Errorf("decode payment method settings: %w", err)
		}
	}
	return method, nil
}

func encodeSettings(settings map[string]any) ([]byte, error) {
	if settings == nil {
		settings = map[string]any{}
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encode payment method settings: %w", err)
	}
	return raw, nil
}

func (r *paymentMethodStore) FindByID(ctx context.Context, id int64) (domain.PaymentMethod, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	method, err := scanPaymentMethod(r.store.db.QueryRowContext(ctx,
		`SELECT `+paymentMethodColumns+` FROM payment_methods WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PaymentMethod{}, domain.ErrPaymentMethodNotFound
		}
		return domain.PaymentMethod{}, fmt.Errorf("select payment method: %w", err)
	}
	return method, nil
}

func (r *paymentMethodStore) FindAll(ctx context.Context) ([]domain.PaymentMethod, error) {
	return r.list(ctx, `SELECT `+paymentMethodColumns+` FROM payment_methods ORDER BY id`)
}

func (r *paymentMethodStore) FindAllByFrontendEnabled(ctx context.Context, enabled bool) ([]domain.PaymentMethod, error) {
	return r.list(ctx, `
		SELECT `+paymentMethodColumns+`
		FROM payment_methods
		WHERE frontend_enabled = $1
		ORDER BY id
	`, enabled)
}

func (r *paymentMethodStore) list(ctx context.Context, query string, args ...any) ([]domain.PaymentMethod, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	result := make([]domain.PaymentMethod, 0)
	for rows.Next() {
		method, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment method row: %w", err)
		}
		result = append(result, method)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment method rows: %w", err)
	}
	return result, nil
}

func (r *paymentMethodStore) Insert(ctx context.Context, method domain.PaymentMethod) (int64, error) {
	settings, err := encodeSettings(method.Settings)
	if err != nil {
		return 0, err
	}

	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	var id int64
	if err := r.store.db.QueryRowContext(ctx, `
		INSERT INTO payment_methods (name, payment_type, class, frontend_enabled, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`, method.Name, string(method.PaymentType), method.Class, method.FrontendEnabled, settings, now).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert payment method: %w", err)
	}
	return id, nil
}

func (r *paymentMethodStore) Update(ctx context.Context, method domain.PaymentMethod) error {
	settings, err := encodeSettings(method.Settings)
	if err != nil {
		return err
	}

	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	res, err := r.store.db.ExecContext(ctx, `
		UPDATE payment_methods
		SET name = $2,
		    payment_type = $3,
		    class = $4,
		    frontend_enabled = $5,
		    settings = $6,
		    updated_at = $7
		WHERE id = $1
	`, method.ID, method.Name, string(method.PaymentType), method.Class, method.FrontendEnabled, settings, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update payment method: %w", err)
	}
	return requireAffected(res, domain.ErrPaymentMethodNotFound)
}

func (r *paymentMethodStore) DeleteByID(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.store, "payment_methods", id)
}

var _ domain.PaymentMethodStore = (*paymentMethodStore)(nil)
