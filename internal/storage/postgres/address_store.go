package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

const addressColumns = `
	id, first_name, last_name, address1, address2, city, zip_code, phone,
	alternative_phone, business_name, business_tax_id, country_id, state_id, state_name`

type addressStore struct {
	store *Store
}

// NewAddressStore создаёт PostgreSQL-реализацию AddressStore.
func NewAddressStore(store *Store) domain.CustomerAddressStore {
	return &addressStore{store: store}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddress(row rowScanner) (domain.Address, error) {
	var (
		address domain.Address
		stateID sql.NullInt64
	)
	err := row.Scan(
		&address.ID, &address.FirstName, &address.LastName, &address.Address1, &address.Address2,
		&address.City, &address.ZipCode, &address.Phone, &address.AlternativePhone,
		&address.BusinessName, &address.BusinessTaxID, &address.CountryID, &stateID, &address.StateName,
	)
	if err != nil {
		return domain.Address{}, err
	}
	address.StateID = stateID.Int64
	return address, nil
}

func (r *addressStore) FindByID(ctx context.Context, id int64) (domain.Address, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	address, err := scanAddress(r.store.db.QueryRowContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Address{}, domain.ErrAddressNotFound
		}
		return domain.Address{}, fmt.Errorf("select address: %w", err)
	}
	return address, nil
}

func (r *addressStore) FindByCustomerID(ctx context.Context, customerID int64) ([]domain.Address, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT `+addressColumns+`
		FROM addresses
		WHERE id IN (SELECT address_id FROM customer_addresses WHERE customer_id = $1)
		ORDER BY id
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer addresses: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Address, 0)
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan address row: %w", err)
		}
		result = append(result, address)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate address rows: %w", err)
	}
	return result, nil
}

func (r *addressStore) Insert(ctx context.Context, address domain.Address) (int64, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	var id int64
	err := r.store.db.QueryRowContext(ctx, `
		INSERT INTO addresses (
			first_name, last_name, address1, address2, city, zip_code, phone,
			alternative_phone, business_name, business_tax_id, country_id, state_id, state_name,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$14)
		RETURNING id
	`,
		address.FirstName, address.LastName, address.Address1, address.Address2, address.City,
		address.ZipCode, address.Phone, address.AlternativePhone, address.BusinessName,
		address.BusinessTaxID, address.CountryID, nullID(address.StateID), address.StateName, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert address: %w", err)
	}
	return id, nil
}

func (r *addressStore) Update(ctx context.Context, address domain.Address) error {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	res, err := r.store.db.ExecContext(ctx, `
		UPDATE addresses
		SET first_name = $2,
		    last_name = $3,
		    address1 = $4,
		    address2 = $5,
		    city = $6,
		    zip_code = $7,
		    phone = $8,
		    alternative_phone = $9,
		    business_name = $10,
		    business_tax_id = $11,
		    country_id = $12,
		    state_id = $13,
		    state_name = $14,
		    updated_at = $15
		WHERE id = $1
	`,
		address.ID, address.FirstName, address.LastName, address.Address1, address.Address2,
		address.City, address.ZipCode, address.Phone, address.AlternativePhone, address.BusinessName,
		address.BusinessTaxID, address.CountryID, nullID(address.StateID), address.StateName, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}
	return requireAffected(res, domain.ErrAddressNotFound)
}

func (r *addressStore) DeleteByID(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.store, "addresses", id)
}

// LinkToCustomer привязывает адрес к покупателю; повторная привязка ничего не меняет.
func (r *addressStore) LinkToCustomer(ctx context.Context, customerID, addressID int64) error {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	if _, err := r.store.db.ExecContext(ctx, `
		INSERT INTO customer_addresses (customer_id, address_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, customerID, addressID); err != nil {
		return fmt.Errorf("link address to customer: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

// deleteByID удаляет строку по первичному ключу; table подставляется только из констант пакета.
func deleteByID(ctx context.Context, store *Store, table string, id int64) (bool, error) {
	ctx, cancel := store.withTimeout(ctx)
	defer cancel()

	res, err := store.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

var _ domain.AddressStore = (*addressStore)(nil)
