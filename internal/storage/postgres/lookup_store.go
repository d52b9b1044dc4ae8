package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// LookupStore — справочники с добавлением записей.
type LookupStore interface {
	domain.Lookups
	InsertCountry(ctx context.Context, country domain.Country) (int64, error)
	InsertState(ctx context.Context, state domain.State) (int64, error)
	InsertCustomer(ctx context.Context, customer domain.Customer) (int64, error)
	InsertShippingMethod(ctx context.Context, method domain.ShippingMethod) (int64, error)
}

type lookupStore struct {
	store *Store
}

// NewLookupStore создаёт справочники покупателей, стран, регионов и способов доставки.
func NewLookupStore(store *Store) LookupStore {
	return &lookupStore{store: store}
}

func (r *lookupStore) CustomerByID(ctx context.Context, id int64) (domain.Customer, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	var (
		customer domain.Customer
		userID   sql.NullInt64
	)
	err := r.store.db.QueryRowContext(ctx, `SELECT id, user_id, email FROM customers WHERE id = $1`, id).
		Scan(&customer.ID, &userID, &customer.Email)
	if err != nil {
		return domain.Customer{}, lookupError(err, domain.ErrCustomerNotFound, "customer")
	}
	customer.UserID = userID.Int64
	return customer, nil
}

func (r *lookupStore) ShippingMethodByHandle(ctx context.Context, handle string) (domain.ShippingMethod, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	var method domain.ShippingMethod
	err := r.store.db.QueryRowContext(ctx, `SELECT id, handle, name, enabled FROM shipping_methods WHERE handle = $1`, handle).
		Scan(&method.ID, &method.Handle, &method.Name, &method.Enabled)
	if err != nil {
		return domain.ShippingMethod{}, lookupError(err, domain.ErrShippingMethodNotFound, "shipping method")
	}
	return method, nil
}

func (r *lookupStore) StateByID(ctx context.Context, id int64) (domain.State, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	var state domain.State
	err := r.store.db.QueryRowContext(ctx, `SELECT id, country_id, name, abbreviation FROM states WHERE id = $1`, id).
		Scan(&state.ID, &state.CountryID, &state.Name, &state.Abbreviation)
	if err != nil {
		return domain.State{}, lookupError(err, domain.ErrStateNotFound, "state")
	}
	return state, nil
}

func (r *lookupStore) CountryByID(ctx context.Context, id int64) (domain.Country, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	var country domain.Country
	err := r.store.db.QueryRowContext(ctx, `SELECT id, name, iso FROM countries WHERE id = $1`, id).
		Scan(&country.ID, &country.Name, &country.ISO)
	if err != nil {
		return domain.Country{}, lookupError(err, domain.ErrCountryNotFound, "country")
	}
	return country, nil
}

// InsertCountry добавляет страну и возвращает её идентификатор.
func (r *lookupStore) InsertCountry(ctx context.Context, country domain.Country) (int64, error) {
	return r.insert(ctx, "country", `INSERT INTO countries (name, iso) VALUES ($1, $2) RETURNING id`,
		country.Name, country.ISO)
}

// InsertState добавляет регион и возвращает его идентификатор.
func (r *lookupStore) InsertState(ctx context.Context, state domain.State) (int64, error) {
	return r.insert(ctx, "state", `INSERT INTO states (country_id, name, abbreviation) VALUES ($1, $2, $3) RETURNING id`,
		state.CountryID, state.Name, state.Abbreviation)
}

// InsertCustomer добавляет покупателя и возвращает его идентификатор.
func (r *lookupStore) InsertCustomer(ctx context.Context, customer domain.Customer) (int64, error) {
	return r.insert(ctx, "customer", `INSERT INTO customers (user_id, email) VALUES ($1, $2) RETURNING id`,
		nullID(customer.UserID), customer.Email)
}

// InsertShippingMethod добавляет способ доставки и возвращает его идентификатор.
func (r *lookupStore) InsertShippingMethod(ctx context.Context, method domain.ShippingMethod) (int64, error) {
	return r.insert(ctx, "shipping method", `INSERT INTO shipping_methods (handle, name, enabled) VALUES ($1, $2, $3) RETURNING id`,
		method.Handle, method.Name, method.Enabled)
}

func (r *lookupStore) insert(ctx context.Context, entity, query string, args ...any) (int64, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	var id int64
	if err := r.store.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert %s: %w", entity, err)
	}
	return id, nil
}

func lookupError(err, notFound error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return fmt.Errorf("select %s: %w", entity, err)
}

var (
	_ domain.CustomerLoader       = (*lookupStore)(nil)
	_ domain.ShippingMethodLoader = (*lookupStore)(nil)
	_ domain.GeoLookup            = (*lookupStore)(nil)
)
