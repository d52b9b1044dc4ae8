package memory

import (
	"context"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// LookupStore — справочники с заполнением через Put*.
type LookupStore interface {
	domain.Lookups
	PutCustomer(customer domain.Customer)
	PutCountry(country domain.Country)
	PutState(state domain.State)
	PutShippingMethod(method domain.ShippingMethod)
}

// lookupStoreInMemory — справочники покупателей, стран, регионов и способов доставки.
type lookupStoreInMemory struct {
	customers *table[domain.Customer]
	countries *table[domain.Country]
	states    *table[domain.State]
	shipping  *table[domain.ShippingMethod]
}

// NewLookupStore возвращает пустые in-memory справочники.
func NewLookupStore() LookupStore {
	return &lookupStoreInMemory{
		customers: newTable[domain.Customer](),
		countries: newTable[domain.Country](),
		states:    newTable[domain.State](),
		shipping:  newTable[domain.ShippingMethod](),
	}
}

// PutCustomer добавляет или заменяет покупателя.
func (s *lookupStoreInMemory) PutCustomer(customer domain.Customer) {
	s.customers.put(customer.ID, customer)
}

// PutCountry добавляет или заменяет страну.
func (s *lookupStoreInMemory) PutCountry(country domain.Country) {
	s.countries.put(country.ID, country)
}

// PutState добавляет или заменяет регион.
func (s *lookupStoreInMemory) PutState(state domain.State) {
	s.states.put(state.ID, state)
}

// PutShippingMethod добавляет или заменяет способ доставки.
func (s *lookupStoreInMemory) PutShippingMethod(method domain.ShippingMethod) {
	s.shipping.put(method.ID, method)
}

func (s *lookupStoreInMemory) CustomerByID(_ context.Context, id int64) (domain.Customer, error) {
	customer, ok := s.customers.get(id)
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

func (s *lookupStoreInMemory) ShippingMethodByHandle(_ context.Context, handle string) (domain.ShippingMethod, error) {
	method, ok := s.shipping.find(func(m domain.ShippingMethod) bool { return m.Handle == handle })
	if !ok {
		return domain.ShippingMethod{}, domain.ErrShippingMethodNotFound
	}
	return method, nil
}

func (s *lookupStoreInMemory) StateByID(_ context.Context, id int64) (domain.State, error) {
	state, ok := s.states.get(id)
	if !ok {
		return domain.State{}, domain.ErrStateNotFound
	}
	return state, nil
}

func (s *lookupStoreInMemory) CountryByID(_ context.Context, id int64) (domain.Country, error) {
	country, ok := s.countries.get(id)
	if !ok {
		return domain.Country{}, domain.ErrCountryNotFound
	}
	return country, nil
}

var (
	_ domain.CustomerLoader       = (*lookupStoreInMemory)(nil)
	_ domain.ShippingMethodLoader = (*lookupStoreInMemory)(nil)
	_ domain.GeoLookup            = (*lookupStoreInMemory)(nil)
)
