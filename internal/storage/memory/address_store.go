package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// addressStoreInMemory хранит адреса и их привязку к покупателям.
type addressStoreInMemory struct {
	addresses *table[domain.Address]

	linksMu sync.RWMutex
	links   map[int64]map[int64]struct{}
}

// NewAddressStore возвращает in-memory хранилище адресов.
func NewAddressStore() domain.CustomerAddressStore {
	return &addressStoreInMemory{
		addresses: newTable[domain.Address](),
		links:     make(map[int64]map[int64]struct{}),
	}
}

func storedAddress(address domain.Address) domain.Address {
	address.ClearErrors()
	address.StateValue = ""
	return address
}

func (s *addressStoreInMemory) FindByID(_ context.Context, id int64) (domain.Address, error) {
	address, ok := s.addresses.get(id)
	if !ok {
		return domain.Address{}, domain.ErrAddressNotFound
	}
	return address, nil
}

// FindByCustomerID возвращает адреса покупателя в порядке создания.
func (s *addressStoreInMemory) FindByCustomerID(_ context.Context, customerID int64) ([]domain.Address, error) {
	s.linksMu.RLock()
	ids := make([]int64, 0, len(s.links[customerID]))
	for id := range s.links[customerID] {
		ids = append(ids, id)
	}
	s.linksMu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]domain.Address, 0, len(ids))
	for _, id := range ids {
		if address, ok := s.addresses.get(id); ok {
			result = append(result, address)
		}
	}
	return result, nil
}

func (s *addressStoreInMemory) Insert(_ context.Context, address domain.Address) (int64, error) {
	return s.addresses.insert(func(id int64) domain.Address {
		address = storedAddress(address)
		address.ID = id
		return address
	}), nil
}

func (s *addressStoreInMemory) Update(_ context.Context, address domain.Address) error {
	if !s.addresses.update(address.ID, storedAddress(address)) {
		return domain.ErrAddressNotFound
	}
	return nil
}

// DeleteByID удаляет адрес вместе с привязками к покупателям.
func (s *addressStoreInMemory) DeleteByID(_ context.Context, id int64) (bool, error) {
	if !s.addresses.delete(id) {
		return false, nil
	}
	s.linksMu.Lock()
	for _, ids := range s.links {
		delete(ids, id)
	}
	s.linksMu.Unlock()
	return true, nil
}

// LinkToCustomer привязывает адрес к покупателю.
func (s *addressStoreInMemory) LinkToCustomer(_ context.Context, customerID, addressID int64) error {
	if _, ok := s.addresses.get(addressID); !ok {
		return domain.ErrAddressNotFound
	}
	s.linksMu.Lock()
	defer s.linksMu.Unlock()
	if s.links[customerID] == nil {
		s.links[customerID] = make(map[int64]struct{})
	}
	s.links[customerID][addressID] = struct{}{}
	return nil
}

var _ domain.AddressStore = (*addressStoreInMemory)(nil)
