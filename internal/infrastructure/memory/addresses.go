package memory

import (
	"context"
	"sort"
	"sync"

	addressdomain "storeadmin/backend/internal/domain/address"
)

// AddressRepository keeps addresses in a map guarded by a mutex.
type AddressRepository struct {
	mu        sync.RWMutex
	addresses map[string]*addressdomain.Address
}

// NewAddressRepository returns an empty repository.
func NewAddressRepository() *AddressRepository {
	return &AddressRepository{addresses: make(map[string]*addressdomain.Address)}
}

var _ addressdomain.Repository = (*AddressRepository)(nil)

// Create stores address, clearing other defaults of the same user first.
func (r *AddressRepository) Create(_ context.Context, address *addressdomain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if address.IsDefault {
		r.clearDefaultLocked(address.UserID, address.ID)
	}
	a := *address
	r.addresses[a.ID] = &a
	return nil
}

// GetByID returns the address when it belongs to userID.
func (r *AddressRepository) GetByID(_ context.Context, userID, id string) (*addressdomain.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.addresses[id]
	if !ok || a.UserID != userID {
		return nil, addressdomain.ErrAddressNotFound
	}
	cp := *a
	return &cp, nil
}

// ListByUser returns the default address first, then newest first.
func (r *AddressRepository) ListByUser(_ context.Context, userID string) ([]*addressdomain.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*addressdomain.Address, 0)
	for _, a := range r.addresses {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update replaces a stored address owned by the same user.
func (r *AddressRepository) Update(_ context.Context, address *addressdomain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.addresses[address.ID]
	if !ok || existing.UserID != address.UserID {
		return addressdomain.ErrAddressNotFound
	}
	if address.IsDefault {
		r.clearDefaultLocked(address.UserID, address.ID)
	}
	a := *address
	r.addresses[a.ID] = &a
	return nil
}

// Delete removes an address owned by userID.
func (r *AddressRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.addresses[id]
	if !ok || a.UserID != userID {
		return addressdomain.ErrAddressNotFound
	}
	delete(r.addresses, id)
	return nil
}

func (r *AddressRepository) clearDefaultLocked(userID, keepID string) {
	for id, a := range r.addresses {
		if a.UserID == userID && id != keepID && a.IsDefault {
			a.IsDefault = false
		}
	}
}
