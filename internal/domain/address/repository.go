package address

import "context"

// Repository defines persistence behaviours for addresses. Every lookup is
// scoped to the owning user; an address of another user is ErrAddressNotFound.
//
// Create and Update clear the default flag on the user's other addresses in
// the same transaction when the saved address is the default.
type Repository interface {
	Create(ctx context.Context, address *Address) error
	GetByID(ctx context.Context, userID, id string) (*Address, error)
	ListByUser(ctx context.Context, userID string) ([]*Address, error)
	Update(ctx context.Context, address *Address) error
	Delete(ctx context.Context, userID, id string) error
}
