package auth

import "context"

// UserRepository defines persistence operations for auth users.
type UserRepository interface {
	// Create stores a new user. A second user with the same email, compared
	// case-insensitively, fails with ErrEmailExists.
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]*User, error)
}

// UserFilter allows narrowing user queries.
type UserFilter struct {
	Role UserRole
}
