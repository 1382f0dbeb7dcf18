// Package memory holds in-process implementations of the repositories, used
// for local development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	authdomain "storeadmin/backend/internal/domain/auth"
)

// UserRepository keeps users in a map guarded by a mutex.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*authdomain.User
	byEmail map[string]string
}

// NewUserRepository returns an empty repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*authdomain.User),
		byEmail: make(map[string]string),
	}
}

var _ authdomain.UserRepository = (*UserRepository)(nil)

// Create stores a copy of user.
func (r *UserRepository) Create(_ context.Context, user *authdomain.User) error {
	key := strings.ToLower(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[key]; exists {
		return authdomain.ErrEmailExists
	}
	u := *user
	r.byID[u.ID] = &u
	r.byEmail[key] = u.ID
	return nil
}

// GetByEmail looks a user up case-insensitively.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*authdomain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, authdomain.ErrUserNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

// GetByID returns the user with the given id.
func (r *UserRepository) GetByID(_ context.Context, id string) (*authdomain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, authdomain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// List returns users ordered by creation time, newest first.
func (r *UserRepository) List(_ context.Context, filter authdomain.UserFilter) ([]*authdomain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*authdomain.User, 0, len(r.byID))
	for _, u := range r.byID {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}
