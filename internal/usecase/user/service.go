package user

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domain "storeadmin/backend/internal/domain/auth"
)

// Service provides read-only user queries for administrators.
type Service struct {
	repo domain.UserRepository
}

// NewService constructs a user service around the provided repository.
func NewService(repo domain.UserRepository) *Service {
	return &Service{repo: repo}
}

// Filter captures supported filters for listing users.
type Filter struct {
	Role string
}

// Authorize returns ErrForbidden unless actor holds role.
func Authorize(actor *domain.User, role domain.UserRole) error {
	if actor == nil || actor.Role != role {
		return domain.ErrForbidden
	}
	return nil
}

// List returns users matching the supplied filter. An unknown role is a
// validation error on the role field.
func (s *Service) List(ctx context.Context, filter Filter) ([]*domain.User, error) {
	domainFilter := domain.UserFilter{}
	if raw := strings.TrimSpace(strings.ToLower(filter.Role)); raw != "" {
		role := domain.UserRole(raw)
		if !role.Valid() {
			return nil, domain.FieldError("role", "The selected role is invalid.")
		}
		domainFilter.Role = role
	}

	users, err := s.repo.List(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	return sanitizeUsers(users), nil
}

// Get retrieves a single user by its identifier.
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.PasswordHash = ""
	return &copy
}

func sanitizeUsers(items []*domain.User) []*domain.User {
	out := make([]*domain.User, 0, len(items))
	for _, item := range items {
		out = append(out, sanitizeUser(item))
	}
	return out
}
