package address

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "storeadmin/backend/internal/domain/address"
	authdomain "storeadmin/backend/internal/domain/auth"
	"storeadmin/backend/internal/validation"
)

const defaultConflictMessage = "Another default address was saved at the same time. Please try again."

// Service encapsulates address book use cases. Every call is scoped to the
// authenticated user's id.
type Service struct {
	repo      domain.Repository
	validator *validation.Validator
	nowFunc   func() time.Time
}

// NewService constructs an address service.
func NewService(repo domain.Repository) *Service {
	return &Service{
		repo:      repo,
		validator: validation.New(),
		nowFunc:   time.Now,
	}
}

// CreateInput contains the payload required for address creation.
type CreateInput struct {
	FullName     string      `json:"full_name"`
	Phone        string      `json:"phone"`
	AddressLine1 string      `json:"address_line1"`
	AddressLine2 string      `json:"address_line2"`
	City         string      `json:"city"`
	State        string      `json:"state"`
	PostalCode   string      `json:"postal_code"`
	Country      string      `json:"country"`
	IsDefault    bool        `json:"is_default"`
	Type         domain.Type `json:"type"`
}

// UpdateInput encapsulates partial address updates.
type UpdateInput = domain.Patch

// List returns the user's addresses, default first.
func (s *Service) List(ctx context.Context, userID string) ([]*domain.Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns one of the user's addresses.
func (s *Service) Get(ctx context.Context, userID, id string) (*domain.Address, error) {
	if !validID(id) {
		return nil, domain.ErrAddressNotFound
	}
	return s.repo.GetByID(ctx, userID, id)
}

// Create validates and stores a new address for userID.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*domain.Address, error) {
	now := s.nowFunc().UTC()
	a := &domain.Address{
		ID:           uuid.NewString(),
		UserID:       userID,
		FullName:     in.FullName,
		Phone:        in.Phone,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		City:         in.City,
		State:        in.State,
		PostalCode:   in.PostalCode,
		Country:      in.Country,
		IsDefault:    in.IsDefault,
		Type:         in.Type,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.prepare(a); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, defaultConflictField(err)
	}
	return a, nil
}

// Update applies a partial update to one of the user's addresses.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*domain.Address, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	a.Apply(in)
	a.UpdatedAt = s.nowFunc().UTC()
	if err := s.prepare(a); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, defaultConflictField(err)
	}
	return a, nil
}

// Delete removes one of the user's addresses.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return domain.ErrAddressNotFound
	}
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) prepare(a *domain.Address) error {
	a.FullName = strings.TrimSpace(a.FullName)
	a.Phone = strings.TrimSpace(a.Phone)
	a.AddressLine1 = strings.TrimSpace(a.AddressLine1)
	a.AddressLine2 = strings.TrimSpace(a.AddressLine2)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.TrimSpace(a.Country)
	a.ApplyDefaults()
	return s.validator.Struct(a)
}

// defaultConflictField reports a lost default-address race on is_default.
func defaultConflictField(err error) error {
	if errors.Is(err, domain.ErrDefaultConflict) {
		return authdomain.FieldError("is_default", defaultConflictMessage)
	}
	return err
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
