package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"

	domain "storeadmin/backend/internal/domain/auth"
	"storeadmin/backend/internal/validation"
)

const emailTakenMessage = "The email has already been taken."

// Service coordinates authentication workflows between domain and infrastructure.
type Service struct {
	users     domain.UserRepository
	tokens    TokenIssuer
	validator *validation.Validator
	logger    *slog.Logger
	cost      int
	dummyHash []byte
	nowFunc   func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// WithLogger sets the logger used for auth events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs an auth service.
func NewService(users domain.UserRepository, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		users:     users,
		tokens:    tokens,
		validator: validation.New(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		cost:      bcrypt.DefaultCost,
		nowFunc:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Unknown emails are compared against this hash so a failed login costs
	// the same whether or not the account exists.
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.cost)
	return s
}

// Signup validates the registration, stores the user with a hashed password
// and returns it without the hash. It never issues a token.
func (s *Service) Signup(ctx context.Context, in domain.Registration) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	vErr := domain.NewValidationError()
	if err := s.validator.Struct(in); err != nil {
		if !errors.As(err, &vErr) {
			return nil, err
		}
	}

	if !vErr.Has("email") {
		_, err := s.users.GetByEmail(ctx, in.Email)
		switch {
		case err == nil:
			vErr.Add("email", emailTakenMessage)
		case !errors.Is(err, domain.ErrUserNotFound):
			return nil, err
		}
	}
	if !vErr.Empty() {
		return nil, vErr
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, oops.Code("PASSWORD_HASH_FAILED").Wrap(err)
	}

	now := s.nowFunc().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         in.Name,
		Phone:        in.Phone,
		Role:         domain.RoleUser,
		PasswordHash: string(hashed),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same email.
		if errors.Is(err, domain.ErrEmailExists) {
			return nil, domain.FieldError("email", emailTakenMessage)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return sanitizeUser(user), nil
}

// Login validates credentials and returns a fresh token plus user.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (string, *domain.User, error) {
	creds.Email = normalizeEmail(creds.Email)
	if err := s.validator.Struct(creds); err != nil {
		return "", nil, err
	}

	user, err := s.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(creds.Password))
			s.logger.InfoContext(ctx, "login failed", "reason", "unknown email")
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		s.logger.InfoContext(ctx, "login failed", "reason", "wrong password", "user_id", user.ID)
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return token, sanitizeUser(user), nil
}

// Logout revokes token. Revoking an unknown or already revoked token succeeds.
func (s *Service) Logout(ctx context.Context, token string) error {
	err := s.tokens.Revoke(ctx, token)
	if errors.Is(err, domain.ErrTokenNotFound) {
		s.logger.DebugContext(ctx, "logout of unknown token")
		return nil
	}
	return err
}

// VerifyToken resolves a bearer token and returns the associated user.
func (s *Service) VerifyToken(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.PasswordHash = ""
	return &copy
}
