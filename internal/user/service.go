package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carrent/rental-backend/internal/auth"
)

const MinPasswordLength = 8

// RegisterRequest carries the self-service sign-up fields. New accounts are always customers.
type RegisterRequest struct {
	Email       string
	Password    string
	DisplayName string
	Username    string
	Phone       string
}

// CreateRequest is used by the back office to create staff, driver or customer accounts.
type CreateRequest struct {
	RegisterRequest
	Role Role
}

// UpdateRequest defines the fields that can be updated.
type UpdateRequest struct {
	DisplayName *string
	Phone       *string
	Role        *Role
	IsActive    *bool
}

// Service defines business logic related to users.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Create(ctx context.Context, req CreateRequest) (*User, error)
	Login(ctx context.Context, identifier, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
	List(ctx context.Context, filter Filter) ([]*User, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*User, error)
	// SetPassword validates, hashes and stores a new password.
	SetPassword(ctx context.Context, id string, plain string) error
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher
	log    logrus.FieldLogger
}

// NewService creates a new user Service.
func NewService(repo Repository, hasher auth.PasswordHasher, log logrus.FieldLogger) Service {
	return &service{
		repo:   repo,
		hasher: hasher,
		log:    log,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	return s.Create(ctx, CreateRequest{RegisterRequest: req, Role: RoleCustomer})
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*User, error) {
	cleanEmail := NormalizeIdentifier(req.Email)
	if cleanEmail == "" {
		return nil, ErrEmailRequired
	}

	if len(req.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	role, ok := ParseRole(string(req.Role))
	if !ok {
		return nil, ErrInvalidRole
	}

	// Check if email is already used.
	_, err := s.repo.GetByEmail(ctx, cleanEmail)
	if err == nil {
		return nil, ErrEmailAlreadyUsed
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Email:        cleanEmail,
		Username:     optional(NormalizeIdentifier(req.Username)),
		Phone:        optional(strings.TrimSpace(req.Phone)),
		PasswordHash: hash,
		DisplayName:  optional(strings.TrimSpace(req.DisplayName)),
		Role:         role,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *service) Login(ctx context.Context, identifier, password string) (*User, error) {
	clean := NormalizeIdentifier(identifier)
	if clean == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.FindByIdentifier(ctx, clean)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if !u.IsActive {
		return nil, ErrInactiveUser
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Best effort; a failed stamp must not fail the login.
	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Warn("failed to update last login")
	} else {
		u.LastLoginAt = &now
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	clean := NormalizeIdentifier(identifier)
	if clean == "" {
		return nil, ErrNotFound
	}
	return s.repo.FindByIdentifier(ctx, clean)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*User, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		u.DisplayName = optional(strings.TrimSpace(*req.DisplayName))
	}
	if req.Phone != nil {
		u.Phone = optional(strings.TrimSpace(*req.Phone))
	}
	if req.Role != nil {
		role, ok := ParseRole(string(*req.Role))
		if !ok {
			return nil, ErrInvalidRole
		}
		u.Role = role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) SetPassword(ctx context.Context, id string, plain string) error {
	if len(plain) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, id, hash)
}

// NormalizeIdentifier trims spaces and lowercases an email or username.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
