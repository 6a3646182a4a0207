package user

import (
	"net/http"
	"strings"
	"time"

	"github.com/carrent/rental-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email, username or phone already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusUnauthorized, "user is inactive")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password is too short")
	ErrInvalidRole        = apperror.New(http.StatusBadRequest, "invalid role")
)

// Role distinguishes customers, back-office users and drivers sharing the users table.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
	RoleDriver   Role = "driver"
)

// ParseRole normalizes a role string. Unknown values report false.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleStaff, RoleAdmin, RoleDriver:
		return r, true
	}
	return "", false
}

// IsBackOffice reports whether the role may act on other customers' bookings.
func (r Role) IsBackOffice() bool {
	return r == RoleAdmin || r == RoleStaff
}

// User represents a customer, staff member, admin or driver.
type User struct {
	ID           string // UUID
	Email        string
	Username     *string
	Phone        *string
	PasswordHash string
	DisplayName  *string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// Filter defines filter options for listing users.
type Filter struct {
	Role        Role
	Email       string
	DisplayName string
	IsActive    *bool // Use pointer to distinguish between false and nil (not set)

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
