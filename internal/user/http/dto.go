package http

import (
	"time"

	"github.com/carrent/rental-backend/internal/pkg/request"
	"github.com/carrent/rental-backend/internal/user"
)

// ListUsersRequest defines query parameters for listing users.
type ListUsersRequest struct {
	request.ListParams
	Role        string `form:"role" binding:"omitempty,oneof=customer staff admin driver"`
	Email       string `form:"email"`
	DisplayName string `form:"display_name"`
	IsActive    *bool  `form:"is_active"`
	SortBy      string `form:"sort_by" binding:"omitempty,oneof=display_name email created_at"`
}

// UserResponse is the shape of user data returned in API responses.
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Username    *string    `json:"username"`
	Phone       *string    `json:"phone"`
	DisplayName *string    `json:"display_name"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
	IsActive    bool       `json:"is_active"`
}

// UserTag is a brief representation of a user.
type UserTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewUserResponse converts domain user.User to UserResponse used by the API.
func NewUserResponse(u *user.User) UserResponse {
	var lastLoginAt *time.Time
	if u.LastLoginAt != nil {
		ll := *u.LastLoginAt
		lastLoginAt = &ll
	}

	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Phone:       u.Phone,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
		LastLoginAt: lastLoginAt,
		IsActive:    u.IsActive,
	}
}

// NewUserTag builds a tag, falling back to the email when there is no display name.
func NewUserTag(u *user.User) UserTag {
	name := u.Email
	if u.DisplayName != nil {
		name = *u.DisplayName
	}
	return UserTag{ID: u.ID, Name: name}
}

// RegisterRequest defines the payload for user registration.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required"`
	Username    string `json:"username" binding:"omitempty,alphanum,min=3,max=32"`
	Phone       string `json:"phone" binding:"omitempty,max=32"`
}

// CreateUserRequest is the back-office variant of RegisterRequest with an explicit role.
type CreateUserRequest struct {
	RegisterRequest
	Role string `json:"role" binding:"required,oneof=customer staff admin driver"`
}

// LoginRequest accepts an email or a username as identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required_without=Email"`
	Email      string `json:"email" binding:"omitempty,email"`
	Password   string `json:"password" binding:"required"`
}

// LoginIdentifier prefers the explicit identifier over the legacy email field.
func (r *LoginRequest) LoginIdentifier() string {
	if r.Identifier != "" {
		return r.Identifier
	}
	return r.Email
}

// UpdateUserRequest defines fields allowed to be updated via PATCH /users/:id.
// Use pointers to distinguish between "field not sent" and "field sent as false/empty".
type UpdateUserRequest struct {
	DisplayName *string `json:"display_name"`
	Phone       *string `json:"phone" binding:"omitempty,max=32"`
	Role        *string `json:"role" binding:"omitempty,oneof=customer staff admin driver"`
	IsActive    *bool   `json:"is_active"`
}

// LoginResponse returns the token and user info.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// MeResponse returns the current user info.
type MeResponse struct {
	User UserResponse `json:"user"`
}
