package http

import "time"

type ForgotPasswordRequest struct {
	Identifier string `json:"identifier" binding:"required,max=255"`
	Method     string `json:"method" binding:"omitempty,oneof=email sms"`
}

type ForgotPasswordResponse struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
	// Code is only present outside production.
	Code string `json:"code,omitempty"`
}

type VerifyCodeRequest struct {
	Identifier string `json:"identifier" binding:"required,max=255"`
	Code       string `json:"code" binding:"required,len=6,numeric"`
}

type VerifyCodeResponse struct {
	ResetToken string    `json:"resetToken"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ResetPasswordRequest keeps the camelCase keys existing clients send.
type ResetPasswordRequest struct {
	ResetToken      string `json:"resetToken" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}
