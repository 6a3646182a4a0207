package passwordreset

import (
	"net/http"
	"time"

	"github.com/carrent/rental-backend/internal/pkg/apperror"
)

var (
	ErrRateLimited       = apperror.New(http.StatusTooManyRequests, "too many verification codes requested, try again later")
	ErrExpired           = apperror.New(http.StatusBadRequest, "verification code has expired")
	ErrAttemptsExceeded  = apperror.New(http.StatusBadRequest, "too many incorrect attempts, request a new code")
	ErrInvalidCode       = apperror.New(http.StatusBadRequest, "invalid verification code")
	ErrInvalidToken      = apperror.New(http.StatusNotFound, "reset token is invalid or has expired")
	ErrPasswordMismatch  = apperror.New(http.StatusBadRequest, "passwords do not match")
	ErrInvalidMethod     = apperror.New(http.StatusBadRequest, "method must be email or sms")
	ErrIdentifierMissing = apperror.New(http.StatusBadRequest, "identifier is required")
)

// IssueResult tells the caller when the code expires.
// Code is only filled when the profile exposes codes.
type IssueResult struct {
	ExpiresAt time.Time
	Code      string
}

// VerifyResult carries the reset token handed out after a correct code.
type VerifyResult struct {
	ResetToken string
	ExpiresAt  time.Time
}

// codeState is what verifyScript reports back.
type codeState int64

const (
	codeMissing  codeState = 0
	codeOK       codeState = 1
	codeExpired  codeState = -1
	codeExceeded codeState = -2
	codeWrong    codeState = -3
)

func (s codeState) err() error {
	switch s {
	case codeOK:
		return nil
	case codeExpired:
		return ErrExpired
	case codeExceeded:
		return ErrAttemptsExceeded
	default:
		return ErrInvalidCode
	}
}
