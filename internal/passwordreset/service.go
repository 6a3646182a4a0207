package passwordreset

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carrent/rental-backend/internal/config"
	"github.com/carrent/rental-backend/internal/notify"
	"github.com/carrent/rental-backend/internal/pkg/apperror"
	"github.com/carrent/rental-backend/internal/user"
)

const codeDigits = 6

type Service interface {
	// IssueCode sends a verification code to the account behind identifier.
	// Unknown identifiers get the same answer as known ones.
	IssueCode(ctx context.Context, identifier, method string) (IssueResult, error)
	VerifyCode(ctx context.Context, identifier, code string) (VerifyResult, error)
	ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error
}

type service struct {
	store    *Store
	users    user.Service
	notifier notify.Notifier
	profile  config.ResetProfile
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(store *Store, users user.Service, notifier notify.Notifier, profile config.ResetProfile, log logrus.FieldLogger) Service {
	return &service{
		store:    store,
		users:    users,
		notifier: notifier,
		profile:  profile,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) IssueCode(ctx context.Context, identifier, method string) (IssueResult, error) {
	ident := user.NormalizeIdentifier(identifier)
	if ident == "" {
		return IssueResult{}, ErrIdentifierMissing
	}
	channel := notify.ChannelEmail
	if method != "" {
		var ok bool
		if channel, ok = notify.ParseChannel(method); !ok {
			return IssueResult{}, ErrInvalidMethod
		}
	}

	u, err := s.lookup(ctx, ident)
	if err != nil {
		return IssueResult{}, err
	}

	// Unknown identifiers are limited too so the 429 cannot tell them apart.
	subject := "ident:" + ident
	if u != nil {
		subject = "user:" + u.ID
	}
	now := s.now()
	allowed, err := s.store.Allow(ctx, subject, now, s.profile.IssueWindow, s.profile.MaxIssues)
	if err != nil {
		return IssueResult{}, err
	}
	if !allowed {
		return IssueResult{}, ErrRateLimited
	}

	result := IssueResult{ExpiresAt: now.Add(s.profile.CodeTTL)}
	if u == nil {
		s.log.WithField("identifier", ident).Debug("password reset requested for unknown account")
		return result, nil
	}

	code, err := generateCode()
	if err != nil {
		return IssueResult{}, err
	}
	if err := s.store.SaveCode(ctx, u.ID, hashSecret(u.ID, code), result.ExpiresAt, s.profile.CodeTTL+s.profile.TokenTTL); err != nil {
		return IssueResult{}, err
	}

	if err := s.deliver(ctx, u, channel, code); err != nil {
		if !s.profile.SwallowDeliveryErrors {
			return IssueResult{}, apperror.Wrap(err, http.StatusBadGateway, "failed to deliver verification code")
		}
		s.log.WithError(err).WithField("user_id", u.ID).Warn("verification code delivery failed")
	}

	if s.profile.ExposeCode {
		result.Code = code
	}
	return result, nil
}

func (s *service) VerifyCode(ctx context.Context, identifier, code string) (VerifyResult, error) {
	ident := user.NormalizeIdentifier(identifier)
	if ident == "" {
		return VerifyResult{}, ErrIdentifierMissing
	}
	u, err := s.lookup(ctx, ident)
	if err != nil {
		return VerifyResult{}, err
	}
	if u == nil {
		return VerifyResult{}, ErrInvalidCode
	}

	state, err := s.store.VerifyCode(ctx, u.ID, hashSecret(u.ID, code), s.now(), s.profile.MaxAttempts)
	if err != nil {
		return VerifyResult{}, err
	}
	if err := state.err(); err != nil {
		return VerifyResult{}, err
	}

	token, err := generateToken()
	if err != nil {
		return VerifyResult{}, err
	}
	if err := s.store.SaveToken(ctx, hashSecret("token", token), u.ID, s.profile.TokenTTL); err != nil {
		return VerifyResult{}, err
	}

	return VerifyResult{ResetToken: token, ExpiresAt: s.now().Add(s.profile.TokenTTL)}, nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if len(newPassword) < user.MinPasswordLength {
		return user.ErrPasswordTooShort
	}
	if token == "" {
		return ErrInvalidToken
	}

	userID, err := s.store.ConsumeToken(ctx, hashSecret("token", token))
	if err != nil {
		return err
	}
	if userID == "" {
		return ErrInvalidToken
	}

	if err := s.users.SetPassword(ctx, userID, newPassword); err != nil {
		return err
	}

	if err := s.store.DeleteCode(ctx, userID); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("failed to clear verification codes")
	}

	msg := notify.Message{
		Kind:      "password_reset.completed",
		Channel:   notify.ChannelEvent,
		To:        userID,
		CreatedAt: s.now(),
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("failed to publish password reset event")
	}
	return nil
}

// lookup returns nil without error when no account matches.
func (s *service) lookup(ctx context.Context, ident string) (*user.User, error) {
	u, err := s.users.FindByIdentifier(ctx, ident)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, nil
	}
	return u, nil
}

func (s *service) deliver(ctx context.Context, u *user.User, channel notify.Channel, code string) error {
	to := u.Email
	// Accounts without a phone number fall back to email.
	if channel == notify.ChannelSMS && u.Phone != nil && *u.Phone != "" {
		to = *u.Phone
	} else {
		channel = notify.ChannelEmail
	}

	minutes := int(s.profile.CodeTTL.Minutes())
	return s.notifier.Notify(ctx, notify.Message{
		Kind:    "password_reset.code",
		Channel: channel,
		To:      to,
		Subject: "Your password reset code",
		Body:    fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, minutes),
		Data: map[string]string{
			"user_id": u.ID,
			"code":    code,
		},
		CreatedAt: s.now(),
	})
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate verification code failed: %w", err)
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token failed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// hashSecret keeps codes and tokens out of Redis in plain text.
func hashSecret(scope, secret string) string {
	sum := sha256.Sum256([]byte(scope + ":" + secret))
	return hex.EncodeToString(sum[:])
}
