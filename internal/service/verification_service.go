package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/campusarena/campus-arena-api/internal/domain"
	"github.com/campusarena/campus-arena-api/internal/repository/ports"
	"github.com/campusarena/campus-arena-api/internal/util"
)

var (
	ErrTokenNotFound   = errors.New("reset token not found")
	ErrTokenExpired    = errors.New("reset token expired")
	ErrOTPNotFound     = errors.New("no verification code requested for this email")
	ErrOTPExpired      = errors.New("verification code expired")
	ErrOTPMismatch     = errors.New("verification code does not match")
	ErrAccountNotFound = errors.New("account not found")
)

const otpDigits = 6

// VerificationService owns the two short-lived single-use secrets bound to
// an email address: password-reset tokens (opaque, 1 hour, delivered by
// link) and signup OTP codes (6 digits, 10 minutes, delivered by email).
// Expired rows are purged lazily on the first access attempt; there is no
// background sweeper.
type VerificationService struct {
	resets ports.ResetTokenRepository
	otps   ports.OTPRepository
	users  ports.UserRepository

	resetTTL time.Duration
	otpTTL   time.Duration
	now      func() time.Time
}

func NewVerificationService(resets ports.ResetTokenRepository, otps ports.OTPRepository, users ports.UserRepository, resetTTL, otpTTL time.Duration) *VerificationService {
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	return &VerificationService{
		resets:   resets,
		otps:     otps,
		users:    users,
		resetTTL: resetTTL,
		otpTTL:   otpTTL,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IssueResetToken supersedes any earlier tokens for the email and returns a
// fresh one. It deliberately does not check whether the email belongs to an
// account; that decision belongs to the caller, which must respond
// identically either way to avoid account enumeration.
func (s *VerificationService) IssueResetToken(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)

	if err := s.resets.DeleteByEmail(ctx, email); err != nil {
		return "", err
	}

	token, err := util.GenerateResetToken()
	if err != nil {
		return "", err
	}

	if _, err := s.resets.Create(ctx, email, token, s.now().Add(s.resetTTL)); err != nil {
		return "", err
	}
	return token, nil
}

// ValidateResetToken returns the email the token was issued for. The row is
// retained so the reset page can validate before the final submit.
func (s *VerificationService) ValidateResetToken(ctx context.Context, token string) (string, error) {
	reset, err := s.lookupReset(ctx, token)
	if err != nil {
		return "", err
	}
	return reset.Email, nil
}

func (s *VerificationService) lookupReset(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	reset, err := s.resets.FindByToken(ctx, token)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	now := s.now()
	if reset.ExpiresAt.Before(now) {
		// Conditional delete: a concurrent validator racing on the same
		// expired row cannot resurrect it or double-report deletion.
		if _, err := s.resets.DeleteIfExpired(ctx, token, now); err != nil {
			return nil, err
		}
		return nil, ErrTokenExpired
	}
	return reset, nil
}

// ConsumeResetToken re-checks the token (expiry may have passed since
// validation), updates the account credential and only then deletes the
// token. A failed account update leaves the token consumable for retry.
func (s *VerificationService) ConsumeResetToken(ctx context.Context, token, newPassword string) error {
	reset, err := s.lookupReset(ctx, token)
	if err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, reset.Email)
	if err != nil {
		if isNotFound(err) {
			return ErrAccountNotFound
		}
		return err
	}

	hash, salt, err := util.DerivePassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, salt); err != nil {
		return err
	}

	return s.resets.DeleteByID(ctx, reset.ID)
}

// IssueOrReplaceOTP upserts the one OTP row for the email. The code is a
// fixed-width numeric string; leading zeros are significant.
func (s *VerificationService) IssueOrReplaceOTP(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)

	code, err := util.GenerateNumericOTP(otpDigits)
	if err != nil {
		return "", err
	}

	if _, err := s.otps.Upsert(ctx, email, code, s.now().Add(s.otpTTL)); err != nil {
		return "", err
	}
	return code, nil
}

// VerifyOTP consumes the code on a match. A mismatch keeps the row so the
// user can retry until expiry.
func (s *VerificationService) VerifyOTP(ctx context.Context, email, submittedCode string) error {
	email = normalizeEmail(email)

	otp, err := s.otps.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return ErrOTPNotFound
		}
		return err
	}

	now := s.now()
	if otp.ExpiresAt.Before(now) {
		if _, err := s.otps.DeleteIfExpired(ctx, email, now); err != nil {
			return err
		}
		return ErrOTPExpired
	}

	if strings.TrimSpace(submittedCode) != otp.Code {
		return ErrOTPMismatch
	}

	return s.otps.DeleteByEmail(ctx, email)
}
