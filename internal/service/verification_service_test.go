package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campusarena/campus-arena-api/internal/domain"
)

type memResetRepo struct {
	nextID int64
	rows   map[string]*domain.PasswordResetToken
}

func newMemResetRepo() *memResetRepo {
	return &memResetRepo{rows: map[string]*domain.PasswordResetToken{}}
}

func (r *memResetRepo) Create(ctx context.Context, email, token string, expiresAt time.Time) (*domain.PasswordResetToken, error) {
	r.nextID++
	row := &domain.PasswordResetToken{ID: r.nextID, Email: email, Token: token, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	r.rows[token] = row
	return row, nil
}

func (r *memResetRepo) FindByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	row, ok := r.rows[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *row
	return &copied, nil
}

func (r *memResetRepo) DeleteByEmail(ctx context.Context, email string) error {
	for token, row := range r.rows {
		if row.Email == email {
			delete(r.rows, token)
		}
	}
	return nil
}

func (r *memResetRepo) DeleteByID(ctx context.Context, id int64) error {
	for token, row := range r.rows {
		if row.ID == id {
			delete(r.rows, token)
		}
	}
	return nil
}

func (r *memResetRepo) DeleteIfExpired(ctx context.Context, token string, now time.Time) (bool, error) {
	row, ok := r.rows[token]
	if !ok || !row.ExpiresAt.Before(now) {
		return false, nil
	}
	delete(r.rows, token)
	return true, nil
}

type memOTPRepo struct {
	rows map[string]*domain.OTPToken
}

func newMemOTPRepo() *memOTPRepo {
	return &memOTPRepo{rows: map[string]*domain.OTPToken{}}
}

func (r *memOTPRepo) Upsert(ctx context.Context, email, code string, expiresAt time.Time) (*domain.OTPToken, error) {
	row := &domain.OTPToken{Email: email, Code: code, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	r.rows[email] = row
	return row, nil
}

func (r *memOTPRepo) FindByEmail(ctx context.Context, email string) (*domain.OTPToken, error) {
	row, ok := r.rows[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *row
	return &copied, nil
}

func (r *memOTPRepo) DeleteByEmail(ctx context.Context, email string) error {
	delete(r.rows, email)
	return nil
}

func (r *memOTPRepo) DeleteIfExpired(ctx context.Context, email string, now time.Time) (bool, error) {
	row, ok := r.rows[email]
	if !ok || !row.ExpiresAt.Before(now) {
		return false, nil
	}
	delete(r.rows, email)
	return true, nil
}

func newVerificationForTests(resets *memResetRepo, otps *memOTPRepo, users *fakeUserRepo) (*VerificationService, *time.Time) {
	svc := NewVerificationService(resets, otps, users, time.Hour, 10*time.Minute)
	clock := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	return svc, &clock
}

func TestIssueResetTokenSupersedesPrevious(t *testing.T) {
	ctx := context.Background()
	resets := newMemResetRepo()
	svc, _ := newVerificationForTests(resets, newMemOTPRepo(), &fakeUserRepo{})

	first, err := svc.IssueResetToken(ctx, "Student@Uni.edu ")
	if err != nil {
		t.Fatalf("issue first token: %v", err)
	}
	second, err := svc.IssueResetToken(ctx, "student@uni.edu")
	if err != nil {
		t.Fatalf("issue second token: %v", err)
	}
	if first == second {
		t.Fatal("expected a fresh token on reissue")
	}

	if _, err := svc.ValidateResetToken(ctx, first); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("superseded token should be gone, got %v", err)
	}
	email, err := svc.ValidateResetToken(ctx, second)
	if err != nil {
		t.Fatalf("latest token should validate: %v", err)
	}
	if email != "student@uni.edu" {
		t.Fatalf("expected normalized email, got %q", email)
	}
	if len(resets.rows) != 1 {
		t.Fatalf("expected exactly one stored token, got %d", len(resets.rows))
	}
}

func TestValidateResetTokenRetainsRow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationForTests(newMemResetRepo(), newMemOTPRepo(), &fakeUserRepo{})

	token, err := svc.IssueResetToken(ctx, "student@uni.edu")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.ValidateResetToken(ctx, token); err != nil {
			t.Fatalf("validation %d should not consume the token: %v", i, err)
		}
	}
}

func TestValidateResetTokenExpiryIsSelfCleaning(t *testing.T) {
	ctx := context.Background()
	resets := newMemResetRepo()
	svc, clock := newVerificationForTests(resets, newMemOTPRepo(), &fakeUserRepo{})

	token, err := svc.IssueResetToken(ctx, "student@uni.edu")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	*clock = clock.Add(time.Hour + time.Second)
	if _, err := svc.ValidateResetToken(ctx, token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if len(resets.rows) != 0 {
		t.Fatal("expired row should have been purged on read")
	}

	// The next attempt reports not-found: the row no longer exists.
	if _, err := svc.ValidateResetToken(ctx, token); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound after purge, got %v", err)
	}
}

func TestConsumeResetTokenIsSingleUse(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	users := &fakeUserRepo{findByEmailResult: &domain.User{ID: userID, Email: "student@uni.edu"}}
	svc, _ := newVerificationForTests(newMemResetRepo(), newMemOTPRepo(), users)

	token, err := svc.IssueResetToken(ctx, "student@uni.edu")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if err := svc.ConsumeResetToken(ctx, token, "FreshPass42"); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if users.updatePasswordInput.id != userID {
		t.Fatalf("expected password update for %s, got %s", userID, users.updatePasswordInput.id)
	}
	if len(users.updatePasswordInput.hash) == 0 || len(users.updatePasswordInput.salt) == 0 {
		t.Fatal("expected a derived hash and salt")
	}

	if err := svc.ConsumeResetToken(ctx, token, "AnotherPass42"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("second consume should fail with ErrTokenNotFound, got %v", err)
	}
}

func TestConsumeResetTokenExpiredBetweenValidateAndSubmit(t *testing.T) {
	ctx := context.Background()
	users := &fakeUserRepo{findByEmailResult: &domain.User{ID: uuid.New(), Email: "student@uni.edu"}}
	svc, clock := newVerificationForTests(newMemResetRepo(), newMemOTPRepo(), users)

	token, err := svc.IssueResetToken(ctx, "student@uni.edu")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := svc.ValidateResetToken(ctx, token); err != nil {
		t.Fatalf("validate: %v", err)
	}

	*clock = clock.Add(2 * time.Hour)
	if err := svc.ConsumeResetToken(ctx, token, "FreshPass42"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired on late submit, got %v", err)
	}
	if len(users.updatePasswordInput.hash) != 0 {
		t.Fatal("expired token must not update the password")
	}
}

func TestConsumeResetTokenAccountGoneLeavesToken(t *testing.T) {
	ctx := context.Background()
	users := &fakeUserRepo{findByEmailErr: sql.ErrNoRows}
	svc, _ := newVerificationForTests(newMemResetRepo(), newMemOTPRepo(), users)

	token, err := svc.IssueResetToken(ctx, "student@uni.edu")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if err := svc.ConsumeResetToken(ctx, token, "FreshPass42"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	// The token survives the failed attempt.
	if _, err := svc.ValidateResetToken(ctx, token); err != nil {
		t.Fatalf("token should remain valid after account lookup failure: %v", err)
	}
}

func TestIssueOrReplaceOTPFormat(t *testing.T) {
	ctx := context.Background()
	otps := newMemOTPRepo()
	svc, _ := newVerificationForTests(newMemResetRepo(), otps, &fakeUserRepo{})

	code, err := svc.IssueOrReplaceOTP(ctx, "student@uni.edu")
	if err != nil {
		t.Fatalf("issue otp: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected a 6-digit code, got %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("code must be numeric, got %q", code)
		}
	}
	if otps.rows["student@uni.edu"] == nil {
		t.Fatal("expected the code stored under the normalized email")
	}
}

func TestVerifyOTPMatchConsumesCode(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationForTests(newMemResetRepo(), newMemOTPRepo(), &fakeUserRepo{})

	code, err := svc.IssueOrReplaceOTP(ctx, "Student@Uni.edu")
	if err != nil {
		t.Fatalf("issue otp: %v", err)
	}

	if err := svc.VerifyOTP(ctx, "student@uni.edu", code); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := svc.VerifyOTP(ctx, "student@uni.edu", code); !errors.Is(err, ErrOTPNotFound) {
		t.Fatalf("code is single use, expected ErrOTPNotFound, got %v", err)
	}
}

func TestVerifyOTPMismatchRetainsCode(t *testing.T) {
	ctx := context.Background()
	otps := newMemOTPRepo()
	svc, _ := newVerificationForTests(newMemResetRepo(), otps, &fakeUserRepo{})

	code, err := svc.IssueOrReplaceOTP(ctx, "student@uni.edu")
	wrong := "000000"
	if wrong == code {
		wrong = "999999"
	}
	if err != nil {
		t.Fatalf("issue otp: %v", err)
	}

	if err := svc.VerifyOTP(ctx, "student@uni.edu", wrong); !errors.Is(err, ErrOTPMismatch) {
		t.Fatalf("expected ErrOTPMismatch, got %v", err)
	}
	// A failed guess does not burn the real code.
	if err := svc.VerifyOTP(ctx, "student@uni.edu", code); err != nil {
		t.Fatalf("correct code should still work after a mismatch: %v", err)
	}
}

func TestVerifyOTPExpiredIsSelfCleaning(t *testing.T) {
	ctx := context.Background()
	otps := newMemOTPRepo()
	svc, clock := newVerificationForTests(newMemResetRepo(), otps, &fakeUserRepo{})

	code, err := svc.IssueOrReplaceOTP(ctx, "student@uni.edu")
	if err != nil {
		t.Fatalf("issue otp: %v", err)
	}

	*clock = clock.Add(11 * time.Minute)
	if err := svc.VerifyOTP(ctx, "student@uni.edu", code); !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}
	if len(otps.rows) != 0 {
		t.Fatal("expired otp row should have been purged on read")
	}
	if err := svc.VerifyOTP(ctx, "student@uni.edu", code); !errors.Is(err, ErrOTPNotFound) {
		t.Fatalf("expected ErrOTPNotFound after purge, got %v", err)
	}
}

func TestVerifyOTPWithoutRequest(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationForTests(newMemResetRepo(), newMemOTPRepo(), &fakeUserRepo{})

	if err := svc.VerifyOTP(ctx, "nobody@uni.edu", "123456"); !errors.Is(err, ErrOTPNotFound) {
		t.Fatalf("expected ErrOTPNotFound, got %v", err)
	}
}

func TestIssueOrReplaceOTPReplacesCode(t *testing.T) {
	ctx := context.Background()
	otps := newMemOTPRepo()
	svc, _ := newVerificationForTests(newMemResetRepo(), otps, &fakeUserRepo{})

	first, err := svc.IssueOrReplaceOTP(ctx, "student@uni.edu")
	if err != nil {
		t.Fatalf("issue first otp: %v", err)
	}
	second, err := svc.IssueOrReplaceOTP(ctx, "student@uni.edu")
	if err != nil {
		t.Fatalf("issue second otp: %v", err)
	}
	if len(otps.rows) != 1 {
		t.Fatalf("expected a single otp row per email, got %d", len(otps.rows))
	}

	if first != second {
		if err := svc.VerifyOTP(ctx, "student@uni.edu", first); !errors.Is(err, ErrOTPMismatch) {
			t.Fatalf("replaced code should mismatch, got %v", err)
		}
	}
	if err := svc.VerifyOTP(ctx, "student@uni.edu", second); err != nil {
		t.Fatalf("latest code should verify: %v", err)
	}
}
