package service

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"

	"github.com/campusarena/campus-arena-api/internal/domain"
	"github.com/campusarena/campus-arena-api/internal/repository/ports"
	"github.com/campusarena/campus-arena-api/internal/util"
)

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email address not verified")
	ErrInvalidGoogleToken = errors.New("invalid google token")
)

// Mailer delivers the verification emails. Implemented by transport/mail.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
	SendOTP(ctx context.Context, email, code string) error
}

type AuthService struct {
	users        ports.UserRepository
	groups       ports.GroupRepository
	verification *VerificationService
	mailer       Mailer
	jwt          *util.JWTManager
	googleAud    string

	// checkMX validates the email domain before an OTP is sent. Injected
	// so tests do not hit DNS.
	checkMX func(email string) error

	defaultGroups []string
}

func NewAuthService(users ports.UserRepository, groups ports.GroupRepository, verification *VerificationService, mailer Mailer, jwtManager *util.JWTManager, googleAud string, checkMX func(string) error, defaultGroups []string) *AuthService {
	if checkMX == nil {
		checkMX = func(string) error { return nil }
	}
	return &AuthService{
		users:         users,
		groups:        groups,
		verification:  verification,
		mailer:        mailer,
		jwt:           jwtManager,
		googleAud:     googleAud,
		checkMX:       checkMX,
		defaultGroups: defaultGroups,
	}
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Register creates an unverified account, enrolls it in the default groups
// and emails a signup OTP.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if err := validateEmailFormat(email); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateEmailUser(ctx, email, hash, salt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.enrollDefaultGroups(ctx, user.ID)

	if err := s.sendSignupCode(ctx, email); err != nil {
		return nil, err
	}
	return user, nil
}

// SendSignupOTP issues (or reissues) the signup code after an email format
// and MX check. Reissuing replaces the previous code.
func (s *AuthService) SendSignupOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateEmailFormat(email); err != nil {
		return err
	}
	if err := s.checkMX(email); err != nil {
		return ErrInvalidEmail
	}
	return s.sendSignupCode(ctx, email)
}

func (s *AuthService) sendSignupCode(ctx context.Context, email string) error {
	code, err := s.verification.IssueOrReplaceOTP(ctx, email)
	if err != nil {
		return err
	}
	return s.mailer.SendOTP(ctx, email, code)
}

// VerifySignupOTP consumes the code and activates the account.
func (s *AuthService) VerifySignupOTP(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if err := s.verification.VerifyOTP(ctx, email, code); err != nil {
		return err
	}
	return s.users.MarkEmailVerified(ctx, email)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return s.issueToken(user)
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, idTok string) (*AuthResult, error) {
	payload, err := idtoken.Validate(ctx, idTok, s.googleAud)
	if err != nil {
		return nil, ErrInvalidGoogleToken
	}

	email, _ := payload.Claims["email"].(string)
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidGoogleToken
	}

	var fullName, picture *string
	if name, ok := payload.Claims["name"].(string); ok && name != "" {
		fullName = &name
	}
	if pic, ok := payload.Claims["picture"].(string); ok && pic != "" {
		picture = &pic
	}

	user, err := s.users.UpsertGoogleUser(ctx, email, fullName, picture)
	if err != nil {
		return nil, err
	}

	s.enrollDefaultGroups(ctx, user.ID)

	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email, user.Username, user.ProfileCompleted)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, errors.New("invalid or expired token")
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.New("account no longer exists")
		}
		return nil, err
	}
	return user, nil
}

// ForgotPassword issues a reset token and emails the link. When the email
// does not belong to an account it silently does nothing; callers must
// respond identically in both cases.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	token, err := s.verification.IssueResetToken(ctx, email)
	if err != nil {
		return err
	}
	return s.mailer.SendPasswordReset(ctx, email, token)
}

func (s *AuthService) ValidateResetToken(ctx context.Context, token string) (string, error) {
	return s.verification.ValidateResetToken(ctx, token)
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := util.ValidatePassword(newPassword); err != nil {
		return err
	}
	return s.verification.ConsumeResetToken(ctx, token, newPassword)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return ErrAccountNotFound
		}
		return err
	}
	if !util.VerifyPassword(currentPassword, user.PasswordSalt, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := util.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, salt, err := util.DerivePassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash, salt)
}

// enrollDefaultGroups joins the user to the campus-wide default groups.
// Joins are idempotent upserts, so repeated onboarding is harmless, and a
// failure here never blocks registration.
func (s *AuthService) enrollDefaultGroups(ctx context.Context, userID uuid.UUID) {
	for _, name := range s.defaultGroups {
		group, err := s.groups.EnsureDefault(ctx, name)
		if err != nil {
			log.Printf("enroll default group %q: %v", name, err)
			continue
		}
		if err := s.groups.AddMember(ctx, group.ID, userID); err != nil {
			log.Printf("join default group %q: %v", name, err)
		}
	}
}

func validateEmailFormat(email string) error {
	if email == "" || strings.ContainsAny(email, " \t") {
		return ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}
