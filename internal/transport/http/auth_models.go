package http

import "time"

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid credentials"`
}

// AuthUser models the sanitized user representation returned by auth endpoints.
type AuthUser struct {
	ID               string    `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	Email            string    `json:"email" example:"student@uni.edu"`
	Username         *string   `json:"username,omitempty" example:"arenauser"`
	FullName         *string   `json:"full_name,omitempty" example:"Arena Student"`
	AvatarURL        *string   `json:"avatar_url,omitempty" example:"https://cdn.example.com/avatar.png"`
	Department       *string   `json:"department,omitempty" example:"Computer Science"`
	GraduationYear   *int      `json:"graduation_year,omitempty" example:"2027"`
	Bio              *string   `json:"bio,omitempty"`
	Interests        []string  `json:"interests,omitempty"`
	EmailVerified    bool      `json:"email_verified" example:"true"`
	ProfileCompleted bool      `json:"profile_completed" example:"true"`
	CreatedAt        time.Time `json:"created_at" example:"2026-01-01T12:00:00Z"`
	UpdatedAt        time.Time `json:"updated_at" example:"2026-01-02T09:30:00Z"`
}

// AuthTokenResponse is returned by endpoints that issue JWT tokens.
type AuthTokenResponse struct {
	Token     string   `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt string   `json:"expires_at" example:"2026-01-02T09:30:00Z"`
	User      AuthUser `json:"user"`
}

// SuccessResponse denotes a simple success flag.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// RegisterRequest carries email registration fields.
type RegisterRequest struct {
	Email    string `json:"email" example:"student@uni.edu"`
	Password string `json:"password" example:"StrongPass23"`
}

// LoginRequest carries email login fields.
type LoginRequest struct {
	Email    string `json:"email" example:"student@uni.edu"`
	Password string `json:"password" example:"StrongPass23"`
}

// GoogleLoginRequest carries the Google ID token for login.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" example:"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// SendOTPRequest asks for a signup verification code.
type SendOTPRequest struct {
	Email string `json:"email" example:"student@uni.edu"`
}

// VerifyOTPRequest confirms the signup verification code.
type VerifyOTPRequest struct {
	Email string `json:"email" example:"student@uni.edu"`
	Code  string `json:"code" example:"042391"`
}

// ForgotPasswordRequest starts the password reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" example:"student@uni.edu"`
}

// ResetPasswordRequest completes the password reset flow.
type ResetPasswordRequest struct {
	Token       string `json:"token" example:"5yyn3Jv0aQ..."`
	NewPassword string `json:"new_password" example:"NewPass45"`
}

// ChangePasswordRequest captures the payload for password updates.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" example:"OldPass23"`
	NewPassword     string `json:"new_password" example:"NewPass45"`
}
