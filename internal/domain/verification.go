package domain

import "time"

// PasswordResetToken is a high-entropy single-use secret delivered by link.
// At most one valid token exists per email; issuing a new one deletes all
// earlier rows for that address.
type PasswordResetToken struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Token     string    `db:"token" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// OTPToken is a 6-digit signup code. Email is the primary key, so reissuing
// a code upserts the existing row rather than adding another.
type OTPToken struct {
	Email     string    `db:"email" json:"email"`
	Code      string    `db:"code" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
