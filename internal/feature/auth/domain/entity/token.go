package entity

import "time"

// PasswordResetToken is a single-use expiring token for the password reset
// flow. Only the argon2 hash of the token is stored; the plaintext is sent
// to the user once and never persisted. At most one live token exists per
// user: issuing a new one deletes all prior rows for that user.
type PasswordResetToken struct {
	ID uint `gorm:"primaryKey"`

	// UserID owns the token. Deleting the user cascades the deletion.
	UserID uint `gorm:"not null;index"`
	User   User `gorm:"constraint:OnDelete:CASCADE"`

	// TokenHash is the argon2id hash of the plaintext token.
	TokenHash string `gorm:"uniqueIndex;size:255;not null"`

	// ExpiresAt bounds the token's lifetime. Expired rows are removed by the
	// cleanup sweep.
	ExpiresAt time.Time `gorm:"not null"`

	CreatedAt time.Time
}

// EmailVerificationToken is the email-verification counterpart of
// PasswordResetToken. The two flows share the same lifecycle but live in
// separate tables so one purpose can never consume the other's tokens.
type EmailVerificationToken struct {
	ID uint `gorm:"primaryKey"`

	UserID uint `gorm:"not null;index"`
	User   User `gorm:"constraint:OnDelete:CASCADE"`

	TokenHash string `gorm:"uniqueIndex;size:255;not null"`

	ExpiresAt time.Time `gorm:"not null"`

	CreatedAt time.Time
}
