// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents an identity record. Accounts created through the external
// OAuth provider carry a random placeholder password hash that can never
// validate against a real password.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// FullName is the user's display name. Nil until the user (or an OAuth
	// claim) provides one.
	FullName *string `gorm:"size:255"`

	// Email is the unique login identifier. Lookups compare it
	// case-insensitively.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// PasswordHash is the argon2id hash of the user's password.
	PasswordHash string `gorm:"size:255;not null"`

	// EmailVerifiedAt is nil until the user proves ownership of the address.
	EmailVerifiedAt *time.Time

	// IsLocked mirrors "LockedAt is set and the lockout window has not yet
	// elapsed". The lockout policy self-heals the flag once the window
	// passes.
	IsLocked bool `gorm:"not null;default:false"`

	// FailedLoginAttempts counts consecutive failed credential checks.
	FailedLoginAttempts int `gorm:"not null;default:0"`

	// LockedAt records when the account entered the locked state.
	LockedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsEmailVerified returns true if the user has verified their email address.
func (u *User) IsEmailVerified() bool {
	return u.EmailVerifiedAt != nil
}

// ShouldBeLocked reports whether the failed-attempt counter has reached the
// configured maximum. The comparison is >=, so the Nth failure triggers the
// lock.
func (u *User) ShouldBeLocked(maxAttempts int) bool {
	return u.FailedLoginAttempts >= maxAttempts
}

// CanUnlockAt returns the instant the lockout window elapses. The second
// return value is false when the account is not locked.
func (u *User) CanUnlockAt(lockoutDuration time.Duration) (time.Time, bool) {
	if !u.IsLocked || u.LockedAt == nil {
		return time.Time{}, false
	}
	return u.LockedAt.Add(lockoutDuration), true
}
