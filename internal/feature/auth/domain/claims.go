// Package domain defines transport-independent auth types shared between
// the guards and the platform's OAuth provider client.
package domain

import "time"

// Claims are the identity attributes asserted by the external OAuth
// provider about an authenticated subject.
type Claims struct {
	// Subject is the provider's stable identifier for the user.
	Subject string

	// Email is the verified email claim, when the provider supplies one.
	Email string

	// Username is an alternate identity claim used when Email is absent.
	Username string

	// Name is the display name claim.
	Name string

	// ExpiresAt is the expiry of the ID token the claims were read from.
	ExpiresAt time.Time
}

// Identity returns the stable identifier used to map the claims onto a
// local user record: the email claim when present, otherwise the username
// claim. An empty return means the claims carry no usable identity.
func (c *Claims) Identity() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Username
}
