package mail

import (
	"fmt"
	"time"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/usecase"
)

// Notifier renders and sends the authentication lifecycle emails.
type Notifier struct {
	sender Sender
	appURL string
}

var _ usecase.MailNotifier = (*Notifier)(nil)

// NewNotifier creates a Notifier. appURL is the public base URL used to
// build links back into the application.
func NewNotifier(sender Sender, appURL string) *Notifier {
	return &Notifier{sender: sender, appURL: appURL}
}

// displayName returns the user's full name, falling back to "there" for
// accounts that never set one.
func displayName(user *entity.User) string {
	if user.FullName != nil && *user.FullName != "" {
		return *user.FullName
	}
	return "there"
}

// SendVerificationEmail asks the user to confirm their address. The link
// embeds the plaintext token; only its hash is stored server-side.
func (n *Notifier) SendVerificationEmail(user *entity.User, token string) error {
	link := fmt.Sprintf("%s/verify-email/%s", n.appURL, token)
	body := fmt.Sprintf(`
		<h1>Verify your email address</h1>
		<p>Hello %s,</p>
		<p>Please confirm your email address by clicking the link below.</p>
		<p><a href="%s">Verify email address</a></p>
		<p>If you did not create an account, you can ignore this email.</p>`,
		displayName(user), link)

	return n.sender.SendHTML(user.Email, "Verify your email address", body)
}

// SendPasswordReset delivers the reset link.
func (n *Notifier) SendPasswordReset(user *entity.User, token string) error {
	link := fmt.Sprintf("%s/reset-password/%s", n.appURL, token)
	body := fmt.Sprintf(`
		<h1>Reset your password</h1>
		<p>Hello %s,</p>
		<p>We received a request to reset the password for your account.</p>
		<p><a href="%s">Reset password</a></p>
		<p>This link expires shortly. If you did not request a reset, no
		action is needed and your password remains unchanged.</p>`,
		displayName(user), link)

	return n.sender.SendHTML(user.Email, "Reset your password", body)
}

// SendAccountLocked warns the owner that repeated failed sign-ins locked
// the account.
func (n *Notifier) SendAccountLocked(user *entity.User, lockoutDuration time.Duration) error {
	minutes := int(lockoutDuration.Minutes())
	body := fmt.Sprintf(`
		<h1>Your account has been locked</h1>
		<p>Hello %s,</p>
		<p>Your account was locked after too many failed sign-in attempts.
		It will unlock automatically in %d minutes.</p>
		<p>If this was not you, we recommend resetting your password once
		the account unlocks: <a href="%s/forgot-password">Reset password</a>.</p>`,
		displayName(user), minutes, n.appURL)

	return n.sender.SendHTML(user.Email, "Your account has been locked", body)
}

// SendWelcome greets the user once their email address is verified.
func (n *Notifier) SendWelcome(user *entity.User) error {
	body := fmt.Sprintf(`
		<h1>Welcome aboard</h1>
		<p>Hello %s,</p>
		<p>Your email address is verified and your account is ready to use.</p>
		<p><a href="%s/login">Sign in</a></p>`,
		displayName(user), n.appURL)

	return n.sender.SendHTML(user.Email, "Welcome!", body)
}
