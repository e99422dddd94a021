package email

import (
	"context"
	"fmt"

	"github.com/prperemyshlev/siteauth/internal/domain"
)

// Notifier renders site-branded transactional emails and hands them to a
// Sender. Links point at the site's own frontend; the token is the only
// secret in them.
type Notifier struct {
	sender Sender
}

// NewNotifier creates a new Notifier.
func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

// SendVerificationEmail emails a fresh verification link.
func (n *Notifier) SendVerificationEmail(ctx context.Context, site *domain.Site, toEmail, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", site.FrontendURL, token)

	msg := Message{
		To:        toEmail,
		Subject:   fmt.Sprintf("Verify your email for %s", site.Name),
		FromEmail: site.EmailFrom,
		FromName:  site.EmailFromName,
		HTML: fmt.Sprintf(`<html><body>
<h2>Welcome to %s!</h2>
<p>Please verify your email address by clicking the link below:</p>
<p><a href="%s">Verify Email</a></p>
<p>Or copy and paste this URL into your browser:</p>
<p>%s</p>
<p>If you didn't create an account, you can safely ignore this email.</p>
</body></html>`, site.Name, link, link),
		Text: fmt.Sprintf(`Welcome to %s!

Please verify your email address by visiting this URL:
%s

If you didn't create an account, you can safely ignore this email.`, site.Name, link),
	}

	return n.sender.Send(ctx, msg)
}

// SendPasswordResetEmail emails a password reset link.
func (n *Notifier) SendPasswordResetEmail(ctx context.Context, site *domain.Site, toEmail, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", site.FrontendURL, token)

	msg := Message{
		To:        toEmail,
		Subject:   fmt.Sprintf("Reset your password for %s", site.Name),
		FromEmail: site.EmailFrom,
		FromName:  site.EmailFromName,
		HTML: fmt.Sprintf(`<html><body>
<h2>Password reset requested</h2>
<p>Click the link below to choose a new password for %s:</p>
<p><a href="%s">Reset Password</a></p>
<p>Or copy and paste this URL into your browser:</p>
<p>%s</p>
<p>If you didn't request a reset, you can safely ignore this email.</p>
</body></html>`, site.Name, link, link),
		Text: fmt.Sprintf(`Password reset requested for %s.

Choose a new password by visiting this URL:
%s

If you didn't request a reset, you can safely ignore this email.`, site.Name, link),
	}

	return n.sender.Send(ctx, msg)
}

// SendEmailChangeEmail emails a change confirmation link to the NEW
// address. The old address is not notified.
func (n *Notifier) SendEmailChangeEmail(ctx context.Context, site *domain.Site, toEmail, token string) error {
	link := fmt.Sprintf("%s/confirm-email-change?token=%s", site.FrontendURL, token)

	msg := Message{
		To:        toEmail,
		Subject:   fmt.Sprintf("Confirm your new email for %s", site.Name),
		FromEmail: site.EmailFrom,
		FromName:  site.EmailFromName,
		HTML: fmt.Sprintf(`<html><body>
<h2>Confirm your new email address</h2>
<p>Click the link below to confirm this address for your %s account:</p>
<p><a href="%s">Confirm Email Change</a></p>
<p>Or copy and paste this URL into your browser:</p>
<p>%s</p>
<p>If you didn't request this change, you can safely ignore this email.</p>
</body></html>`, site.Name, link, link),
		Text: fmt.Sprintf(`Confirm the new email address for your %s account by visiting this URL:
%s

If you didn't request this change, you can safely ignore this email.`, site.Name, link),
	}

	return n.sender.Send(ctx, msg)
}
