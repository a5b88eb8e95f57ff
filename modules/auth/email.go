package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwellhq/inkwell/pkg/auth"
	"github.com/inkwellhq/inkwell/pkg/email"
	"github.com/inkwellhq/inkwell/pkg/logger"
)

// sendResetEmail delivers the reset link asynchronously so a slow email
// provider cannot stall the HTTP response. Delivery failures are logged,
// not surfaced; the endpoint's answer must not depend on them.
func (s *Service) sendResetEmail(reset *auth.PasswordResetRequest) {
	if s.mailer == nil {
		return
	}

	resetURL := fmt.Sprintf("%s/resetpassword/%s", s.clientURL, reset.Token)
	body := fmt.Sprintf(`<h2>Reset your password</h2>
<p>You requested a password reset for your account. Click the link below to choose a new password. The link expires at %s.</p>
<p><a href="%s">Reset password</a></p>
<p>If you did not request this, you can safely ignore this email.</p>`,
		reset.ExpiresAt.UTC().Format(time.RFC1123), resetURL)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := s.mailer.SendEmail(ctx, email.SendEmailParams{
			SendTo:   reset.Email,
			Subject:  "Password reset request",
			BodyHTML: body,
			Tag:      "password-reset",
		})
		if err != nil {
			s.logger.Error("failed to send reset email",
				logger.Error(err),
				logger.Component("auth_http"),
			)
		}
	}()
}
