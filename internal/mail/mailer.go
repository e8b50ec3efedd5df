// Package mail fixes the outbound-email boundary. Actual delivery (SMTP,
// provider API, queueing) belongs to the surrounding application; this
// package only defines the contract and a development stand-in.
package mail

import (
	"context"
	"log/slog"
)

// Mailer delivers account email.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// LogMailer writes mail to the log instead of sending it. Default outside
// production.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	slog.InfoContext(ctx, "password reset mail", "to", to, "url", resetURL)
	return nil
}
