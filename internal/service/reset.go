package service

import (
	"context"
	"errors"
	"time"

	"github.com/centsible/centsible-go/internal/crypto"
	"github.com/centsible/centsible-go/internal/mail"
	"github.com/centsible/centsible-go/internal/repository"
)

// PurposePasswordReset scopes reset tokens; a token signed for any other
// purpose will not verify here.
const PurposePasswordReset = "password_reset"

// DefaultResetTokenTTL is how long a reset link stays valid.
const DefaultResetTokenTTL = 24 * time.Hour

// PasswordResetService orchestrates the request and completion halves of a
// password reset.
type PasswordResetService struct {
	auth   *AuthService
	users  UserStore
	mailer mail.Mailer
	secret []byte
	base   string
	ttl    time.Duration
}

// NewPasswordResetService creates a PasswordResetService. baseURL is the
// externally visible origin used to build reset links.
func NewPasswordResetService(auth *AuthService, users UserStore, mailer mail.Mailer, secret []byte, baseURL string, ttl time.Duration) *PasswordResetService {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &PasswordResetService{
		auth:   auth,
		users:  users,
		mailer: mailer,
		secret: secret,
		base:   baseURL,
		ttl:    ttl,
	}
}

// Request mails a reset link if the email belongs to an account. An unknown
// email returns nil exactly like a known one; the caller's response must not
// depend on which happened.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}

	token, err := crypto.SignToken(user.ID, PurposePasswordReset, s.ttl, s.secret)
	if err != nil {
		return err
	}

	return s.mailer.SendPasswordReset(ctx, user.Email, s.base+"/password_resets/"+token)
}

// Complete verifies a reset token, resolves its subject, and applies the new
// password. A token whose user no longer exists fails the same way as a bad
// token. Validation failures surface as ValidationErrors.
func (s *PasswordResetService) Complete(ctx context.Context, token, password, confirmation string) error {
	userID, err := crypto.VerifyToken(token, PurposePasswordReset, s.secret)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return crypto.ErrInvalidToken
		}
		return err
	}

	return s.auth.ResetPassword(ctx, user, password, confirmation)
}
