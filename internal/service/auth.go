package service

import (
	"context"
	"errors"
	netmail "net/mail"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/centsible/centsible-go/internal/crypto"
	"github.com/centsible/centsible-go/internal/model"
	"github.com/centsible/centsible-go/internal/repository"
)

// ErrInvalidCredentials is the only failure sign-in ever reports. Whether the
// email was unknown or the password wrong is deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserStore is the persistence contract the credential store depends on.
// Implementations must report repository.ErrUserNotFound and
// repository.ErrDuplicateEmail, and ResetPassword must replace the hash and
// destroy the user's sessions atomically.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	ResetPassword(ctx context.Context, userID int64, newHash string) error
	Delete(ctx context.Context, userID int64) error
}

// ValidationErrors maps form field names to human-readable failure messages.
type ValidationErrors map[string][]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

func (v ValidationErrors) add(field, message string) {
	v[field] = append(v[field], message)
}

// AuthService owns user identity and password verification.
type AuthService struct {
	users UserStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// NormalizeEmail trims whitespace and lower-cases an address. Every lookup
// and every stored email goes through this, which is what makes email
// uniqueness case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account from a signup submission. Failures are
// ValidationErrors keyed by field; the email-taken case is reported the same
// way as any other field error.
func (s *AuthService) Register(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	email := NormalizeEmail(req.Email)

	errs := ValidationErrors{}
	validateEmail(email, errs)
	validatePassword(req.Password, req.PasswordConfirmation, errs)
	if len(errs) > 0 {
		return nil, errs
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{Email: email, AuthHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			errs.add("email", "has already been taken")
			return nil, errs
		}
		return nil, err
	}

	return user, nil
}

// Authenticate verifies an email/password pair. When the email is unknown it
// still burns a full hash verification so the two failure paths cost the
// same; both return ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			crypto.DummyVerify(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := crypto.VerifyPassword(password, user.AuthHash)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ResetPassword applies the registration password policy to the new
// plaintext, then replaces the hash and destroys every session the user
// owns. The store performs both writes in one transaction.
func (s *AuthService) ResetPassword(ctx context.Context, user *model.User, password, confirmation string) error {
	errs := ValidationErrors{}
	validatePassword(password, confirmation, errs)
	if len(errs) > 0 {
		return errs
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}

	return s.users.ResetPassword(ctx, user.ID, hash)
}

// FindByID resolves a user id, e.g. a verified token subject, back to a user.
func (s *AuthService) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// DeleteAccount removes the user and all of their sessions.
func (s *AuthService) DeleteAccount(ctx context.Context, user *model.User) error {
	return s.users.Delete(ctx, user.ID)
}

func validateEmail(email string, errs ValidationErrors) {
	if email == "" {
		errs.add("email", "can't be blank")
		return
	}
	if len(email) > 254 {
		errs.add("email", "is too long")
		return
	}
	addr, err := netmail.ParseAddress(email)
	if err != nil || addr.Address != email {
		errs.add("email", "is not a valid email address")
	}
}

// validatePassword enforces the password policy: at least 8 characters with
// at least one lowercase letter, one uppercase letter, and one digit. The
// same rules apply at registration and at password reset.
func validatePassword(password, confirmation string, errs ValidationErrors) {
	if password == "" {
		errs.add("password", "can't be blank")
		return
	}

	if utf8.RuneCountInString(password) < 8 {
		errs.add("password", "must be at least 8 characters")
	}
	if len(password) > 128 {
		errs.add("password", "is too long")
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower {
		errs.add("password", "must contain at least one lowercase letter")
	}
	if !upper {
		errs.add("password", "must contain at least one uppercase letter")
	}
	if !digit {
		errs.add("password", "must contain at least one digit")
	}

	if password != confirmation {
		errs.add("password_confirmation", "doesn't match password")
	}
}
