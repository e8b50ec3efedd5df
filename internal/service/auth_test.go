package service

import (
	"context"
	"errors"
	"testing"

	"github.com/centsible/centsible-go/internal/model"
	"github.com/centsible/centsible-go/internal/testutil"
)

func newTestAuthService() (*AuthService, *testutil.UserStore, *testutil.SessionStore) {
	users, sessions := testutil.NewStores()
	return NewAuthService(users), users, sessions
}

func signupRequest(email, password string) model.SignupRequest {
	return model.SignupRequest{
		Email:                email,
		Password:             password,
		PasswordConfirmation: password,
	}
}

func TestRegisterSuccess(t *testing.T) {
	svc, _, _ := newTestAuthService()

	user, err := svc.Register(context.Background(), signupRequest("user@example.com", "Password123"))
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if user.ID == 0 {
		t.Error("Register() did not assign an id")
	}
	if user.Email != "user@example.com" {
		t.Errorf("Register() email = %q, want %q", user.Email, "user@example.com")
	}
	if user.AuthHash == "" || user.AuthHash == "Password123" {
		t.Error("Register() stored a missing or plaintext hash")
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()

	user, err := svc.Register(context.Background(), signupRequest("  User@Example.COM ", "Password123"))
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if user.Email != "user@example.com" {
		t.Errorf("Register() email = %q, want normalized %q", user.Email, "user@example.com")
	}
}

func TestRegisterPasswordPolicy(t *testing.T) {
	cases := []struct {
		name     string
		password string
	}{
		{"too short", "Pw1x"},
		{"seven chars", "Pass12a"},
		{"no lowercase", "PASSWORD123"},
		{"no uppercase", "password123"},
		{"no digit", "Passwordabc"},
		{"blank", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newTestAuthService()

			_, err := svc.Register(context.Background(), signupRequest("user@example.com", tc.password))

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Register(%q) error = %v, want ValidationErrors", tc.password, err)
			}
			if len(verrs["password"]) == 0 {
				t.Errorf("Register(%q) missing password field errors: %v", tc.password, verrs)
			}
		})
	}
}

func TestRegisterConfirmationMismatch(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), model.SignupRequest{
		Email:                "user@example.com",
		Password:             "Password123",
		PasswordConfirmation: "Password124",
	})

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Register() error = %v, want ValidationErrors", err)
	}
	if len(verrs["password_confirmation"]) == 0 {
		t.Errorf("Register() missing password_confirmation errors: %v", verrs)
	}
}

func TestRegisterInvalidEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), signupRequest("not-an-email", "Password123"))

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Register() error = %v, want ValidationErrors", err)
	}
	if len(verrs["email"]) == 0 {
		t.Errorf("Register() missing email errors: %v", verrs)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()

	if _, err := svc.Register(context.Background(), signupRequest("user@example.com", "Password123")); err != nil {
		t.Fatalf("first Register() unexpected error: %v", err)
	}

	// Same address with different case and whitespace must still collide.
	_, err := svc.Register(context.Background(), signupRequest(" USER@example.com", "Password123"))

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("second Register() error = %v, want ValidationErrors", err)
	}
	if len(verrs["email"]) == 0 {
		t.Errorf("second Register() missing email errors: %v", verrs)
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	svc, _, _ := newTestAuthService()

	registered, err := svc.Register(context.Background(), signupRequest("user@example.com", "Password123"))
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), "User@Example.com", "Password123")
	if err != nil {
		t.Fatalf("Authenticate() unexpected error: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("Authenticate() user id = %d, want %d", user.ID, registered.ID)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()

	if _, err := svc.Register(context.Background(), signupRequest("user@example.com", "Password123")); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	_, err := svc.Authenticate(context.Background(), "user@example.com", "Password124")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Authenticate(context.Background(), "nobody@example.com", "Password123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateFailuresAreUniform(t *testing.T) {
	svc, _, _ := newTestAuthService()

	if _, err := svc.Register(context.Background(), signupRequest("user@example.com", "Password123")); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	_, errWrongPassword := svc.Authenticate(context.Background(), "user@example.com", "WrongPass1")
	_, errUnknownEmail := svc.Authenticate(context.Background(), "nobody@example.com", "WrongPass1")

	if errWrongPassword.Error() != errUnknownEmail.Error() {
		t.Errorf("failure messages differ: %q vs %q", errWrongPassword, errUnknownEmail)
	}
}

func TestResetPasswordAppliesPolicy(t *testing.T) {
	svc, _, _ := newTestAuthService()

	user, err := svc.Register(context.Background(), signupRequest("user@example.com", "Password123"))
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	err = svc.ResetPassword(context.Background(), user, "weak", "weak")
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("ResetPassword() error = %v, want ValidationErrors", err)
	}
}

func TestResetPasswordDestroysSessions(t *testing.T) {
	users, sessions := testutil.NewStores()
	svc := NewAuthService(users)

	user, err := svc.Register(context.Background(), signupRequest("user@example.com", "Password123"))
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	sessionSvc := NewSessionService(sessions, users, []byte("session-test-key-32-bytes-long!!"))
	for i := 0; i < 3; i++ {
		if _, _, err := sessionSvc.Start(context.Background(), user, model.RequestMetadata{}); err != nil {
			t.Fatalf("Start() unexpected error: %v", err)
		}
	}
	if got := sessions.CountForUser(user.ID); got != 3 {
		t.Fatalf("sessions before reset = %d, want 3", got)
	}

	if err := svc.ResetPassword(context.Background(), user, "NewPass456", "NewPass456"); err != nil {
		t.Fatalf("ResetPassword() unexpected error: %v", err)
	}

	if got := sessions.CountForUser(user.ID); got != 0 {
		t.Errorf("sessions after reset = %d, want 0", got)
	}

	if _, err := svc.Authenticate(context.Background(), "user@example.com", "Password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still authenticates after reset: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "user@example.com", "NewPass456"); err != nil {
		t.Errorf("new password does not authenticate after reset: %v", err)
	}
}

func TestDeleteAccountDestroysSessions(t *testing.T) {
	users, sessions := testutil.NewStores()
	svc := NewAuthService(users)

	user, err := svc.Register(context.Background(), signupRequest("user@example.com", "Password123"))
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	sessionSvc := NewSessionService(sessions, users, []byte("session-test-key-32-bytes-long!!"))
	if _, _, err := sessionSvc.Start(context.Background(), user, model.RequestMetadata{}); err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}

	if err := svc.DeleteAccount(context.Background(), user); err != nil {
		t.Fatalf("DeleteAccount() unexpected error: %v", err)
	}

	if got := sessions.CountForUser(user.ID); got != 0 {
		t.Errorf("sessions after account deletion = %d, want 0", got)
	}
}
