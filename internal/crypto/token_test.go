package crypto

import (
	"errors"
	"testing"
	"time"
)

var testSecret = []byte("test-secret")

func TestSignToken(t *testing.T) {
	token, err := SignToken(42, "password_reset", time.Hour, testSecret)
	if err != nil {
		t.Fatalf("SignToken() unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("SignToken() returned empty string")
	}
}

func TestVerifyTokenValid(t *testing.T) {
	token, err := SignToken(42, "password_reset", time.Hour, testSecret)
	if err != nil {
		t.Fatalf("SignToken() unexpected error: %v", err)
	}

	subject, err := VerifyToken(token, "password_reset", testSecret)
	if err != nil {
		t.Fatalf("VerifyToken() unexpected error: %v", err)
	}
	if subject != 42 {
		t.Errorf("VerifyToken() subject = %d, want 42", subject)
	}
}

func TestVerifyTokenWrongPurpose(t *testing.T) {
	token, err := SignToken(42, "password_reset", time.Hour, testSecret)
	if err != nil {
		t.Fatalf("SignToken() unexpected error: %v", err)
	}

	_, err = VerifyToken(token, "email_confirmation", testSecret)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyToken() error = %v, want ErrInvalidToken for wrong purpose", err)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	token, err := SignToken(42, "password_reset", -time.Second, testSecret)
	if err != nil {
		t.Fatalf("SignToken() unexpected error: %v", err)
	}

	_, err = VerifyToken(token, "password_reset", testSecret)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyToken() error = %v, want ErrInvalidToken for expired token", err)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := SignToken(42, "password_reset", time.Hour, []byte("other-secret"))
	if err != nil {
		t.Fatalf("SignToken() unexpected error: %v", err)
	}

	_, err = VerifyToken(token, "password_reset", testSecret)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyToken() error = %v, want ErrInvalidToken for wrong secret", err)
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	_, err := VerifyToken("not-a-token-at-all", "password_reset", testSecret)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyToken() error = %v, want ErrInvalidToken for garbage input", err)
	}
}

func TestVerifyTokenTampered(t *testing.T) {
	token, err := SignToken(42, "password_reset", time.Hour, testSecret)
	if err != nil {
		t.Fatalf("SignToken() unexpected error: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	_, err = VerifyToken(tampered, "password_reset", testSecret)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyToken() error = %v, want ErrInvalidToken for tampered token", err)
	}
}

func TestTokenFailuresAreIndistinguishable(t *testing.T) {
	expired, err := SignToken(42, "password_reset", -time.Second, testSecret)
	if err != nil {
		t.Fatalf("SignToken() unexpected error: %v", err)
	}
	wrongPurpose, err := SignToken(42, "other", time.Hour, testSecret)
	if err != nil {
		t.Fatalf("SignToken() unexpected error: %v", err)
	}

	_, errExpired := VerifyToken(expired, "password_reset", testSecret)
	_, errPurpose := VerifyToken(wrongPurpose, "password_reset", testSecret)
	_, errGarbage := VerifyToken("garbage", "password_reset", testSecret)

	for _, err := range []error{errExpired, errPurpose, errGarbage} {
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
		if err.Error() != ErrInvalidToken.Error() {
			t.Errorf("rejection message %q differs from %q", err.Error(), ErrInvalidToken.Error())
		}
	}
}
