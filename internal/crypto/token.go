package crypto

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every way a token can fail: bad signature, wrong
// purpose, expiry, malformed payload. Collapsing them denies callers an
// oracle for which check tripped.
var ErrInvalidToken = errors.New("invalid or expired token")

// tokenClaims is the signed payload of a purpose-scoped token.
type tokenClaims struct {
	jwt.RegisteredClaims
	Purpose string `json:"purpose"`
}

// SignToken issues an opaque, expiring token binding a subject id to a
// purpose. The signature is an HMAC-SHA256 over the serialized payload.
func SignToken(subject int64, purpose string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subject, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Purpose: purpose,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyToken checks the signature, expiry, and purpose of a token and
// returns the embedded subject id. All failure modes return ErrInvalidToken.
func VerifyToken(tokenString, purpose string, secret []byte) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || claims.Purpose != purpose {
		return 0, ErrInvalidToken
	}

	subject, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}

	return subject, nil
}
