package model

import "time"

// User represents a registered account in the database.
// AuthHash is the argon2id hash of the password; the plaintext is never stored.
type User struct {
	ID        int64
	Email     string
	AuthHash  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session represents a server-side session record owned by a user.
// IPAddress and UserAgent are captured at creation for audit only; they are
// never consulted when authorizing a request.
type Session struct {
	ID        string
	UserID    int64
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// RequestMetadata carries the client details recorded on a new session.
type RequestMetadata struct {
	IPAddress string
	UserAgent string
}

// SignupRequest represents a registration form submission.
type SignupRequest struct {
	Email                string
	Password             string
	PasswordConfirmation string
}

// SigninRequest represents a sign-in form submission.
type SigninRequest struct {
	Email    string
	Password string
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
