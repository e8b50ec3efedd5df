package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"github.com/centsible/centsible-go/internal/model"
	"github.com/centsible/centsible-go/internal/repository"
)

// CarrierCookieName is the cookie that carries the signed session reference.
const CarrierCookieName = "_centsible_session"

// SessionStore is the persistence contract for session records.
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID int64) error
}

// SessionService owns session record lifecycle and the signed carrier that
// references a record. The carrier value is the session id, HMAC-signed and
// base64-encoded, so a client cannot forge or swap the id it holds.
type SessionService struct {
	sessions SessionStore
	users    UserStore
	codec    *securecookie.SecureCookie
}

// NewSessionService creates a SessionService signing carriers with hashKey.
func NewSessionService(sessions SessionStore, users UserStore, hashKey []byte) *SessionService {
	codec := securecookie.New(hashKey, nil)
	// Carrier lifetime is bound to the record, not the cookie signature.
	codec.MaxAge(0)
	return &SessionService{
		sessions: sessions,
		users:    users,
		codec:    codec,
	}
}

// Start creates a session record for the user and returns it with the signed
// carrier value for the client.
func (s *SessionService) Start(ctx context.Context, user *model.User, meta model.RequestMetadata) (*model.Session, string, error) {
	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", err
	}

	carrier, err := s.codec.Encode(CarrierCookieName, session.ID)
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, "", err
	}

	return session, carrier, nil
}

// Resolve verifies a carrier value and looks up the referenced session and
// its user. Every failure mode (bad signature, malformed value, destroyed
// session, missing user) returns (nil, nil); callers only ever learn
// "no session".
func (s *SessionService) Resolve(ctx context.Context, carrier string) (*model.User, *model.Session) {
	if carrier == "" {
		return nil, nil
	}

	var id string
	if err := s.codec.Decode(CarrierCookieName, carrier, &id); err != nil {
		return nil, nil
	}

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		// A session without a user is referentially broken; drop it.
		if errors.Is(err, repository.ErrUserNotFound) {
			_ = s.sessions.Delete(ctx, session.ID)
		}
		return nil, nil
	}

	return user, session
}

// Terminate destroys a session record. The caller is responsible for
// clearing the carrier cookie on the client.
func (s *SessionService) Terminate(ctx context.Context, session *model.Session) error {
	return s.sessions.Delete(ctx, session.ID)
}

// TerminateAllFor destroys every session owned by the user.
func (s *SessionService) TerminateAllFor(ctx context.Context, userID int64) error {
	return s.sessions.DeleteAllForUser(ctx, userID)
}
