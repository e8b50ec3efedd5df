// Package testutil provides in-memory store implementations for tests. They
// honor the same contracts as the MySQL repositories, including sentinel
// errors and the reset-purges-sessions atomicity rule.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/centsible/centsible-go/internal/model"
	"github.com/centsible/centsible-go/internal/repository"
)

// UserStore is an in-memory service.UserStore.
type UserStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*model.User
	sessions *SessionStore
}

// SessionStore is an in-memory service.SessionStore.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

// NewStores creates a linked user and session store pair. Linking matters:
// password reset and account deletion cascade into the session store the way
// the SQL transaction does.
func NewStores() (*UserStore, *SessionStore) {
	sessions := &SessionStore{sessions: make(map[string]*model.Session)}
	users := &UserStore{users: make(map[int64]*model.User), sessions: sessions}
	return users, sessions
}

func (s *UserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			found := *user
			return &found, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *UserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	found := *user
	return &found, nil
}

func (s *UserStore) ResetPassword(ctx context.Context, userID int64, newHash string) error {
	s.mu.Lock()
	user, ok := s.users[userID]
	if !ok {
		s.mu.Unlock()
		return repository.ErrUserNotFound
	}
	user.AuthHash = newHash
	user.UpdatedAt = time.Now()
	s.mu.Unlock()

	return s.sessions.DeleteAllForUser(ctx, userID)
}

func (s *UserStore) Delete(ctx context.Context, userID int64) error {
	s.mu.Lock()
	if _, ok := s.users[userID]; !ok {
		s.mu.Unlock()
		return repository.ErrUserNotFound
	}
	delete(s.users, userID)
	s.mu.Unlock()

	return s.sessions.DeleteAllForUser(ctx, userID)
}

func (s *SessionStore) Create(_ context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.CreatedAt = time.Now()
	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

func (s *SessionStore) GetByID(_ context.Context, id string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	found := *session
	return &found, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) DeleteAllForUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

// CountForUser reports how many sessions the user currently owns.
func (s *SessionStore) CountForUser(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, session := range s.sessions {
		if session.UserID == userID {
			count++
		}
	}
	return count
}
