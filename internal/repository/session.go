package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/centsible/centsible-go/internal/model"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository handles session record persistence.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session record. The caller supplies the id.
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	query := `INSERT INTO sessions (id, user_id, ip_address, user_agent) VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.IPAddress, session.UserAgent,
	)
	return err
}

// GetByID retrieves a session record by its id.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.Session, error) {
	query := `SELECT id, user_id, ip_address, user_agent, created_at FROM sessions WHERE id = ?`

	session := &model.Session{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &session.UserID, &session.IPAddress, &session.UserAgent, &session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return session, nil
}

// Delete removes a session record. Deleting an already-gone session is not
// an error; sign-out must be idempotent.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// DeleteAllForUser removes every session owned by the user.
func (r *SessionRepository) DeleteAllForUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}
