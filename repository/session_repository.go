package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-ordering/models"
)

// SessionRepository stores one session document per signed-in user.
type SessionRepository struct {
	docs *Documents
}

func NewSessionRepository(docs *Documents) *SessionRepository {
	return &SessionRepository{docs: docs}
}

// Load returns nil when the user is not signed in or the document is malformed.
func (r *SessionRepository) Load(ctx context.Context, userID string) (*models.Session, error) {
	var s models.Session
	found, err := r.docs.read(ctx, SessionKey(userID), &s)
	if errors.Is(err, errMalformed) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !found || s.UserID != userID {
		return nil, nil
	}
	return &s, nil
}

// Start returns the user's open session, opening one at `at` if there is
// none. Signing in again keeps tokens from the earlier sign-in valid.
func (r *SessionRepository) Start(ctx context.Context, userID string, at time.Time) (models.Session, error) {
	unlock := r.docs.Lock(SessionKey(userID))
	defer unlock()
	cur, err := r.Load(ctx, userID)
	if err != nil {
		return models.Session{}, err
	}
	if cur != nil {
		return *cur, nil
	}
	s := models.Session{UserID: userID, At: at}
	if err := r.docs.write(ctx, SessionKey(userID), s); err != nil {
		return models.Session{}, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, userID string) error {
	unlock := r.docs.Lock(SessionKey(userID))
	defer unlock()
	if err := r.docs.remove(ctx, SessionKey(userID)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
