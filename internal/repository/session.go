package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/exguesich/tagebuch-app/internal/model"
)

// ErrSessionNotFound is returned when no session matches the token.
var ErrSessionNotFound = errors.New("session not found")

// CreateSession inserts a session row.
func (r *Repository) CreateSession(ctx context.Context, session *model.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by token.
func (r *Repository) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

// DeleteSession removes a session by token. Deleting an absent token is
// not an error; logout is idempotent.
func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&model.Session{}).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions clears sessions past their lifetime.
func (r *Repository) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	if err := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&model.Session{}).Error; err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	return nil
}
