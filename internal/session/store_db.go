package session

import (
	"context"
	"errors"
	"time"

	"github.com/exguesich/tagebuch-app/internal/model"
	"github.com/exguesich/tagebuch-app/internal/repository"
)

// DBStore keeps sessions in the relational database. This is the
// default store; it needs no infrastructure beyond the main database.
type DBStore struct {
	repo *repository.Repository
}

// NewDBStore creates a database-backed session store.
func NewDBStore(repo *repository.Repository) *DBStore {
	return &DBStore{repo: repo}
}

// Create inserts a session row.
func (s *DBStore) Create(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	return s.repo.CreateSession(ctx, &model.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Lookup resolves a token, treating expired rows as absent. Expired
// rows are removed opportunistically on lookup; there is no background
// sweeper.
func (s *DBStore) Lookup(ctx context.Context, token string) (uint, error) {
	sess, err := s.repo.GetSession(ctx, token)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if sess.Expired(time.Now()) {
		_ = s.repo.DeleteSession(ctx, token)
		return 0, ErrNotFound
	}
	return sess.UserID, nil
}

// Delete removes a session row.
func (s *DBStore) Delete(ctx context.Context, token string) error {
	return s.repo.DeleteSession(ctx, token)
}
