package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/exguesich/tagebuch-app/internal/model"
)

// ErrEntryNotFound is returned when no entry matches the lookup.
var ErrEntryNotFound = errors.New("entry not found")

// CreateEntry inserts a new entry.
func (r *Repository) CreateEntry(ctx context.Context, entry *model.Entry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

// GetEntryByID retrieves an entry by primary key. Ownership is not
// checked here; that is the service layer's job.
func (r *Repository) GetEntryByID(ctx context.Context, id uint) (*model.Entry, error) {
	var entry model.Entry
	err := r.db.WithContext(ctx).First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &entry, nil
}

// ListEntriesByUser returns all entries owned by the given user in
// insertion (primary-key) order.
func (r *Repository) ListEntriesByUser(ctx context.Context, userID uint) ([]model.Entry, error) {
	var entries []model.Entry
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// UpdateEntry persists all fields of an already-loaded entry.
func (r *Repository) UpdateEntry(ctx context.Context, entry *model.Entry) error {
	if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return nil
}

// DeleteEntry removes an entry row.
func (r *Repository) DeleteEntry(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Entry{}, id).Error; err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}
