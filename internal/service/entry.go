package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/exguesich/tagebuch-app/internal/model"
	"github.com/exguesich/tagebuch-app/internal/repository"
	"github.com/exguesich/tagebuch-app/internal/storage"
)

// EntryService handles diary entry business logic, including the
// lifecycle of attached image files.
type EntryService struct {
	repo    *repository.Repository
	uploads *storage.Store
}

// NewEntryService creates a new EntryService.
func NewEntryService(repo *repository.Repository, uploads *storage.Store) *EntryService {
	return &EntryService{repo: repo, uploads: uploads}
}

// UploadedFile carries a client upload into the service layer.
type UploadedFile struct {
	Filename string
	Data     io.Reader
}

// List returns all entries owned by the user, in insertion order.
func (s *EntryService) List(ctx context.Context, ownerID uint) ([]model.Entry, error) {
	return s.repo.ListEntriesByUser(ctx, ownerID)
}

// GetOwned fetches an entry and verifies ownership. Used to render the
// edit form; mutation paths run the same checks themselves.
func (s *EntryService) GetOwned(ctx context.Context, ownerID, id uint) (*model.Entry, error) {
	entry, err := s.repo.GetEntryByID(ctx, id)
	if errors.Is(err, repository.ErrEntryNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	if entry.UserID != ownerID {
		return nil, ErrNotOwner
	}
	return entry, nil
}

// CreateEntryInput defines input for creating an entry. Date and
// CategoryID arrive as raw form strings; parsing them is part of
// validation.
type CreateEntryInput struct {
	Title      string
	Content    string
	Mood       string
	Date       string
	CategoryID string
	Image      *UploadedFile
}

// Create validates and inserts a new entry for the owner. Title,
// content, date and category are required; the image is optional.
func (s *EntryService) Create(ctx context.Context, ownerID uint, input CreateEntryInput) (*model.Entry, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	mood := strings.TrimSpace(input.Mood)
	dateStr := strings.TrimSpace(input.Date)

	if title == "" || content == "" || dateStr == "" || strings.TrimSpace(input.CategoryID) == "" {
		return nil, ErrMissingFields
	}

	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	imagePath, err := s.saveImage(input.Image)
	if err != nil {
		return nil, err
	}

	entry := &model.Entry{
		Title:      title,
		Content:    content,
		Mood:       mood,
		Date:       date,
		UserID:     ownerID,
		CategoryID: &categoryID,
		ImagePath:  imagePath,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		s.removeImage(imagePath)
		return nil, err
	}
	return entry, nil
}

// UpdateEntryInput defines input for editing an entry. Nil fields keep
// the stored value: a partial submission merges over the existing row
// and cannot null out untouched fields.
type UpdateEntryInput struct {
	Title      *string
	Content    *string
	Mood       *string
	Date       *string
	CategoryID *string
	Image      *UploadedFile
}

// Update applies a merge-over-existing edit. Only the owner may edit;
// a newly supplied image replaces the stored file, which is deleted.
func (s *EntryService) Update(ctx context.Context, ownerID, id uint, input UpdateEntryInput) (*model.Entry, error) {
	entry, err := s.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(merge(input.Title, entry.Title))
	content := strings.TrimSpace(merge(input.Content, entry.Content))
	mood := strings.TrimSpace(merge(input.Mood, entry.Mood))
	dateStr := strings.TrimSpace(merge(input.Date, entry.DateString()))

	if title == "" || content == "" || dateStr == "" {
		return nil, ErrMissingFields
	}

	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	categoryID := entry.CategoryID
	if input.CategoryID != nil {
		if strings.TrimSpace(*input.CategoryID) == "" {
			return nil, ErrMissingFields
		}
		resolved, err := s.resolveCategory(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		categoryID = &resolved
	}
	if categoryID == nil {
		return nil, ErrMissingFields
	}

	var oldImage, newImage string
	if input.Image != nil {
		newImage, err = s.saveImage(input.Image)
		if err != nil {
			return nil, err
		}
		oldImage = entry.ImagePath
		entry.ImagePath = newImage
	}

	entry.Title = title
	entry.Content = content
	entry.Mood = mood
	entry.Date = date
	entry.CategoryID = categoryID

	if err := s.repo.UpdateEntry(ctx, entry); err != nil {
		s.removeImage(newImage)
		return nil, err
	}

	// The superseded file is only removed once the row is safely updated.
	s.removeImage(oldImage)
	return entry, nil
}

// Delete removes an owned entry and its stored image file.
func (s *EntryService) Delete(ctx context.Context, ownerID, id uint) error {
	entry, err := s.GetOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteEntry(ctx, entry.ID); err != nil {
		return err
	}
	s.removeImage(entry.ImagePath)
	return nil
}

func (s *EntryService) resolveCategory(ctx context.Context, raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, ErrCategoryNotFound
	}
	if _, err := s.repo.GetCategoryByID(ctx, uint(id)); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return 0, ErrCategoryNotFound
		}
		return 0, err
	}
	return uint(id), nil
}

// saveImage stores an optional upload, returning "" when none was sent.
func (s *EntryService) saveImage(image *UploadedFile) (string, error) {
	if image == nil || image.Filename == "" {
		return "", nil
	}
	name, err := s.uploads.Save(image.Filename, image.Data)
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return "", ErrImageTooLarge
	case errors.Is(err, storage.ErrEmptyFilename):
		return "", ErrBadImage
	case err != nil:
		return "", fmt.Errorf("store upload: %w", err)
	}
	return name, nil
}

// removeImage deletes a stored file, logging instead of failing; entry
// state is already committed by the time cleanup runs.
func (s *EntryService) removeImage(name string) {
	if name == "" {
		return
	}
	if err := s.uploads.Remove(name); err != nil {
		slog.Warn("failed to remove upload", "file", name, "error", err)
	}
}

func merge(override *string, current string) string {
	if override != nil {
		return *override
	}
	return current
}

func parseDate(s string) (time.Time, error) {
	date, err := time.Parse(model.DateLayout, s)
	if err != nil {
		// Covers both malformed strings and impossible calendar
		// dates such as 2024-02-30.
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}
