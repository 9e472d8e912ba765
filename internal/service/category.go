package service

import (
	"context"
	"strings"

	"github.com/exguesich/tagebuch-app/internal/model"
	"github.com/exguesich/tagebuch-app/internal/repository"
)

// CategoryService handles the shared category list.
type CategoryService struct {
	repo *repository.Repository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo *repository.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List returns all categories, unfiltered.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}

// CreateCategoryInput defines input for adding a category.
type CreateCategoryInput struct {
	Name        string
	Description string
}

// Create adds a category. Name and description are both required.
// Duplicate names are permitted; categories are shared across users.
func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)

	if name == "" || description == "" {
		return nil, ErrMissingFields
	}

	category := &model.Category{Name: name, Description: description}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}
