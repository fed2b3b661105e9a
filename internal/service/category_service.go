package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
)

var (
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrCategoryInUse        = errors.New("category is assigned to menu items")
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeCategoryName lower-cases and trims name and joins words with '-'
func NormalizeCategoryName(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// CategoryService keeps the category list consistent with the menu
type CategoryService struct {
	categories repository.CategoryRepository
	items      repository.MenuRepository
	logger     *slog.Logger
}

func NewCategoryService(categories repository.CategoryRepository, items repository.MenuRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{categories: categories, items: items, logger: logger}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categories.GetAll(ctx)
}

// Create stores a category under its normalised name. Duplicates fail
// with repository.ErrCategoryExists.
func (s *CategoryService) Create(ctx context.Context, name, description string) (*models.Category, error) {
	normalized := NormalizeCategoryName(name)
	if normalized == "" {
		return nil, ErrCategoryNameRequired
	}

	created, err := s.categories.Create(ctx, models.Category{
		Name:        normalized,
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("category created", "category_id", created.ID, "name", created.Name)
	return created, nil
}

// Delete removes a category no menu item refers to
func (s *CategoryService) Delete(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.items.CountByCategory(ctx, category.Name)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		s.logger.Warn("category delete refused", "category_id", id, "name", category.Name, "items", count)
		return category, ErrCategoryInUse
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info("category deleted", "category_id", id, "name", category.Name)
	return category, nil
}
