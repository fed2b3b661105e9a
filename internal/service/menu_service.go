package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/shopspring/decimal"
)

var (
	ErrNameRequired     = errors.New("item name is required")
	ErrInvalidPrice     = errors.New("price must be greater than zero")
	ErrCategoryRequired = errors.New("category is required")
	ErrUnknownCategory  = errors.New("category does not exist")
)

// AllCategories selects every item when listing the menu
const AllCategories = "all"

// ImageNormalizer turns an uploaded image into what an item stores
type ImageNormalizer interface {
	Normalize(image string) (string, error)
}

// MenuItemInput is a new menu item
type MenuItemInput struct {
	Name        string
	Price       decimal.Decimal
	Category    string
	Image       string
	Description string
	Available   *bool
}

// MenuItemPatch changes the fields that are set
type MenuItemPatch struct {
	Name        *string
	Price       *decimal.Decimal
	Category    *string
	Image       *string
	Description *string
	Available   *bool
}

// MenuService handles business logic for the menu catalog
type MenuService struct {
	items      repository.MenuRepository
	categories repository.CategoryRepository
	images     ImageNormalizer
	logger     *slog.Logger
}

func NewMenuService(items repository.MenuRepository, categories repository.CategoryRepository, images ImageNormalizer, logger *slog.Logger) *MenuService {
	return &MenuService{
		items:      items,
		categories: categories,
		images:     images,
		logger:     logger,
	}
}

// ListItems filters by exact category (or "all") and a case-insensitive name search
func (s *MenuService) ListItems(ctx context.Context, category, search string) ([]models.MenuItem, error) {
	items, err := s.items.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if category != "" && category != AllCategories && item.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *MenuService) GetItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	return s.items.GetByID(ctx, id)
}

func (s *MenuService) CreateItem(ctx context.Context, in MenuItemInput) (*models.MenuItem, error) {
	item := models.MenuItem{
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		Available:   true,
	}
	if in.Available != nil {
		item.Available = *in.Available
	}

	if err := s.validate(ctx, item); err != nil {
		return nil, err
	}

	image, err := s.images.Normalize(in.Image)
	if err != nil {
		return nil, err
	}
	item.Image = image

	created, err := s.items.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	s.logger.Info("menu item created", "item_id", created.ID, "name", created.Name, "category", created.Category)
	return created, nil
}

func (s *MenuService) UpdateItem(ctx context.Context, id int64, patch MenuItemPatch) (*models.MenuItem, error) {
	var image string
	if patch.Image != nil {
		normalized, err := s.images.Normalize(*patch.Image)
		if err != nil {
			return nil, err
		}
		image = normalized
	}

	updated, err := s.items.Update(ctx, id, func(item *models.MenuItem) error {
		if patch.Name != nil {
			item.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Price != nil {
			item.Price = *patch.Price
		}
		if patch.Category != nil {
			item.Category = strings.TrimSpace(*patch.Category)
		}
		if patch.Description != nil {
			item.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Available != nil {
			item.Available = *patch.Available
		}
		if patch.Image != nil {
			item.Image = image
		}
		return s.validate(ctx, *item)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("menu item updated", "item_id", updated.ID)
	return updated, nil
}

// ToggleAvailability flips whether an item can be ordered
func (s *MenuService) ToggleAvailability(ctx context.Context, id int64) (*models.MenuItem, error) {
	updated, err := s.items.Update(ctx, id, func(item *models.MenuItem) error {
		item.Available = !item.Available
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("menu item availability changed", "item_id", id, "available", updated.Available)
	return updated, nil
}

func (s *MenuService) DeleteItem(ctx context.Context, id int64) error {
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("menu item deleted", "item_id", id)
	return nil
}

// CategoryNames returns "all" followed by the categories in use, in menu order
func (s *MenuService) CategoryNames(ctx context.Context) ([]string, error) {
	items, err := s.items.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	names := []string{AllCategories}
	seen := make(map[string]bool)
	for _, item := range items {
		if !seen[item.Category] {
			seen[item.Category] = true
			names = append(names, item.Category)
		}
	}
	return names, nil
}

func (s *MenuService) validate(ctx context.Context, item models.MenuItem) error {
	if item.Name == "" {
		return ErrNameRequired
	}
	if !item.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if item.Category == "" {
		return ErrCategoryRequired
	}

	if _, err := s.categories.GetByName(ctx, item.Category); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrUnknownCategory
		}
		return err
	}
	return nil
}
