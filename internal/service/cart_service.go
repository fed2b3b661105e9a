package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Lixing-Zhang/restaurant-pos/internal/cart"
	"github.com/Lixing-Zhang/restaurant-pos/internal/checkout"
	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
)

var (
	ErrItemUnavailable  = errors.New("menu item is not available")
	ErrCartItemNotFound = errors.New("item is not in the cart")
)

// CartService adds menu items to console carts and starts their checkout
type CartService struct {
	carts     *cart.Store
	items     repository.MenuRepository
	checkouts *checkout.Manager
	logger    *slog.Logger
}

func NewCartService(carts *cart.Store, items repository.MenuRepository, checkouts *checkout.Manager, logger *slog.Logger) *CartService {
	return &CartService{carts: carts, items: items, checkouts: checkouts, logger: logger}
}

func (s *CartService) Create() models.CartView {
	c := s.carts.Create()
	s.logger.Info("cart opened", "cart_id", c.ID())
	return c.View()
}

func (s *CartService) Get(cartID string) (models.CartView, error) {
	c, err := s.carts.Get(cartID)
	if err != nil {
		return models.CartView{}, err
	}
	return c.View(), nil
}

// AddItem puts one more of a menu item in the cart. Unavailable items are refused.
func (s *CartService) AddItem(ctx context.Context, cartID string, menuItemID int64) (models.CartView, error) {
	c, err := s.carts.Get(cartID)
	if err != nil {
		return models.CartView{}, err
	}

	item, err := s.items.GetByID(ctx, menuItemID)
	if err != nil {
		return models.CartView{}, err
	}
	if !item.Available {
		return models.CartView{}, ErrItemUnavailable
	}

	c.Add(*item)
	return c.View(), nil
}

// UpdateQuantity changes a line by delta. Lines that drop to zero are removed.
func (s *CartService) UpdateQuantity(cartID string, menuItemID int64, delta int) (models.CartView, error) {
	c, err := s.carts.Get(cartID)
	if err != nil {
		return models.CartView{}, err
	}
	if !c.UpdateQuantity(menuItemID, delta) {
		return models.CartView{}, ErrCartItemNotFound
	}
	return c.View(), nil
}

func (s *CartService) RemoveItem(cartID string, menuItemID int64) (models.CartView, error) {
	c, err := s.carts.Get(cartID)
	if err != nil {
		return models.CartView{}, err
	}
	if !c.Remove(menuItemID) {
		return models.CartView{}, ErrCartItemNotFound
	}
	return c.View(), nil
}

func (s *CartService) Clear(cartID string) (models.CartView, error) {
	c, err := s.carts.Get(cartID)
	if err != nil {
		return models.CartView{}, err
	}
	c.Clear()
	return c.View(), nil
}

// SetOpen opens or closes the cart drawer
func (s *CartService) SetOpen(cartID string, open bool) (models.CartView, error) {
	c, err := s.carts.Get(cartID)
	if err != nil {
		return models.CartView{}, err
	}
	c.SetOpen(open)
	return c.View(), nil
}

// Delete drops the cart and its checkout session
func (s *CartService) Delete(cartID string) error {
	if err := s.carts.Delete(cartID); err != nil {
		return err
	}
	s.checkouts.Discard(cartID)
	s.logger.Info("cart closed", "cart_id", cartID)
	return nil
}

// Checkout freezes the cart into a pending snapshot
func (s *CartService) Checkout(cartID string, variant checkout.Variant) (checkout.View, error) {
	c, err := s.carts.Get(cartID)
	if err != nil {
		return checkout.View{}, err
	}

	session, err := s.checkouts.ForCart(c, variant)
	if err != nil {
		return checkout.View{}, err
	}
	return session.Begin()
}
