// Package cart holds the open carts of the console. Totals are derived on
// every read and never stored.
package cart

import (
	"sync"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/shopspring/decimal"
)

// Cart accumulates menu items with quantities. It is safe for concurrent use.
type Cart struct {
	mu      sync.RWMutex
	id      string
	taxRate decimal.Decimal
	items   []models.CartItem
	open    bool
}

// New creates an empty, closed cart
func New(id string, taxRate decimal.Decimal) *Cart {
	return &Cart{id: id, taxRate: taxRate}
}

func (c *Cart) ID() string { return c.id }

// Add increments the line for item or appends a new line with quantity 1.
// The drawer opens.
func (c *Cart) Add(item models.MenuItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.open = true
	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i].Quantity++
			return
		}
	}

	image := item.Image
	if image == "" {
		image = models.PlaceholderImage
	}
	c.items = append(c.items, models.CartItem{
		ID:       item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Image:    image,
		Category: item.Category,
		Quantity: 1,
	})
}

// Remove deletes the line for id regardless of quantity
func (c *Cart) Remove(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateQuantity adds delta to the line for id. Lines that reach zero are
// dropped. It reports whether the line existed.
func (c *Cart) UpdateQuantity(id int64, delta int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		q := c.items[i].Quantity + delta
		if q <= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		} else {
			c.items[i].Quantity = q
		}
		return true
	}
	return false
}

// Clear empties the cart and closes the drawer
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.open = false
}

func (c *Cart) SetOpen(open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = open
}

func (c *Cart) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.open
}

// Items returns a copy of the cart lines
func (c *Cart) Items() []models.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.CartItem{}, c.items...)
}

func (c *Cart) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return totalItems(c.items)
}

func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return subtotal(c.items)
}

// Tax is the subtotal times the tax rate, rounded to cents
func (c *Cart) Tax() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return tax(subtotal(c.items), c.taxRate)
}

func (c *Cart) GrandTotal() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sub := subtotal(c.items)
	return sub.Add(tax(sub, c.taxRate))
}

// View reads lines and totals under one lock so they agree with each other
func (c *Cart) View() models.CartView {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sub := subtotal(c.items)
	t := tax(sub, c.taxRate)
	return models.CartView{
		ID:         c.id,
		Items:      append([]models.CartItem{}, c.items...),
		TotalItems: totalItems(c.items),
		Subtotal:   sub,
		Tax:        t,
		GrandTotal: sub.Add(t),
		Open:       c.open,
	}
}

func totalItems(items []models.CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

func subtotal(items []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

func tax(subtotal, rate decimal.Decimal) decimal.Decimal {
	return models.RoundMoney(subtotal.Mul(rate))
}
