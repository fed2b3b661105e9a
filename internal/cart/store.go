package cart

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrCartNotFound = errors.New("cart not found")

// Store keeps one cart per console session
type Store struct {
	mu      sync.RWMutex
	carts   map[string]*Cart
	taxRate decimal.Decimal
}

func NewStore(taxRate float64) *Store {
	return &Store{
		carts:   make(map[string]*Cart),
		taxRate: decimal.NewFromFloat(taxRate),
	}
}

// Create opens a new empty cart
func (s *Store) Create() *Cart {
	c := New(uuid.NewString(), s.taxRate)

	s.mu.Lock()
	s.carts[c.ID()] = c
	s.mu.Unlock()
	return c
}

func (s *Store) Get(id string) (*Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[id]
	if !ok {
		return nil, ErrCartNotFound
	}
	return c, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[id]; !ok {
		return ErrCartNotFound
	}
	delete(s.carts, id)
	return nil
}
