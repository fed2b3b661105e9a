package checkout

import (
	"sync"

	"github.com/google/uuid"
)

// Manager keeps one checkout session per cart
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byCart   map[string]*Session
	opts     Options
}

func NewManager(opts Options) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		byCart:   make(map[string]*Session),
		opts:     opts.withDefaults(),
	}
}

// ForCart returns the session of cart, creating it on first use.
// The variant is applied when the session is at the cart step.
func (m *Manager) ForCart(cart Cart, variant Variant) (*Session, error) {
	if !variant.Valid() {
		return nil, ErrInvalidVariant
	}

	m.mu.Lock()
	s, ok := m.byCart[cart.ID()]
	if !ok {
		s = NewSession(uuid.NewString(), cart, variant, m.opts)
		m.sessions[s.ID()] = s
		m.byCart[cart.ID()] = s
	}
	m.mu.Unlock()

	if ok {
		// a session past the cart step keeps its variant
		_ = s.SetVariant(variant)
	}
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Discard forgets the session of a deleted cart
func (m *Manager) Discard(cartID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.byCart[cartID]; ok {
		delete(m.sessions, s.ID())
		delete(m.byCart, cartID)
	}
}
