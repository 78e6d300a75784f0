// Package cartstore owns the session cart and keeps it in sync with
// durable storage.
//
// Every mutation updates memory and writes the whole cart back under one
// lock, so readers never observe a state that was not persisted (or that
// failed to persist and was logged). Storage failures never reach the
// caller: the in-memory cart stays authoritative for the session.
package cartstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/nikolayk812/oja-market/internal/port"
	"github.com/rs/zerolog"
)

const DefaultKey = "cart"

// ErrQuantityLimit is returned when merging would push a line quantity past
// the int range.
var ErrQuantityLimit = errors.New("quantity limit exceeded")

type Store struct {
	mu      sync.Mutex
	storage port.KeyValueStorage
	key     string
	logger  zerolog.Logger
	cart    domain.Cart
}

type Option func(*Store)

// WithKey overrides the storage key the cart is saved under.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func New(storage port.KeyValueStorage, logger zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		key:     DefaultKey,
		logger:  logger.With().Str("component", "cartstore").Logger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load replaces the in-memory cart with the persisted one. Missing or
// unreadable data yields an empty cart.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = domain.Cart{}

	raw, err := s.storage.GetItem(ctx, s.key)
	if errors.Is(err, port.ErrKeyNotFound) {
		return
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("read cart failed, starting empty")
		return
	}

	cart, err := decodeCart(raw)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("persisted cart is corrupt, starting empty")
		return
	}

	s.cart = cart
}

// Save writes the current cart. Failures are logged only.
func (s *Store) Save(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.save(ctx)
}

// Add merges quantity into an existing line for productID or appends a
// new line built from snapshot.
func (s *Store) Add(ctx context.Context, productID string, snapshot domain.ProductSnapshot, quantity int) error {
	if productID == "" {
		return fmt.Errorf("productID is empty")
	}
	if quantity < 1 {
		return fmt.Errorf("quantity[%d] must be positive", quantity)
	}
	if snapshot.UnitPrice.IsNegative() {
		return fmt.Errorf("price[%s] must not be negative", snapshot.UnitPrice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.cart.IndexOf(productID); i >= 0 {
		if s.cart.Items[i].Quantity > math.MaxInt-quantity {
			return fmt.Errorf("product[%s]: %w", productID, ErrQuantityLimit)
		}
		s.cart.Items[i].Quantity += quantity
	} else {
		item := domain.CartLineItem{
			ProductID:  productID,
			Name:       snapshot.Name,
			Image:      snapshot.Image,
			UnitPrice:  snapshot.UnitPrice,
			Quantity:   quantity,
			VendorID:   snapshot.VendorID,
			VendorName: snapshot.VendorName,
		}
		s.cart.Items = append(s.cart.Items, item.WithVendorDefaults())
	}

	s.save(ctx)
	return nil
}

// UpdateQuantity adds delta to the item at index. An item whose quantity
// drops to zero or below is removed. Out of range indexes and increments
// past the int limit are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, index, delta int) (removed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inRange(index) {
		return false
	}
	if delta > 0 && s.cart.Items[index].Quantity > math.MaxInt-delta {
		return false
	}

	if s.cart.Items[index].Quantity+delta <= 0 {
		s.removeAt(index)
		removed = true
	} else {
		s.cart.Items[index].Quantity += delta
	}

	s.save(ctx)
	return removed
}

// Remove deletes the item at index and returns it. Out of range indexes
// are ignored.
func (s *Store) Remove(ctx context.Context, index int) (domain.CartLineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inRange(index) {
		return domain.CartLineItem{}, false
	}

	item := s.cart.Items[index]
	s.removeAt(index)

	s.save(ctx)
	return item, true
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = domain.Cart{}
	s.save(ctx)
}

// Cart returns a snapshot; changing it does not affect the store.
func (s *Store) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Clone()
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.ItemCount()
}

func (s *Store) inRange(index int) bool {
	return index >= 0 && index < len(s.cart.Items)
}

func (s *Store) removeAt(index int) {
	s.cart.Items = append(s.cart.Items[:index], s.cart.Items[index+1:]...)
}

// save must be called with mu held.
func (s *Store) save(ctx context.Context) {
	raw, err := encodeCart(s.cart)
	if err != nil {
		s.logger.Error().Err(err).Str("key", s.key).Msg("encode cart failed")
		return
	}

	if err := s.storage.SetItem(ctx, s.key, raw); err != nil {
		s.logger.Error().Err(err).Str("key", s.key).Msg("save cart failed, keeping in-memory cart")
	}
}
