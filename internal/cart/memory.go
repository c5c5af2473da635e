package cart

import (
	"context"
	"sync"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Defaults for NewMemoryStore.
const (
	DefaultIdleTTL  = 24 * time.Hour
	DefaultMaxLines = 50
)

type session struct {
	items   []Item
	touched time.Time
}

// MemoryStore keeps carts in process memory. Carts idle for longer than the
// TTL read as empty and are dropped by Sweep.
type MemoryStore struct {
	mu       sync.RWMutex
	carts    map[string]*session
	idleTTL  time.Duration
	maxLines int
	now      func() time.Time
	logger   zerolog.Logger
}

var _ Store = (*MemoryStore)(nil)

// MemoryConfig bounds a MemoryStore. Zero values take the defaults.
type MemoryConfig struct {
	IdleTTL  time.Duration
	MaxLines int
}

// NewMemoryStore creates an in-memory cart store.
func NewMemoryStore(cfg MemoryConfig, logger zerolog.Logger) *MemoryStore {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.MaxLines <= 0 {
		cfg.MaxLines = DefaultMaxLines
	}
	return &MemoryStore{
		carts:    make(map[string]*session),
		idleTTL:  cfg.IdleTTL,
		maxLines: cfg.MaxLines,
		now:      time.Now,
		logger:   logger.With().Str("component", "cart-store").Logger(),
	}
}

// Run sweeps idle carts every interval until ctx is cancelled.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep drops every cart idle for longer than the TTL and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0
	for id, sess := range s.carts {
		if s.expired(sess, now) {
			delete(s.carts, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Info().Int("evicted", evicted).Int("remaining", len(s.carts)).Msg("idle carts evicted")
	}
	return evicted
}

// Len reports the number of carts held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}

func (s *MemoryStore) expired(sess *session, now time.Time) bool {
	return now.Sub(sess.touched) > s.idleTTL
}

// live returns the session's lines, or nil when the cart is missing or idle. Callers hold mu.
func (s *MemoryStore) live(sessionID string) []Item {
	sess, ok := s.carts[sessionID]
	if !ok || s.expired(sess, s.now()) {
		return nil
	}
	return sess.items
}

// save stores items and refreshes the idle clock. Callers hold the write lock.
func (s *MemoryStore) save(sessionID string, items []Item) {
	if len(items) == 0 {
		delete(s.carts, sessionID)
		return
	}
	s.carts[sessionID] = &session{items: items, touched: s.now()}
}

func (s *MemoryStore) Items(sessionID string) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.live(sessionID))
}

func (s *MemoryStore) Add(sessionID string, item Item) ([]Item, error) {
	if item.Quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.live(sessionID)
	for i := range items {
		if items[i].matches(item.ID, item.Variant) {
			quantity := items[i].Quantity + item.Quantity
			if err := checkBounds(item, quantity); err != nil {
				return nil, err
			}
			items[i].Quantity = quantity
			items[i].UnitPrice = item.UnitPrice
			items[i].StockCeiling = item.StockCeiling
			s.save(sessionID, items)
			s.logger.Debug().Str("session", sessionID).Str("item", item.ID).Int("quantity", quantity).Msg("cart line merged")
			return clone(items), nil
		}
	}

	if len(items) >= s.maxLines {
		return nil, model.NewCartFullError(s.maxLines)
	}
	if err := checkBounds(item, item.Quantity); err != nil {
		return nil, err
	}
	items = append(items, item)
	s.save(sessionID, items)
	s.logger.Debug().Str("session", sessionID).Str("item", item.ID).Int("quantity", item.Quantity).Msg("cart line added")
	return clone(items), nil
}

func (s *MemoryStore) Update(sessionID, id string, variant *string, quantity int) ([]Item, error) {
	if quantity < 0 {
		return nil, model.ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.Remove(sessionID, id, variant)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.live(sessionID)
	for i := range items {
		if items[i].matches(id, variant) {
			if err := checkBounds(items[i], quantity); err != nil {
				return nil, err
			}
			items[i].Quantity = quantity
			s.save(sessionID, items)
			return clone(items), nil
		}
	}
	return nil, model.ErrCartItemNotFound
}

func (s *MemoryStore) Remove(sessionID, id string, variant *string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.live(sessionID)
	for i := range items {
		if items[i].matches(id, variant) {
			items = append(items[:i], items[i+1:]...)
			s.save(sessionID, items)
			return clone(items), nil
		}
	}
	return nil, model.ErrCartItemNotFound
}

func (s *MemoryStore) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	s.logger.Debug().Str("session", sessionID).Msg("cart cleared")
}

// checkBounds enforces MOQ and, when known, the stock ceiling.
func checkBounds(item Item, quantity int) error {
	moq := item.MOQ
	if moq < 1 {
		moq = 1
	}
	if quantity < moq {
		return model.NewBelowMOQError(item.Name, moq)
	}
	if item.StockCeiling > 0 && quantity > item.StockCeiling {
		return model.NewExceedsStockError(item.Name, item.StockCeiling)
	}
	return nil
}

func clone(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
