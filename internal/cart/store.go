package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/fjod/gamingmarket/internal/analytics"
	"github.com/fjod/gamingmarket/internal/domain"
	"github.com/fjod/gamingmarket/internal/notify"
	"github.com/fjod/gamingmarket/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StorageKey namespaces persisted carts. Session scoped carts append
// ":<session id>".
const StorageKey = "gamingmarket_cart_v1"

const (
	MsgRemoved          = "Removed from cart"
	MsgUpdated          = "Cart updated"
	MsgCleared          = "Cart cleared"
	MsgPaymentCompleted = "Payment Completed Successfully"
)

func Key(sessionID string) string {
	if sessionID == "" {
		return StorageKey
	}
	return StorageKey + ":" + sessionID
}

// Store owns one shopper's cart. Every mutation is written to the KV store
// before it returns, shows exactly one toast and publishes one event.
type Store struct {
	mu    sync.RWMutex
	items []domain.LineItem

	sessionID string
	key       string
	kv        storage.KV
	notifier  notify.Notifier
	events    analytics.Publisher
	log       *zap.Logger
	now       func() time.Time
}

// Open hydrates the cart persisted for sessionID. A missing or unreadable
// payload yields an empty cart.
func Open(ctx context.Context, sessionID string, kv storage.KV, notifier notify.Notifier, events analytics.Publisher, log *zap.Logger) *Store {
	s := &Store{
		sessionID: sessionID,
		key:       Key(sessionID),
		kv:        kv,
		notifier:  notifier,
		events:    events,
		log:       log.With(zap.String("cart_key", Key(sessionID))),
		now:       time.Now,
	}
	s.items = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []domain.LineItem {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("failed to read stored cart, starting empty", zap.Error(err))
		}
		return nil
	}

	var items []domain.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.Warn("stored cart is corrupt, starting empty", zap.Error(err))
		return nil
	}
	return sanitize(items)
}

// sanitize re-establishes the cart invariants on data read from storage.
func sanitize(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		if seen[it.Product.ID] {
			continue
		}
		seen[it.Product.ID] = true
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		it.Product.Normalize()
		out = append(out, it)
	}
	return out
}

func (s *Store) Add(ctx context.Context, p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	qty := 1
	if i := s.indexLocked(p.ID); i >= 0 {
		s.items[i].Quantity++
		qty = s.items[i].Quantity
	} else {
		p.Normalize()
		s.items = append(s.items, domain.LineItem{Product: p, Quantity: 1})
	}

	name := p.Name
	if name == "" {
		name = "Product"
	}
	s.commitLocked(ctx, analytics.KindItemAdded, p.ID, qty, notify.SeveritySuccess, "Added to cart: "+name)
}

// Remove is a no-op for unknown ids but still acknowledged to the shopper.
func (s *Store) Remove(ctx context.Context, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(productID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.commitLocked(ctx, analytics.KindItemRemoved, productID, 0, notify.SeverityInfo, MsgRemoved)
}

// UpdateQty coerces raw to a quantity of at least 1 and applies it.
func (s *Store) UpdateQty(ctx context.Context, productID int64, raw string) {
	s.SetQty(ctx, productID, CoerceQty(raw))
}

func (s *Store) SetQty(ctx context.Context, productID int64, qty int) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(productID); i >= 0 {
		s.items[i].Quantity = qty
	}
	s.commitLocked(ctx, analytics.KindQuantityUpdated, productID, qty, notify.SeveritySuccess, MsgUpdated)
}

// OnChangeProvisional handles a keystroke in a quantity field. Only input
// that parses to a positive quantity different from the current one is
// committed; anything else is left on screen untouched.
func (s *Store) OnChangeProvisional(ctx context.Context, productID int64, raw string) (display string, committed bool) {
	n, ok := ParseQty(raw)
	if !ok || n < 1 || !s.differs(productID, n) {
		return raw, false
	}
	s.SetQty(ctx, productID, n)
	return raw, true
}

// OnCommit handles the field losing focus: the value is coerced and shown
// back, and the cart is only touched when the quantity actually changes.
func (s *Store) OnCommit(ctx context.Context, productID int64, raw string) (display string, committed bool) {
	n := CoerceQty(raw)
	display = strconv.Itoa(n)
	if !s.differs(productID, n) {
		return display, false
	}
	s.SetQty(ctx, productID, n)
	return display, true
}

func (s *Store) differs(productID int64, qty int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(productID)
	return i >= 0 && s.items[i].Quantity != qty
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.commitLocked(ctx, analytics.KindCartCleared, 0, 0, notify.SeverityInfo, MsgCleared)
}

// CompleteCheckout empties the cart after a simulated payment.
func (s *Store) CompleteCheckout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.commitLocked(ctx, analytics.KindCheckoutCompleted, 0, 0, notify.SeverityInfo, MsgPaymentCompleted)
}

func (s *Store) commitLocked(ctx context.Context, kind analytics.Kind, productID int64, qty int, severity notify.Severity, message string) {
	s.persistLocked(ctx)

	snapshot := domain.Cart{Items: s.items}
	event := analytics.Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		SessionID:  s.sessionID,
		ProductID:  productID,
		Quantity:   qty,
		ItemCount:  snapshot.Count(),
		Total:      snapshot.Total(),
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish cart event", zap.String("kind", string(kind)), zap.Error(err))
	}

	s.notifier.Show(severity, message)
}

// persistLocked writes the cart, or drops the key once the cart is empty.
// A missing key loads as an empty cart.
func (s *Store) persistLocked(ctx context.Context) {
	// the write must land even if the caller has gone away
	ctx = context.WithoutCancel(ctx)

	if len(s.items) == 0 {
		if err := s.kv.Delete(ctx, s.key); err != nil {
			s.log.Error("failed to delete cart", zap.Error(err))
		}
		return
	}

	payload, err := json.Marshal(s.items)
	if err != nil {
		s.log.Error("failed to encode cart", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, s.key, payload); err != nil {
		s.log.Error("failed to persist cart", zap.Error(err))
	}
}

func (s *Store) indexLocked(productID int64) int {
	for i, it := range s.items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Snapshot() domain.Cart {
	return domain.Cart{Items: s.Items()}
}

func (s *Store) Count() int {
	return s.Snapshot().Count()
}

func (s *Store) Total() decimal.Decimal {
	return s.Snapshot().Total()
}
