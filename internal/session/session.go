// Package session keeps the per-shopper state behind the storefront cookie:
// cart, search query, toast slot and the checkout draft.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/gamingmarket/internal/cart"
	"github.com/fjod/gamingmarket/internal/checkout"
	"github.com/fjod/gamingmarket/internal/notify"
	"github.com/fjod/gamingmarket/internal/search"
)

// Session is one shopper. Cart, Query and Toast are safe for concurrent use;
// the draft and the last confirmation are guarded here.
type Session struct {
	ID    string
	Cart  *cart.Store
	Query *search.Query
	Toast *notify.Slot

	mu           sync.Mutex
	draft        *checkout.Draft
	confirmation *checkout.Confirmation
	draftOpts    []checkout.Option
	lastSeen     time.Time

	// requests holding the session; guarded by Manager.mu
	inUse int
}

// Draft returns the running checkout, starting one at Review when none exists.
func (s *Session) Draft() *checkout.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		s.draft = checkout.NewDraft(s.draftOpts...)
	}
	return s.draft
}

// AbandonCheckout throws the draft away. The cart is kept.
func (s *Session) AbandonCheckout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = nil
}

// PlaceOrder runs the final checkout transition. On success the draft is
// destroyed and the confirmation is kept for the order-success page.
func (s *Session) PlaceOrder(ctx context.Context) (*checkout.Confirmation, error) {
	draft := s.Draft()
	confirmation, err := draft.PlaceOrder(ctx, s.Cart)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == draft {
		s.draft = nil
	}
	s.confirmation = confirmation
	return confirmation, nil
}

// Confirmation returns the last placed order, if any.
func (s *Session) Confirmation() (*checkout.Confirmation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmation == nil {
		return nil, false
	}
	c := *s.confirmation
	return &c, true
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}
