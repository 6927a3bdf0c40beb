package session

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/gamingmarket/internal/analytics"
	"github.com/fjod/gamingmarket/internal/cart"
	"github.com/fjod/gamingmarket/internal/checkout"
	"github.com/fjod/gamingmarket/internal/notify"
	"github.com/fjod/gamingmarket/internal/search"
	"github.com/fjod/gamingmarket/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultIdleTTL is how long an untouched session stays in memory.
	DefaultIdleTTL = 24 * time.Hour

	// DefaultCleanupInterval is how often idle sessions are evicted
	DefaultCleanupInterval = time.Minute
)

type Options struct {
	IdleTTL         time.Duration
	CleanupInterval time.Duration
	ToastDuration   time.Duration
	DraftOptions    []checkout.Option
	Clock           func() time.Time
}

// Manager owns the live sessions. Evicting a session only drops its memory
// state; the cart stays in the KV store and is hydrated again on the next
// visit.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	sfg      singleflight.Group

	kv     storage.KV
	events analytics.Publisher
	log    *zap.Logger
	opts   Options

	stopCleanup chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewManager(kv storage.KV, events analytics.Publisher, log *zap.Logger, opts Options) *Manager {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = DefaultCleanupInterval
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	m := &Manager{
		sessions:    make(map[string]*Session),
		kv:          kv,
		events:      events,
		log:         log,
		opts:        opts,
		stopCleanup: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// Acquire returns the session for id, hydrating its cart on first use, and
// pins it in memory until release is called. Concurrent first requests for
// the same id share one hydration. Pinned sessions are never evicted, so two
// requests for one id always share a cart.
func (m *Manager) Acquire(ctx context.Context, id string) (s *Session, release func()) {
	now := m.opts.Clock()
	for {
		if s = m.pin(id); s != nil {
			break
		}
		m.sfg.Do(id, func() (any, error) {
			m.mu.Lock()
			_, ok := m.sessions[id]
			m.mu.Unlock()
			if ok {
				return nil, nil
			}

			opened := m.open(context.WithoutCancel(ctx), id, now)
			m.mu.Lock()
			m.sessions[id] = opened
			m.mu.Unlock()
			return nil, nil
		})
	}
	s.touch(now)

	var once sync.Once
	return s, func() {
		once.Do(func() {
			m.mu.Lock()
			s.inUse--
			m.mu.Unlock()
			s.touch(m.opts.Clock())
		})
	}
}

// pin looks up id and marks it in use.
func (m *Manager) pin(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[id]
	if s != nil {
		s.inUse++
	}
	return s
}

func (m *Manager) open(ctx context.Context, id string, now time.Time) *Session {
	slot := notify.NewSlot(m.opts.ToastDuration)
	log := m.log.With(zap.String("session_id", id))
	log.Debug("session opened")

	return &Session{
		ID:        id,
		Cart:      cart.Open(ctx, id, m.kv, slot, m.events, log),
		Query:     &search.Query{},
		Toast:     slot,
		draftOpts: m.opts.DraftOptions,
		lastSeen:  now,
	}
}

// Len reports how many sessions are in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// cleanupLoop periodically drops sessions idle for longer than IdleTTL
func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) evictIdle() int {
	now := m.opts.Clock()

	m.mu.Lock()
	var evicted []*Session
	for id, s := range m.sessions {
		if s.inUse == 0 && s.idleSince(now) > m.opts.IdleTTL {
			delete(m.sessions, id)
			evicted = append(evicted, s)
		}
	}
	m.mu.Unlock()

	for _, s := range evicted {
		s.Toast.Close()
	}
	if len(evicted) > 0 {
		m.log.Debug("idle sessions evicted", zap.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Close stops the background cleanup and releases every session's timers.
func (m *Manager) Close() error {
	m.stopOnce.Do(func() { close(m.stopCleanup) })
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Toast.Close()
		delete(m.sessions, id)
	}
	return nil
}
