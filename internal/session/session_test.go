package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fjod/gamingmarket/internal/analytics"
	"github.com/fjod/gamingmarket/internal/cart"
	"github.com/fjod/gamingmarket/internal/checkout"
	"github.com/fjod/gamingmarket/internal/domain"
	"github.com/fjod/gamingmarket/internal/notify"
	"github.com/fjod/gamingmarket/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager(t *testing.T, kv storage.KV, opts Options) *Manager {
	t.Helper()
	if opts.CleanupInterval == 0 {
		// keep the background loop out of the way unless a test wants it
		opts.CleanupInterval = time.Hour
	}
	m := NewManager(kv, analytics.NewLogPublisher(zap.NewNop()), zap.NewNop(), opts)
	t.Cleanup(func() { m.Close() })
	return m
}

// visit acquires and releases a session, as one request does.
func visit(ctx context.Context, m *Manager, id string) *Session {
	s, release := m.Acquire(ctx, id)
	release()
	return s
}

func TestAcquire_ReturnsSameSession(t *testing.T) {
	m := newTestManager(t, storage.NewMemory(), Options{})
	ctx := context.Background()

	a := visit(ctx, m, "a")
	assert.Same(t, a, visit(ctx, m, "a"))
	assert.NotSame(t, a, visit(ctx, m, "b"))
	assert.Equal(t, "a", a.ID)
	assert.Equal(t, 2, m.Len())
}

func TestAcquire_HydratesCart(t *testing.T) {
	kv := storage.NewMemory()
	payload := `[{"product":{"id":1,"name":"Mouse","price":10,"imageUrl":"m.png"},"qty":2}]`
	require.NoError(t, kv.Set(context.Background(), cart.Key("abc"), []byte(payload)))

	m := newTestManager(t, kv, Options{})
	s := visit(context.Background(), m, "abc")

	assert.Equal(t, 2, s.Cart.Count())
	assert.True(t, decimal.NewFromInt(20).Equal(s.Cart.Total()))
	assert.Equal(t, 0, visit(context.Background(), m, "other").Cart.Count())
}

func TestAcquire_CancelledContextStillHydrates(t *testing.T) {
	kv := storage.NewMemory()
	payload := `[{"product":{"id":1,"name":"Mouse","price":10},"qty":1}]`
	require.NoError(t, kv.Set(context.Background(), cart.Key("abc"), []byte(payload)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := newTestManager(t, kv, Options{})
	assert.Equal(t, 1, visit(ctx, m, "abc").Cart.Count())
}

func TestAcquire_ConcurrentFirstUse(t *testing.T) {
	m := newTestManager(t, storage.NewMemory(), Options{})

	const workers = 20
	got := make([]*Session, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = visit(context.Background(), m, "shared")
		}(i)
	}
	wg.Wait()

	for _, s := range got {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, 1, m.Len())
}

func TestEvictIdle(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)}
	kv := storage.NewMemory()
	m := newTestManager(t, kv, Options{IdleTTL: 24 * time.Hour, Clock: clock.Now})
	ctx := context.Background()

	old := visit(ctx, m, "old")
	old.Cart.Add(ctx, domain.Product{ID: 7, Name: "Pad", Price: decimal.NewFromInt(5)})

	clock.Advance(20 * time.Hour)
	visit(ctx, m, "fresh")

	clock.Advance(5 * time.Hour)
	assert.Equal(t, 1, m.evictIdle())
	assert.Equal(t, 1, m.Len())

	// the evicted slot no longer displays anything
	old.Toast.Show(notify.SeverityInfo, "late")
	_, ok := old.Toast.Current()
	assert.False(t, ok)

	// the cart survives eviction through the KV store
	again := visit(ctx, m, "old")
	assert.NotSame(t, old, again)
	assert.Equal(t, 1, again.Cart.Count())
}

func TestEvictIdle_TouchKeepsSessionAlive(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, storage.NewMemory(), Options{IdleTTL: time.Hour, Clock: clock.Now})
	ctx := context.Background()

	s := visit(ctx, m, "a")
	clock.Advance(50 * time.Minute)
	visit(ctx, m, "a")
	clock.Advance(50 * time.Minute)

	assert.Zero(t, m.evictIdle())
	assert.Same(t, s, visit(ctx, m, "a"))
}

func TestEvictIdle_SkipsSessionsInUse(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, storage.NewMemory(), Options{IdleTTL: time.Hour, Clock: clock.Now})
	ctx := context.Background()

	held, release := m.Acquire(ctx, "busy")
	clock.Advance(2 * time.Hour)

	assert.Zero(t, m.evictIdle())
	// a concurrent request for the same id shares the held cart
	other, releaseOther := m.Acquire(ctx, "busy")
	assert.Same(t, held, other)
	releaseOther()

	held.Cart.Add(ctx, domain.Product{ID: 1, Name: "Pad", Price: decimal.NewFromInt(5)})
	release()
	release()

	clock.Advance(2 * time.Hour)
	assert.Equal(t, 1, m.evictIdle())
	assert.Zero(t, m.Len())
	assert.Equal(t, 1, visit(ctx, m, "busy").Cart.Count())
}

func TestCleanupLoop(t *testing.T) {
	m := newTestManager(t, storage.NewMemory(), Options{
		IdleTTL:         time.Millisecond,
		CleanupInterval: 10 * time.Millisecond,
	})
	visit(context.Background(), m, "a")

	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestClose_Idempotent(t *testing.T) {
	m := NewManager(storage.NewMemory(), analytics.NewLogPublisher(zap.NewNop()), zap.NewNop(), Options{})
	visit(context.Background(), m, "a")

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Zero(t, m.Len())
}

func TestDraftLifecycle(t *testing.T) {
	m := newTestManager(t, storage.NewMemory(), Options{})
	s := visit(context.Background(), m, "a")

	d := s.Draft()
	assert.Same(t, d, s.Draft())
	assert.Equal(t, checkout.StepReview, d.Step())

	s.AbandonCheckout()
	assert.NotSame(t, d, s.Draft())

	_, ok := s.Confirmation()
	assert.False(t, ok)
}

func TestPlaceOrder(t *testing.T) {
	june := func() time.Time { return time.Date(2026, time.June, 10, 9, 0, 0, 0, time.UTC) }
	m := newTestManager(t, storage.NewMemory(), Options{
		DraftOptions: []checkout.Option{
			checkout.WithClock(june),
			checkout.WithTrackingNumbers(func() string { return "GM-10000001" }),
		},
	})
	ctx := context.Background()
	s := visit(ctx, m, "buyer")
	s.Cart.Add(ctx, domain.Product{ID: 1, Name: "Keyboard", Price: decimal.RequireFromString("29.90")})
	s.Cart.SetQty(ctx, 1, 2)

	d := s.Draft()
	_, err := d.Next(s.Cart)
	require.NoError(t, err)
	d.EditAddress(checkout.Address{
		FullName:    "Ada Lovelace",
		Email:       "ada@example.com",
		Phone:       "05551234567",
		City:        "London",
		District:    "Marylebone",
		AddressLine: "12 Baker Street",
	})
	_, err = d.Next(s.Cart)
	require.NoError(t, err)
	d.EditCard(checkout.Card{CardName: "Ada Lovelace", CardNumber: "4111111111111111", Expiry: "0626", CVC: "123"})

	confirmation, err := s.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, "GM-10000001", confirmation.TrackingNumber)
	assert.Equal(t, 2, confirmation.ItemCount)
	assert.True(t, decimal.RequireFromString("59.80").Equal(confirmation.Total))

	assert.True(t, s.Cart.Snapshot().IsEmpty())
	assert.Equal(t, checkout.StepReview, s.Draft().Step(), "a new checkout starts over")

	last, ok := s.Confirmation()
	require.True(t, ok)
	assert.Equal(t, "GM-10000001", last.TrackingNumber)

	toast, ok := s.Toast.Current()
	require.True(t, ok)
	assert.Equal(t, cart.MsgPaymentCompleted, toast.Message)
}

func TestPlaceOrder_FailureKeepsDraft(t *testing.T) {
	m := newTestManager(t, storage.NewMemory(), Options{})
	s := visit(context.Background(), m, "a")

	d := s.Draft()
	_, err := s.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, checkout.ErrIllegalTransition)
	assert.Same(t, d, s.Draft())
}
