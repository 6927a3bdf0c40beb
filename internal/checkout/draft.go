package checkout

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/fjod/gamingmarket/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// TrackingPrefix starts every generated tracking number.
const TrackingPrefix = "GM-"

// Cart is the part of the cart store the wizard reads and completes.
type Cart interface {
	Count() int
	Total() decimal.Decimal
	CompleteCheckout(ctx context.Context)
}

type Confirmation struct {
	TrackingNumber string          `json:"tracking_number"`
	PlacedAt       time.Time       `json:"placed_at"`
	ItemCount      int             `json:"item_count"`
	Total          decimal.Decimal `json:"total"`
}

// NewTrackingNumber returns the prefix and 8 random digits. Numbers are not
// checked for collisions; there is no order store to check against.
func NewTrackingNumber() string {
	return fmt.Sprintf("%s%d", TrackingPrefix, 10000000+rand.Intn(90000000))
}

type Option func(*Draft)

// WithClock sets the time source used for expiry checks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Draft) { d.now = now }
}

func WithTrackingNumbers(next func() string) Option {
	return func(d *Draft) { d.tracking = next }
}

// Draft is one checkout attempt. It lives until the order is placed or the
// shopper abandons checkout.
type Draft struct {
	mu      sync.Mutex
	step    Step
	address Address
	card    Card
	touched map[Field]bool

	validate *validator.Validate
	now      func() time.Time
	tracking func() string
}

func NewDraft(opts ...Option) *Draft {
	d := &Draft{
		step:     StepReview,
		touched:  make(map[Field]bool),
		now:      time.Now,
		tracking: NewTrackingNumber,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.validate = validation.New(func() time.Time { return d.now() })
	return d
}

// View is a read-only copy of the draft with the errors the shopper should
// currently see.
type View struct {
	Step      Step              `json:"step"`
	Address   Address           `json:"address"`
	Card      Card              `json:"card"`
	Touched   map[Field]bool    `json:"touched"`
	Errors    map[string]string `json:"errors"`
	AddressOK bool              `json:"address_ok"`
	PaymentOK bool              `json:"payment_ok"`
}

func (d *Draft) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	touched := make(map[Field]bool, len(d.touched))
	for f, v := range d.touched {
		touched[f] = v
	}
	addrErrs, payErrs := d.addressErrorsLocked(), d.paymentErrorsLocked()
	return View{
		Step:      d.step,
		Address:   d.address,
		Card:      d.card,
		Touched:   touched,
		Errors:    d.visibleLocked(addrErrs, payErrs),
		AddressOK: len(addrErrs) == 0,
		PaymentOK: len(payErrs) == 0,
	}
}

func (d *Draft) Step() Step {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.step
}

// EditAddress replaces the address with the masked input and returns what
// the form should display.
func (d *Draft) EditAddress(a Address) Address {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.address = a.formatted()
	return d.address
}

func (d *Draft) EditCard(c Card) Card {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.card = c.formatted()
	return d.card
}

// Touch marks a field as visited so its error becomes visible.
func (d *Draft) Touch(f Field) error {
	if !f.Valid() {
		return fmt.Errorf("unknown checkout field %q", f)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touched[f] = true
	return nil
}

func (d *Draft) AddressErrors() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addressErrorsLocked()
}

func (d *Draft) PaymentErrors() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.paymentErrorsLocked()
}

// VisibleErrors returns the errors of touched fields only.
func (d *Draft) VisibleErrors() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visibleLocked(d.addressErrorsLocked(), d.paymentErrorsLocked())
}

func (d *Draft) addressErrorsLocked() map[string]string {
	return validation.FieldErrors(d.validate.Struct(d.address), fieldMessages)
}

func (d *Draft) paymentErrorsLocked() map[string]string {
	return validation.FieldErrors(d.validate.Struct(d.card), fieldMessages)
}

func (d *Draft) visibleLocked(sets ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, errs := range sets {
		for field, msg := range errs {
			if d.touched[Field(field)] {
				out[field] = msg
			}
		}
	}
	return out
}

func (d *Draft) touchAllLocked(fields []Field) {
	for _, f := range fields {
		d.touched[f] = true
	}
}

// Next advances from Review or Address. Leaving Payment goes through
// PlaceOrder.
func (d *Draft) Next(cart Cart) (Step, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.step {
	case StepReview:
		if cart.Count() == 0 {
			return d.step, ErrEmptyCart
		}
	case StepAddress:
		d.touchAllLocked(AddressFields)
		if errs := d.addressErrorsLocked(); len(errs) > 0 {
			return d.step, &ValidationError{Step: StepAddress, Fields: errs}
		}
	default:
		return d.step, ErrIllegalTransition
	}

	d.step = stepOrder[d.step.index()+1]
	return d.step, nil
}

// Back moves one step back. On Review it stays put.
func (d *Draft) Back() (Step, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.step == StepReview {
		return d.step, nil
	}
	prev := stepOrder[max(d.step.index()-1, 0)]
	if !CanTransitionTo(d.step, prev) {
		return d.step, ErrIllegalTransition
	}
	d.step = prev
	return d.step, nil
}

// PlaceOrder is the final edge: it validates payment, completes the cart and
// returns the confirmation.
func (d *Draft) PlaceOrder(ctx context.Context, cart Cart) (*Confirmation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !CanTransitionTo(d.step, StepComplete) {
		return nil, ErrIllegalTransition
	}
	d.touchAllLocked(PaymentFields)

	if cart.Count() == 0 {
		return nil, ErrEmptyCart
	}
	if errs := d.addressErrorsLocked(); len(errs) > 0 {
		return nil, &ValidationError{Step: StepAddress, Fields: errs}
	}
	if errs := d.paymentErrorsLocked(); len(errs) > 0 {
		return nil, &ValidationError{Step: StepPayment, Fields: errs}
	}

	confirmation := &Confirmation{
		TrackingNumber: d.tracking(),
		PlacedAt:       d.now(),
		ItemCount:      cart.Count(),
		Total:          cart.Total(),
	}
	cart.CompleteCheckout(ctx)
	d.step = StepComplete
	return confirmation, nil
}
