package checkout

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCart struct {
	count     int
	total     decimal.Decimal
	completed int
}

func (c *fakeCart) Count() int             { return c.count }
func (c *fakeCart) Total() decimal.Decimal { return c.total }
func (c *fakeCart) CompleteCheckout(context.Context) {
	c.completed++
	c.count = 0
	c.total = decimal.Zero
}

func june2026() time.Time {
	return time.Date(2026, time.June, 10, 9, 30, 0, 0, time.UTC)
}

func newTestDraft() *Draft {
	return NewDraft(WithClock(june2026), WithTrackingNumbers(func() string { return "GM-12345678" }))
}

func validAddress() Address {
	return Address{
		FullName:    "John Doe",
		Email:       "a@b.com",
		Phone:       "05551234567",
		City:        "Istanbul",
		District:    "Kadikoy",
		AddressLine: "123 Main Street Apt 4",
	}
}

func validCard() Card {
	return Card{
		CardName:   "John Doe",
		CardNumber: "4111111111111111",
		Expiry:     "0626",
		CVC:        "123",
	}
}

func cartWithItems() *fakeCart {
	return &fakeCart{count: 2, total: decimal.RequireFromString("59.80")}
}

func draftAtPayment(t *testing.T) (*Draft, *fakeCart) {
	t.Helper()
	d := newTestDraft()
	cart := cartWithItems()
	_, err := d.Next(cart)
	require.NoError(t, err)
	d.EditAddress(validAddress())
	_, err = d.Next(cart)
	require.NoError(t, err)
	require.Equal(t, StepPayment, d.Step())
	return d, cart
}

func TestNext_EmptyCartBlocksReview(t *testing.T) {
	d := newTestDraft()

	step, err := d.Next(&fakeCart{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, StepReview, step)
}

func TestNext_AddressGuard(t *testing.T) {
	d := newTestDraft()
	cart := cartWithItems()
	_, err := d.Next(cart)
	require.NoError(t, err)

	d.EditAddress(Address{
		FullName:    "Jo",
		Email:       "a@b.com",
		Phone:       "05551234567",
		City:        "X",
		District:    "Y",
		AddressLine: "short",
	})
	assert.Empty(t, d.VisibleErrors(), "nothing touched yet")

	step, err := d.Next(cart)
	assert.Equal(t, StepAddress, step)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, StepAddress, ve.Step)
	assert.Contains(t, ve.Fields, "fullName")
	// one-letter city and district fail the two character minimum too
	assert.Contains(t, ve.Fields, "city")
	assert.Contains(t, ve.Fields, "district")
	assert.Contains(t, ve.Fields, "addressLine")
	assert.NotContains(t, ve.Fields, "email")
	assert.NotContains(t, ve.Fields, "phone")

	// a blocked attempt makes every address error visible
	visible := d.VisibleErrors()
	assert.Equal(t, "Enter at least 3 characters.", visible["fullName"])
	assert.Equal(t, "Enter a more detailed address.", visible["addressLine"])
	view := d.View()
	for _, f := range AddressFields {
		assert.True(t, view.Touched[f], f)
	}
	for _, f := range PaymentFields {
		assert.False(t, view.Touched[f], f)
	}
}

func TestNext_AddressGuardPassesOnceCorrected(t *testing.T) {
	d := newTestDraft()
	cart := cartWithItems()
	_, err := d.Next(cart)
	require.NoError(t, err)

	d.EditAddress(Address{
		FullName:    "John Doe",
		Email:       "a@b.com",
		Phone:       "05551234567",
		City:        "Istanbul",
		District:    "Kadikoy",
		AddressLine: "123 Main Street Apt 4",
	})
	step, err := d.Next(cart)
	require.NoError(t, err)
	assert.Equal(t, StepPayment, step)
}

func TestAddressErrors_Messages(t *testing.T) {
	d := newTestDraft()
	d.EditAddress(Address{Email: "nope", Phone: "15551234567", AddressLine: "  12345  "})

	assert.Equal(t, map[string]string{
		"fullName":    "Enter at least 3 characters.",
		"email":       "Enter a valid email.",
		"phone":       "Phone number must be 11 digits and start with 0.",
		"city":        "Enter a city.",
		"district":    "Enter a district.",
		"addressLine": "Enter a more detailed address.",
	}, d.AddressErrors())
}

func TestEditAddress_MasksPhone(t *testing.T) {
	d := newTestDraft()
	a := validAddress()
	a.Phone = "0555-123-45-67-89"

	got := d.EditAddress(a)
	assert.Equal(t, "05551234567", got.Phone)
}

func TestEditCard_Normalization(t *testing.T) {
	d := newTestDraft()
	c := validCard()
	c.CardNumber = "4111 1111-1111abc1111"

	got := d.EditCard(c)
	assert.Equal(t, "4111 1111 1111 1111", got.CardNumber)
	assert.Equal(t, "4111111111111111", got.Digits())
	assert.Equal(t, "06/26", got.Expiry)
	assert.NotContains(t, d.PaymentErrors(), "cardNumber")

	c.CardNumber = "4111111111"
	d.EditCard(c)
	assert.Equal(t, "Card number must be 16 digits.", d.PaymentErrors()["cardNumber"])
	assert.False(t, d.View().PaymentOK)
}

func TestExpiryBoundary(t *testing.T) {
	d := newTestDraft() // June 2026
	c := validCard()

	c.Expiry = "06/26"
	d.EditCard(c)
	assert.NotContains(t, d.PaymentErrors(), "expiry")

	c.Expiry = "05/26"
	d.EditCard(c)
	assert.Equal(t, "Enter a valid expiry (MM/YY).", d.PaymentErrors()["expiry"])
}

func TestTouch(t *testing.T) {
	d := newTestDraft()

	require.NoError(t, d.Touch(FieldCVC))
	assert.Equal(t, map[string]string{"cvc": "CVC must be 3 or 4 digits."}, d.VisibleErrors())

	assert.Error(t, d.Touch(Field("password")))
}

func TestBack(t *testing.T) {
	d, _ := draftAtPayment(t)

	step, err := d.Back()
	require.NoError(t, err)
	assert.Equal(t, StepAddress, step)

	step, err = d.Back()
	require.NoError(t, err)
	assert.Equal(t, StepReview, step)

	step, err = d.Back()
	require.NoError(t, err)
	assert.Equal(t, StepReview, step)
}

func TestNext_FromPaymentIsIllegal(t *testing.T) {
	d, cart := draftAtPayment(t)

	_, err := d.Next(cart)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestPlaceOrder_Success(t *testing.T) {
	d, cart := draftAtPayment(t)
	d.EditCard(validCard())

	conf, err := d.PlaceOrder(context.Background(), cart)
	require.NoError(t, err)

	assert.Equal(t, "GM-12345678", conf.TrackingNumber)
	assert.Equal(t, june2026(), conf.PlacedAt)
	assert.Equal(t, 2, conf.ItemCount)
	assert.Equal(t, "59.8", conf.Total.String())
	assert.Equal(t, 1, cart.completed)
	assert.Equal(t, StepComplete, d.Step())

	// complete is terminal
	_, err = d.Back()
	assert.ErrorIs(t, err, ErrIllegalTransition)
	_, err = d.PlaceOrder(context.Background(), cart)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, 1, cart.completed)
}

func TestPlaceOrder_InvalidCard(t *testing.T) {
	d, cart := draftAtPayment(t)
	c := validCard()
	c.CVC = "12"
	d.EditCard(c)

	_, err := d.PlaceOrder(context.Background(), cart)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, StepPayment, ve.Step)
	assert.Equal(t, map[string]string{"cvc": "CVC must be 3 or 4 digits."}, ve.Fields)
	assert.Equal(t, 0, cart.completed)
	assert.Equal(t, StepPayment, d.Step())

	view := d.View()
	for _, f := range PaymentFields {
		assert.True(t, view.Touched[f], f)
	}
	assert.Equal(t, "payment step is invalid: cvc", err.Error())
}

func TestPlaceOrder_CartEmptiedMeanwhile(t *testing.T) {
	d, cart := draftAtPayment(t)
	d.EditCard(validCard())
	cart.count = 0

	_, err := d.PlaceOrder(context.Background(), cart)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, cart.completed)
}

func TestPlaceOrder_NotAtPayment(t *testing.T) {
	d := newTestDraft()
	_, err := d.PlaceOrder(context.Background(), cartWithItems())
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestNewTrackingNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^GM-[1-9]\d{7}$`)
	for i := 0; i < 100; i++ {
		assert.Regexp(t, pattern, NewTrackingNumber())
	}
}
