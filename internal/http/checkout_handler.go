package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/gamingmarket/internal/checkout"
	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct{}

func NewCheckoutHandler() *CheckoutHandler {
	return &CheckoutHandler{}
}

type CheckoutResponseDTO struct {
	checkout.View
	Cart CartResponseDTO `json:"cart"`
}

func (h *CheckoutHandler) respondView(w http.ResponseWriter, r *http.Request, status int) {
	sess := getSession(r.Context())
	respondJSON(w, status, CheckoutResponseDTO{
		View: sess.Draft().View(),
		Cart: cartResponse(sess.Cart.Snapshot()),
	})
}

// GET /checkout
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, http.StatusOK)
}

// POST /checkout/next
func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	// Advance the draft; a blocked step reports its field errors
	sess := getSession(r.Context())
	if _, err := sess.Draft().Next(sess.Cart); err != nil {
		handleError(w, r, err)
		return
	}
	h.respondView(w, r, http.StatusOK)
}

// POST /checkout/back
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if _, err := sess.Draft().Back(); err != nil {
		handleError(w, r, err)
		return
	}
	h.respondView(w, r, http.StatusOK)
}

// PUT /checkout/address
func (h *CheckoutHandler) EditAddress(w http.ResponseWriter, r *http.Request) {
	// Parse request body
	var req checkout.Address
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Replace the address fields
	getSession(r.Context()).Draft().EditAddress(req)
	h.respondView(w, r, http.StatusOK)
}

// PUT /checkout/card
func (h *CheckoutHandler) EditCard(w http.ResponseWriter, r *http.Request) {
	// Parse request body
	var req checkout.Card
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Replace the card fields
	getSession(r.Context()).Draft().EditCard(req)
	h.respondView(w, r, http.StatusOK)
}

// POST /checkout/touch/{field}
func (h *CheckoutHandler) Touch(w http.ResponseWriter, r *http.Request) {
	// Validate input
	field := checkout.Field(chi.URLParam(r, "field"))
	if err := getSession(r.Context()).Draft().Touch(field); err != nil {
		respondError(w, http.StatusBadRequest, "unknown_field", err.Error())
		return
	}
	h.respondView(w, r, http.StatusOK)
}

// POST /checkout/place-order
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	// Validate payment, then empty the cart and keep the confirmation
	sess := getSession(r.Context())
	confirmation, err := sess.PlaceOrder(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, confirmation)
}

// DELETE /checkout
func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	getSession(r.Context()).AbandonCheckout()
	w.WriteHeader(http.StatusNoContent)
}

// GET /order-success
func (h *CheckoutHandler) OrderSuccess(w http.ResponseWriter, r *http.Request) {
	confirmation, ok := getSession(r.Context()).Confirmation()
	if !ok {
		respondError(w, http.StatusNotFound, "no_order", "no order has been placed in this session")
		return
	}
	respondJSON(w, http.StatusOK, confirmation)
}
