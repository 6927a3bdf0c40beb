package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/gamingmarket/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductFinder looks up the product a shopper adds to the cart.
type ProductFinder interface {
	ByID(ctx context.Context, id int64) (*domain.Product, error)
}

type CartHandler struct {
	products ProductFinder
	timeout  time.Duration
}

func NewCartHandler(products ProductFinder, timeout time.Duration) *CartHandler {
	return &CartHandler{
		products: products,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

// QuantityRequestDTO is the raw text of a quantity input. Commit is set when
// the input loses focus; otherwise the value is a keystroke.
type QuantityRequestDTO struct {
	Value  string `json:"value"`
	Commit bool   `json:"commit"`
}

type CartResponseDTO struct {
	Items []domain.LineItem `json:"items"`
	Count int               `json:"count"`
	Total decimal.Decimal   `json:"total"`
}

type QuantityResponseDTO struct {
	Display   string          `json:"display"`
	Committed bool            `json:"committed"`
	Cart      CartResponseDTO `json:"cart"`
}

func cartResponse(c domain.Cart) CartResponseDTO {
	items := c.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	return CartResponseDTO{
		Items: items,
		Count: c.Count(),
		Total: c.Total(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	respondJSON(w, http.StatusOK, cartResponse(sess.Cart.Snapshot()))
}

// POST /cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	// Parse request body
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	// Validate input
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	// Call catalog to make sure the product exists
	p, err := h.products.ByID(ctx, req.ProductID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	// Add item to the session cart
	sess := getSession(r.Context())
	sess.Cart.Add(ctx, *p)
	respondJSON(w, http.StatusCreated, cartResponse(sess.Cart.Snapshot()))
}

// PATCH /cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	// Validate input
	productID, ok := productIDParam(r, "product_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	// Parse request body
	var req QuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Commit on blur, otherwise only accept values that parse to at least 1
	sess := getSession(r.Context())
	var resp QuantityResponseDTO
	if req.Commit {
		resp.Display, resp.Committed = sess.Cart.OnCommit(r.Context(), productID, req.Value)
	} else {
		resp.Display, resp.Committed = sess.Cart.OnChangeProvisional(r.Context(), productID, req.Value)
	}
	resp.Cart = cartResponse(sess.Cart.Snapshot())
	respondJSON(w, http.StatusOK, resp)
}

// DELETE /cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	// Validate input
	productID, ok := productIDParam(r, "product_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	// Remove item from the session cart
	sess := getSession(r.Context())
	sess.Cart.Remove(r.Context(), productID)
	respondJSON(w, http.StatusOK, cartResponse(sess.Cart.Snapshot()))
}

// DELETE /cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	sess.Cart.Clear(r.Context())
	respondJSON(w, http.StatusOK, cartResponse(sess.Cart.Snapshot()))
}

// GET /toast answers 204 when nothing is displayed.
func (h *CartHandler) GetToast(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	toast, ok := sess.Toast.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, toast)
}

func (h *CartHandler) DismissToast(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	sess.Toast.Dismiss()
	w.WriteHeader(http.StatusNoContent)
}
