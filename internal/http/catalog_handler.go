package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/gamingmarket/internal/views"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	views   *views.Service
	timeout time.Duration
}

func NewCatalogHandler(svc *views.Service, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		views:   svc,
		timeout: timeout,
	}
}

type SearchDTO struct {
	Query string `json:"query"`
}

// GET /?page=
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid_page", "page must be a positive integer")
			return
		}
		page = n
	}

	sess := getSession(r.Context())
	hp, err := h.views.Home(ctx, sess.Query.Get(), page)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, hp)
}

// GET /category/{slug}?sub=
func (h *CatalogHandler) Category(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := getSession(r.Context())
	cp, err := h.views.Category(ctx, chi.URLParam(r, "slug"), r.URL.Query().Get("sub"), sess.Query.Get())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cp)
}

// GET /products/{id}
func (h *CatalogHandler) Product(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := productIDParam(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	pp, err := h.views.Product(ctx, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pp)
}

func (h *CatalogHandler) Menu(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, views.Menu())
}

func (h *CatalogHandler) Help(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, views.Help())
}

func (h *CatalogHandler) GetSearch(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	respondJSON(w, http.StatusOK, SearchDTO{Query: sess.Query.Get()})
}

// PUT /search
func (h *CatalogHandler) SetSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess := getSession(r.Context())
	sess.Query.Set(req.Query)
	respondJSON(w, http.StatusOK, SearchDTO{Query: sess.Query.Get()})
}
