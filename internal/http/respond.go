package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fjod/gamingmarket/internal/catalog"
	"github.com/fjod/gamingmarket/internal/checkout"
	"github.com/fjod/gamingmarket/internal/logger"
	"github.com/fjod/gamingmarket/internal/support"
	"github.com/fjod/gamingmarket/internal/views"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError converts domain errors to HTTP responses. A request whose own
// context already ended gets no body: the client is gone, or the timeout
// middleware answers for it. Catalog errors are matched before bare context
// errors because a shared fetch can time out while this request is live.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var (
		checkoutErr *checkout.ValidationError
		supportErr  *support.ValidationError
	)
	switch {
	case r.Context().Err() != nil:
		log.Debug("result discarded", zap.Error(err))
	case errors.As(err, &checkoutErr):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   err.Error(),
			Code:    "validation_failed",
			Details: string(checkoutErr.Step),
			Fields:  checkoutErr.Fields,
		})
	case errors.As(err, &supportErr):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  err.Error(),
			Code:   "validation_failed",
			Fields: supportErr.Fields,
		})
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
	case errors.Is(err, catalog.ErrFetch):
		log.Warn("catalog unavailable", zap.Error(err))
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "catalog is unavailable")
	case errors.Is(err, views.ErrStaleResult),
		errors.Is(err, context.DeadlineExceeded):
		// handler deadline passed before the catalog answered
		log.Warn("catalog timed out", zap.Error(err))
		respondError(w, http.StatusGatewayTimeout, "timeout", "catalog did not answer in time")
	default:
		log.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// productIDParam reads a positive product id from the URL path.
func productIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
