package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/gamingmarket/internal/support"
)

type SupportHandler struct {
	desk *support.Desk
}

func NewSupportHandler(desk *support.Desk) *SupportHandler {
	return &SupportHandler{desk: desk}
}

type IssueTypesResponseDTO struct {
	IssueTypes []support.IssueType `json:"issue_types"`
}

// GET /support
func (h *SupportHandler) IssueTypes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, IssueTypesResponseDTO{IssueTypes: support.IssueTypes})
}

// POST /support
func (h *SupportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req support.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess := getSession(r.Context())
	receipt, err := h.desk.Submit(r.Context(), req, sess.Toast)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, receipt)
}
