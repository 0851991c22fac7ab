package api

import (
	"net/http"

	"github.com/curionet/curio/internal/api/respond"
	"github.com/curionet/curio/internal/services"
)

// SelectionHandler serves period state and winner selection.
type SelectionHandler struct {
	svc *services.CurationService
}

func NewSelectionHandler(svc *services.CurationService) *SelectionHandler {
	return &SelectionHandler{svc: svc}
}

// Period GET /v1/period
func (h *SelectionHandler) Period(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, h.svc.PeriodInfo())
}

// Select POST /v1/period/select
func (h *SelectionHandler) Select(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.SelectWinner(r.Context())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}

// History GET /v1/selections
func (h *SelectionHandler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.SelectionHistory(r.Context())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"selections": records, "count": len(records)})
}
