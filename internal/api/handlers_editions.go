package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/curionet/curio/internal/api/respond"
	"github.com/curionet/curio/internal/api/validate"
	"github.com/curionet/curio/internal/model"
	"github.com/curionet/curio/internal/services"
)

// EditionHandler serves edition state, purchases and the credit ledger.
type EditionHandler struct {
	svc *services.CurationService
}

func NewEditionHandler(svc *services.CurationService) *EditionHandler {
	return &EditionHandler{svc: svc}
}

// GetEdition GET /v1/editions/{sessionId}
func (h *EditionHandler) GetEdition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sessionId")
	if err != nil {
		respond.WriteBadRequest(w, "invalid session id")
		return
	}
	ed, err := h.svc.Edition(id)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, ed)
}

// Purchase POST /v1/editions/{sessionId}/purchase
func (h *EditionHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sessionId")
	if err != nil {
		respond.WriteBadRequest(w, "invalid session id")
		return
	}
	var req struct {
		Amount  uint64 `json:"amount"`
		Payment uint64 `json:"payment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	c := caller(r)
	if err := validate.Principal("caller", c); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	res, err := h.svc.PurchaseEdition(r.Context(), c, id, req.Amount, req.Payment)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}

// Distribute POST /v1/editions/{sessionId}/distribute
func (h *EditionHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sessionId")
	if err != nil {
		respond.WriteBadRequest(w, "invalid session id")
		return
	}
	var req struct {
		Shares []model.CuratorShare `json:"shares"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	c := caller(r)
	if err := validate.Principal("caller", c); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.svc.DistributeCuratorEditions(r.Context(), c, id, req.Shares); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Balance GET /v1/balances/{principal}
func (h *EditionHandler) Balance(w http.ResponseWriter, r *http.Request) {
	principal := mux.Vars(r)["principal"]
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"principal": principal,
		"balance":   h.svc.Balance(principal),
	})
}

// Withdraw POST /v1/balances/{principal}/withdraw
//
// Callers may only withdraw their own balance.
func (h *EditionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	principal := mux.Vars(r)["principal"]
	if caller(r) != principal {
		respond.WriteError(w, http.StatusForbidden, "callers may only withdraw their own balance")
		return
	}
	amount, err := h.svc.Withdraw(r.Context(), principal)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"principal": principal,
		"amount":    amount,
	})
}

// Holding GET /v1/editions/{sessionId}/holdings/{principal}
func (h *EditionHandler) Holding(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sessionId")
	if err != nil {
		respond.WriteBadRequest(w, "invalid session id")
		return
	}
	principal := mux.Vars(r)["principal"]
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": id,
		"principal": principal,
		"amount":    h.svc.Holding(id, principal),
	})
}
