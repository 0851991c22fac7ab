package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/curionet/curio/internal/api/respond"
	"github.com/curionet/curio/internal/api/validate"
	"github.com/curionet/curio/internal/model"
	"github.com/curionet/curio/internal/services"
)

// EngagementHandler serves reactions, allowances and delegation.
type EngagementHandler struct {
	svc *services.CurationService
}

func NewEngagementHandler(svc *services.CurationService) *EngagementHandler {
	return &EngagementHandler{svc: svc}
}

// React POST /v1/sessions/{sessionId}/reactions
//
// Reactor defaults to the caller; a distinct reactor requires the caller to
// be an approved delegate or a relayer.
func (h *EngagementHandler) React(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sessionId")
	if err != nil {
		respond.WriteBadRequest(w, "invalid session id")
		return
	}
	var req struct {
		Reactor      string `json:"reactor"`
		ClaimedUnits uint64 `json:"claimedUnits"`
		Proof        []byte `json:"proof"`
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
	if req.Reactor == "" {
		req.Reactor = c
	}
	sess, err := h.svc.React(r.Context(), c, req.Reactor, id, req.ClaimedUnits, req.Proof)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, sess)
}

// BatchReact POST /v1/reactions/batch
func (h *EngagementHandler) BatchReact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Entries []model.BatchReactEntry `json:"entries"`
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
	results, err := h.svc.BatchReact(r.Context(), c, req.Entries)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"results": results, "count": len(results)})
}

// Allowance GET /v1/allowance/{principal}?kind=reaction&claimedUnits=N&proof=base64
func (h *EngagementHandler) Allowance(w http.ResponseWriter, r *http.Request) {
	principal := mux.Vars(r)["principal"]
	kind, err := validate.EngagementKind(r.URL.Query().Get("kind"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	var claimed uint64
	if v := r.URL.Query().Get("claimedUnits"); v != "" {
		claimed, err = strconv.ParseUint(v, 10, 64)
		if err != nil {
			respond.WriteBadRequest(w, "invalid claimedUnits")
			return
		}
	}
	var proof []byte
	if v := r.URL.Query().Get("proof"); v != "" {
		proof, err = base64.StdEncoding.DecodeString(v)
		if err != nil {
			respond.WriteBadRequest(w, "invalid proof encoding")
			return
		}
	}
	remaining, err := h.svc.RemainingAllowance(r.Context(), principal, kind, claimed, proof)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"principal": principal,
		"kind":      kind,
		"remaining": remaining,
	})
}

// SetDelegate POST /v1/delegates
func (h *EngagementHandler) SetDelegate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delegate string `json:"delegate"`
		Approved bool   `json:"approved"`
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
	if err := validate.Principal("delegate", req.Delegate); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.svc.ApproveDelegate(r.Context(), c, req.Delegate, req.Approved); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
