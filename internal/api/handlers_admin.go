package api

import (
	"encoding/json"
	"net/http"

	"github.com/curionet/curio/internal/api/respond"
	"github.com/curionet/curio/internal/api/validate"
	"github.com/curionet/curio/internal/model"
	"github.com/curionet/curio/internal/services"
)

// AdminHandler serves the administrative surface. Role enforcement lives in
// the engine; handlers just forward the caller identity.
type AdminHandler struct {
	svc *services.CurationService
}

func NewAdminHandler(svc *services.CurationService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// GetConfig GET /v1/admin/config
func (h *AdminHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, h.svc.ConfigSnapshot())
}

// PatchConfig PATCH /v1/admin/config
//
// The whole patch is validated and staged as one unit: a bad field rejects
// the request without staging any of the others.
func (h *AdminHandler) PatchConfig(w http.ResponseWriter, r *http.Request) {
	var req model.ConfigPatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	c := caller(r)
	if err := validate.Principal("caller", c); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.svc.StageConfigPatch(r.Context(), c, req); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, h.svc.ConfigSnapshot())
}

// PatchPolicies PATCH /v1/admin/policies
//
// Selection policy switches apply immediately, unlike the deferred config.
func (h *AdminHandler) PatchPolicies(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SelectionMode  *model.SelectionMode  `json:"selectionMode"`
		TieBreak       *model.TieBreak       `json:"tieBreak"`
		NoWinnerPolicy *model.NoWinnerPolicy `json:"noWinnerPolicy"`
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
	ctx := r.Context()
	if req.SelectionMode != nil {
		if err := h.svc.SetSelectionMode(ctx, c, *req.SelectionMode); err != nil {
			respond.WriteDomainError(w, err)
			return
		}
	}
	if req.TieBreak != nil {
		if err := h.svc.SetTieBreak(ctx, c, *req.TieBreak); err != nil {
			respond.WriteDomainError(w, err)
			return
		}
	}
	if req.NoWinnerPolicy != nil {
		if err := h.svc.SetNoWinnerPolicy(ctx, c, *req.NoWinnerPolicy); err != nil {
			respond.WriteDomainError(w, err)
			return
		}
	}
	respond.WriteJSON(w, http.StatusOK, h.svc.ConfigSnapshot())
}

// Pause POST /v1/admin/pause
func (h *AdminHandler) Pause(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Pause(r.Context(), caller(r)); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unpause POST /v1/admin/unpause
func (h *AdminHandler) Unpause(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Unpause(r.Context(), caller(r)); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetRole POST /v1/admin/roles
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role      string `json:"role"`
		Principal string `json:"principal"`
		Grant     bool   `json:"grant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	role, err := validate.Role(req.Role)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Principal("principal", req.Principal); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	c := caller(r)
	if req.Grant {
		err = h.svc.GrantRole(r.Context(), c, role, req.Principal)
	} else {
		err = h.svc.RevokeRole(r.Context(), c, role, req.Principal)
	}
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
