package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/curionet/curio/internal/api/respond"
	"github.com/curionet/curio/internal/api/validate"
	"github.com/curionet/curio/internal/engine"
	"github.com/curionet/curio/internal/services"
)

// PrincipalHeader carries the authenticated caller identity. Authentication
// itself happens upstream (gateway or signature middleware); handlers trust
// the header the same way path-scoped IDs are trusted.
const PrincipalHeader = "X-Curio-Principal"

func caller(r *http.Request) string { return r.Header.Get(PrincipalHeader) }

func pathID(r *http.Request, name string) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[name], 10, 64)
}

// SessionHandler is a thin HTTP transport over the curation service.
type SessionHandler struct {
	svc *services.CurationService
}

func NewSessionHandler(svc *services.CurationService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// SubmitSession POST /v1/sessions
func (h *SessionHandler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContentAddress string `json:"contentAddress"`
		ClaimedUnits   uint64 `json:"claimedUnits"`
		Proof          []byte `json:"proof"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	creator := caller(r)
	if err := validate.Principal("caller", creator); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	sess, err := h.svc.SubmitSession(r.Context(), creator, req.ContentAddress, req.ClaimedUnits, req.Proof)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, sess)
}

// ListSessions GET /v1/sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.svc.ListSessions()
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions, "count": len(sessions)})
}

// GetSession GET /v1/sessions/{sessionId}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sessionId")
	if err != nil {
		respond.WriteBadRequest(w, "invalid session id")
		return
	}
	sess, err := h.svc.GetSession(id)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, sess)
}

// RetractSession DELETE /v1/sessions/{sessionId}
func (h *SessionHandler) RetractSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sessionId")
	if err != nil {
		respond.WriteBadRequest(w, "invalid session id")
		return
	}
	if err := validate.Principal("caller", caller(r)); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if _, err := h.svc.RetractSession(r.Context(), caller(r), id); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendMessage POST /v1/sessions/{sessionId}/messages
func (h *SessionHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sessionId")
	if err != nil {
		respond.WriteBadRequest(w, "invalid session id")
		return
	}
	var req struct {
		Sender         string   `json:"sender"`
		ContentAddress string   `json:"contentAddress"`
		Attachments    []string `json:"attachments"`
		ClaimedUnits   uint64   `json:"claimedUnits"`
		Proof          []byte   `json:"proof"`
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
	if req.Sender == "" {
		req.Sender = c
	}
	msg, err := h.svc.SendMessage(r.Context(), engine.MessageRequest{
		Caller:         c,
		Sender:         req.Sender,
		SessionID:      id,
		ContentAddress: req.ContentAddress,
		Attachments:    req.Attachments,
		ClaimedUnits:   req.ClaimedUnits,
		Proof:          req.Proof,
	})
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, msg)
}

// ListMessages GET /v1/sessions/{sessionId}/messages
func (h *SessionHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sessionId")
	if err != nil {
		respond.WriteBadRequest(w, "invalid session id")
		return
	}
	msgs, err := h.svc.ListMessages(id)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": msgs, "count": len(msgs)})
}
