package api

import (
	"github.com/gorilla/mux"

	"github.com/curionet/curio/internal/api/recovery"
	"github.com/curionet/curio/internal/services"
	"github.com/curionet/curio/internal/storage"
)

// NewRouter wires all HTTP routes over the curation service. store may be
// nil for in-memory deployments; only the storage health route degrades.
func NewRouter(svc *services.CurationService, store storage.Store) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)
	router.Use(RequestID)

	sessionHandler := NewSessionHandler(svc)
	engagementHandler := NewEngagementHandler(svc)
	selectionHandler := NewSelectionHandler(svc)
	editionHandler := NewEditionHandler(svc)
	adminHandler := NewAdminHandler(svc)
	healthHandler := NewHealthHandler(store)

	// Health endpoints
	router.HandleFunc("/v1/health", healthHandler.CheckHealth).Methods("GET")
	router.HandleFunc("/v1/health/db", healthHandler.CheckStorageHealth).Methods("GET")

	// Session endpoints
	router.HandleFunc("/v1/sessions", sessionHandler.SubmitSession).Methods("POST")
	router.HandleFunc("/v1/sessions", sessionHandler.ListSessions).Methods("GET")
	router.HandleFunc("/v1/sessions/{sessionId:[0-9]+}", sessionHandler.GetSession).Methods("GET")
	router.HandleFunc("/v1/sessions/{sessionId:[0-9]+}", sessionHandler.RetractSession).Methods("DELETE")
	router.HandleFunc("/v1/sessions/{sessionId:[0-9]+}/messages", sessionHandler.SendMessage).Methods("POST")
	router.HandleFunc("/v1/sessions/{sessionId:[0-9]+}/messages", sessionHandler.ListMessages).Methods("GET")

	// Engagement endpoints
	router.HandleFunc("/v1/sessions/{sessionId:[0-9]+}/reactions", engagementHandler.React).Methods("POST")
	router.HandleFunc("/v1/reactions/batch", engagementHandler.BatchReact).Methods("POST")
	router.HandleFunc("/v1/allowance/{principal}", engagementHandler.Allowance).Methods("GET")
	router.HandleFunc("/v1/delegates", engagementHandler.SetDelegate).Methods("POST")

	// Period and selection endpoints
	router.HandleFunc("/v1/period", selectionHandler.Period).Methods("GET")
	router.HandleFunc("/v1/period/select", selectionHandler.Select).Methods("POST")
	router.HandleFunc("/v1/selections", selectionHandler.History).Methods("GET")

	// Edition and balance endpoints
	router.HandleFunc("/v1/editions/{sessionId:[0-9]+}", editionHandler.GetEdition).Methods("GET")
	router.HandleFunc("/v1/editions/{sessionId:[0-9]+}/purchase", editionHandler.Purchase).Methods("POST")
	router.HandleFunc("/v1/editions/{sessionId:[0-9]+}/distribute", editionHandler.Distribute).Methods("POST")
	router.HandleFunc("/v1/editions/{sessionId:[0-9]+}/holdings/{principal}", editionHandler.Holding).Methods("GET")
	router.HandleFunc("/v1/balances/{principal}", editionHandler.Balance).Methods("GET")
	router.HandleFunc("/v1/balances/{principal}/withdraw", editionHandler.Withdraw).Methods("POST")

	// Admin endpoints
	router.HandleFunc("/v1/admin/config", adminHandler.GetConfig).Methods("GET")
	router.HandleFunc("/v1/admin/config", adminHandler.PatchConfig).Methods("PATCH")
	router.HandleFunc("/v1/admin/policies", adminHandler.PatchPolicies).Methods("PATCH")
	router.HandleFunc("/v1/admin/pause", adminHandler.Pause).Methods("POST")
	router.HandleFunc("/v1/admin/unpause", adminHandler.Unpause).Methods("POST")
	router.HandleFunc("/v1/admin/roles", adminHandler.SetRole).Methods("POST")

	return router
}
