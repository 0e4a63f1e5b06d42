// Package http exposes the sync ledger for reconciliation.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rai/bot-order-bridge/modules/ledger/application/queries"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

type Handler struct {
	listEntries *queries.ListEntriesHandler
}

// RegisterRoutes registers the ledger module routes to the given mux.
func RegisterRoutes(mux *http.ServeMux, listEntries *queries.ListEntriesHandler) {
	h := &Handler{listEntries: listEntries}

	mux.HandleFunc("GET /orders/{botOrderId}/sync-log", h.handleSyncLog)
}

func (h *Handler) handleSyncLog(w http.ResponseWriter, r *http.Request) {
	dto, err := h.listEntries.Handle(r.Context(), queries.ListEntriesQuery{BotOrderID: r.PathValue("botOrderId")})
	if err != nil {
		if errors.Is(err, types.ErrInvalidID) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
