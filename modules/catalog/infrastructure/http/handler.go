// Package http provides the administrative HTTP handlers of the catalog module.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/rai/bot-order-bridge/modules/catalog/application/commands"
	"github.com/rai/bot-order-bridge/modules/catalog/application/queries"
	"github.com/rai/bot-order-bridge/modules/catalog/domain"
)

type Handler struct {
	upsertMapping *commands.UpsertMappingHandler
	getMapping    *queries.GetMappingHandler
	validate      *validator.Validate
}

// RegisterRoutes registers the catalog module routes to the given mux.
func RegisterRoutes(mux *http.ServeMux, upsertMapping *commands.UpsertMappingHandler, getMapping *queries.GetMappingHandler) {
	h := &Handler{
		upsertMapping: upsertMapping,
		getMapping:    getMapping,
		validate:      validator.New(),
	}

	mux.HandleFunc("PUT /admin/product-mappings/{catalogId}", h.handleUpsertMapping)
	mux.HandleFunc("GET /admin/product-mappings/{catalogId}", h.handleGetMapping)
}

type upsertMappingRequest struct {
	CRMProductID string `json:"crmProductId" validate:"required"`
	Name         string `json:"name" validate:"max=255"`
	SyncStatus   string `json:"syncStatus" validate:"omitempty,oneof=synced pending failed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleUpsertMapping(w http.ResponseWriter, r *http.Request) {
	catalogID, err := strconv.ParseInt(r.PathValue("catalogId"), 10, 64)
	if err != nil || catalogID <= 0 {
		writeError(w, http.StatusBadRequest, "catalogId must be a positive integer")
		return
	}

	var req upsertMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.upsertMapping.Handle(r.Context(), commands.UpsertMappingCommand{
		CatalogProductID: catalogID,
		CRMProductID:     req.CRMProductID,
		Name:             req.Name,
		SyncStatus:       req.SyncStatus,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, queries.ToMappingDTO(m))
}

func (h *Handler) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	catalogID, err := strconv.ParseInt(r.PathValue("catalogId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "catalogId must be an integer")
		return
	}

	dto, err := h.getMapping.Handle(r.Context(), queries.GetMappingQuery{CatalogProductID: catalogID})
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto)
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotMapped):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidMapping):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
