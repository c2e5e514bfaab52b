package handler

import (
	"net/http"

	"github.com/tapline-games/tapline/internal/catalog"
	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/logger"
)

// CatalogItemView is one catalog entry with its static base data
type CatalogItemView struct {
	Name     string          `json:"name"`
	Category domain.Category `json:"category"`
	Act      int             `json:"act"`
	BaseCost int64           `json:"base_cost"`
	Currency domain.Currency `json:"currency"`
}

// CatalogResponse is the read surface of the active catalog generation
type CatalogResponse struct {
	Version string               `json:"version"`
	Items   []CatalogItemView    `json:"items"`
	Acts    []domain.ActMetadata `json:"acts"`
}

// HandleGetCatalog lists the active catalog generation
// @Summary Get catalog
// @Description Items and act metadata from the currently active catalog snapshot
// @Tags catalog
// @Produce json
// @Success 200 {object} CatalogResponse
// @Router /catalog [get]
func HandleGetCatalog(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.Snapshot()

		items := make([]CatalogItemView, 0, len(snap.Items))
		for _, it := range snap.AllItems() {
			items = append(items, CatalogItemView{
				Name:     it.Name,
				Category: it.Category,
				Act:      it.Act,
				BaseCost: it.BaseCost,
				Currency: it.Currency,
			})
		}

		respondJSON(w, http.StatusOK, CatalogResponse{
			Version: snap.Version,
			Items:   items,
			Acts:    snap.Acts,
		})
	}
}

// HandleRefreshCatalog reloads the catalog from its source and swaps the snapshot
// @Summary Refresh catalog
// @Description Reload item definitions; on failure the previous generation stays active
// @Tags admin
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/catalog/refresh [post]
func HandleRefreshCatalog(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		if err := svc.Refresh(r.Context()); err != nil {
			log.Error("Catalog refresh failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Catalog refresh failed; previous catalog still active")
			return
		}

		log.Info("Catalog refreshed")
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "catalog refreshed"})
	}
}
