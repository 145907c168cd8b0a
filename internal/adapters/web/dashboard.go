package web

import (
	"net/http"

	"finboard/internal/core"

	"github.com/go-chi/chi/v5"
)

// getDashboard handles GET /api/companies/{id}/dashboard?month=&year=.
func (h *Handler) getDashboard(w http.ResponseWriter, r *http.Request) {
	month, year, ok := periodParams(w, r)
	if !ok {
		return
	}
	dashboard, err := h.svc.BuildDashboard(r.Context(), companyID(r), month, year)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, dashboard)
}

func (h *Handler) listDashboardItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListDashboardItems(r.Context(), companyID(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, items)
}

type dashboardItemRequest struct {
	Order        int              `json:"order"`
	Title        string           `json:"title" validate:"required"`
	Kind         string           `json:"kind" validate:"required,oneof=category indicator dre_account custom_sum chart top_list"`
	ReferenceIDs []string         `json:"reference_ids"`
	Color        string           `json:"color"`
	ChartKind    *string          `json:"chart_kind" validate:"omitempty,oneof=line bar pie"`
	LinkedData   []core.LinkedRef `json:"linked_data"`
	TopLimit     *int             `json:"top_limit" validate:"omitempty,gt=0"`
	IsActive     bool             `json:"is_active"`
}

func (req dashboardItemRequest) toCore(id, companyID string) core.DashboardItem {
	item := core.DashboardItem{
		ID:           id,
		CompanyID:    companyID,
		Order:        req.Order,
		Title:        req.Title,
		Kind:         core.ItemKind(req.Kind),
		ReferenceIDs: req.ReferenceIDs,
		Color:        req.Color,
		LinkedData:   req.LinkedData,
		TopLimit:     req.TopLimit,
		IsActive:     req.IsActive,
	}
	if req.ChartKind != nil {
		kind := core.ChartKind(*req.ChartKind)
		item.ChartKind = &kind
	}
	return item
}

func (h *Handler) createDashboardItem(w http.ResponseWriter, r *http.Request) {
	var req dashboardItemRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	item, err := h.svc.CreateDashboardItem(r.Context(), req.toCore("", companyID(r)))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, item)
}

func (h *Handler) updateDashboardItem(w http.ResponseWriter, r *http.Request) {
	var req dashboardItemRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	// Company scope comes from the stored row; updates cannot move an item
	// between companies.
	item, err := h.svc.UpdateDashboardItem(r.Context(), req.toCore(chi.URLParam(r, "id"), ""))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, item)
}

func (h *Handler) deleteDashboardItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDashboardItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
