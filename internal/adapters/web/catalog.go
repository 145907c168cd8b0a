package web

import (
	"net/http"

	"finboard/internal/core"

	"github.com/go-chi/chi/v5"
)

// ── Categories ────────────────────────────────────────────────────────

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, categories)
}

func (h *Handler) listCompanyCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCompanyCategories(r.Context(), companyID(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, categories)
}

type categoryRequest struct {
	Code    string  `json:"code" validate:"required"`
	Name    string  `json:"name" validate:"required"`
	Kind    string  `json:"kind" validate:"required,oneof=revenue expense"`
	GroupID *string `json:"group_id"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	cat, err := h.svc.CreateCategory(r.Context(), core.Category{
		Code:    req.Code,
		Name:    req.Name,
		Kind:    core.CategoryKind(req.Kind),
		GroupID: req.GroupID,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, cat)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	cat, err := h.svc.UpdateCategory(r.Context(), core.Category{
		ID:      chi.URLParam(r, "id"),
		Code:    req.Code,
		Name:    req.Name,
		Kind:    core.CategoryKind(req.Kind),
		GroupID: req.GroupID,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, cat)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type activationRequest struct {
	IsActive bool `json:"is_active"`
}

func (h *Handler) setCategoryActivation(w http.ResponseWriter, r *http.Request) {
	var req activationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := h.svc.SetCategoryActivation(r.Context(), companyID(r), chi.URLParam(r, "categoryID"), req.IsActive)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Category groups ───────────────────────────────────────────────────

func (h *Handler) listCategoryGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.ListCategoryGroups(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, groups)
}

type categoryGroupRequest struct {
	Name string `json:"name" validate:"required"`
	Kind string `json:"kind" validate:"required,oneof=revenue expense"`
}

func (h *Handler) createCategoryGroup(w http.ResponseWriter, r *http.Request) {
	var req categoryGroupRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	group, err := h.svc.CreateCategoryGroup(r.Context(), core.CategoryGroup{
		Name: req.Name,
		Kind: core.CategoryKind(req.Kind),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, group)
}

func (h *Handler) updateCategoryGroup(w http.ResponseWriter, r *http.Request) {
	var req categoryGroupRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	group, err := h.svc.UpdateCategoryGroup(r.Context(), core.CategoryGroup{
		ID:   chi.URLParam(r, "id"),
		Name: req.Name,
		Kind: core.CategoryKind(req.Kind),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, group)
}

func (h *Handler) deleteCategoryGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCategoryGroup(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Indicators ────────────────────────────────────────────────────────

func (h *Handler) listIndicators(w http.ResponseWriter, r *http.Request) {
	indicators, err := h.svc.ListIndicators(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, indicators)
}

func (h *Handler) listCompanyIndicators(w http.ResponseWriter, r *http.Request) {
	indicators, err := h.svc.ListCompanyIndicators(r.Context(), companyID(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, indicators)
}

type indicatorRequest struct {
	Code      string   `json:"code" validate:"required"`
	Name      string   `json:"name" validate:"required"`
	Kind      string   `json:"kind" validate:"required,oneof=manual calculated"`
	CalcType  string   `json:"calc_type" validate:"omitempty,oneof=category indicator"`
	Operation string   `json:"operation" validate:"omitempty,oneof=sum subtract multiply divide"`
	SourceIDs []string `json:"source_ids"`
	IsActive  bool     `json:"is_active"`
}

func (req indicatorRequest) toCore(id string) core.Indicator {
	return core.Indicator{
		ID:        id,
		Code:      req.Code,
		Name:      req.Name,
		Kind:      core.IndicatorKind(req.Kind),
		CalcType:  core.CalculationType(req.CalcType),
		Operation: core.Operation(req.Operation),
		SourceIDs: req.SourceIDs,
		IsActive:  req.IsActive,
	}
}

func (h *Handler) createIndicator(w http.ResponseWriter, r *http.Request) {
	var req indicatorRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	ind, err := h.svc.CreateIndicator(r.Context(), req.toCore(""))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, ind)
}

func (h *Handler) updateIndicator(w http.ResponseWriter, r *http.Request) {
	var req indicatorRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	ind, err := h.svc.UpdateIndicator(r.Context(), req.toCore(chi.URLParam(r, "id")))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, ind)
}

func (h *Handler) deleteIndicator(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteIndicator(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setIndicatorActivation(w http.ResponseWriter, r *http.Request) {
	var req activationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := h.svc.SetIndicatorActivation(r.Context(), companyID(r), chi.URLParam(r, "indicatorID"), req.IsActive)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
