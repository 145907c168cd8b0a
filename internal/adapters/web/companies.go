package web

import (
	"net/http"

	"finboard/internal/core"

	"github.com/go-chi/chi/v5"
)

// listCompanies handles GET /api/companies. The list is already filtered to
// what the authenticated user may select.
func (h *Handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	companies, err := h.svc.ListCompaniesFor(r.Context(), claims.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, companies)
}

func (h *Handler) getCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.svc.GetCompany(r.Context(), companyID(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, company)
}

type companyRequest struct {
	LegalName   string `json:"legal_name" validate:"required"`
	TradingName string `json:"trading_name" validate:"required"`
	TaxID       string `json:"tax_id"`
	IsActive    bool   `json:"is_active"`
}

func (h *Handler) createCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	company, err := h.svc.CreateCompany(r.Context(), core.Company{
		LegalName:   req.LegalName,
		TradingName: req.TradingName,
		TaxID:       req.TaxID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, company)
}

func (h *Handler) updateCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	company, err := h.svc.UpdateCompany(r.Context(), core.Company{
		ID:          chi.URLParam(r, "id"),
		LegalName:   req.LegalName,
		TradingName: req.TradingName,
		TaxID:       req.TaxID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, company)
}

func (h *Handler) deleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCompany(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
