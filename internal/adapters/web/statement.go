package web

import (
	"net/http"

	"finboard/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// getStatement handles GET /api/companies/{id}/dre/statement?month=&year=.
func (h *Handler) getStatement(w http.ResponseWriter, r *http.Request) {
	month, year, ok := periodParams(w, r)
	if !ok {
		return
	}
	statement, err := h.svc.BuildStatement(r.Context(), companyID(r), month, year)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, statement)
}

// ── Principal accounts ────────────────────────────────────────────────

func (h *Handler) listPrincipalAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListPrincipalAccounts(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, accounts)
}

type principalAccountRequest struct {
	Name         string  `json:"name" validate:"required"`
	Kind         string  `json:"kind" validate:"required,oneof=simple composite formula indicator indicator_sum"`
	Symbol       *string `json:"symbol" validate:"omitempty,oneof=+ - ="`
	DefaultOrder int     `json:"default_order"`
	Visible      bool    `json:"visible"`
}

func (req principalAccountRequest) toCore(id string) core.PrincipalAccount {
	return core.PrincipalAccount{
		ID:           id,
		Name:         req.Name,
		Kind:         core.AccountKind(req.Kind),
		Symbol:       req.Symbol,
		DefaultOrder: req.DefaultOrder,
		Visible:      req.Visible,
	}
}

func (h *Handler) createPrincipalAccount(w http.ResponseWriter, r *http.Request) {
	var req principalAccountRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	account, err := h.svc.CreatePrincipalAccount(r.Context(), req.toCore(""))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, account)
}

func (h *Handler) updatePrincipalAccount(w http.ResponseWriter, r *http.Request) {
	var req principalAccountRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	account, err := h.svc.UpdatePrincipalAccount(r.Context(), req.toCore(chi.URLParam(r, "id")))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, account)
}

func (h *Handler) deletePrincipalAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePrincipalAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Secondary accounts ────────────────────────────────────────────────

func (h *Handler) listSecondaryAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListSecondaryAccounts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, accounts)
}

type secondaryAccountRequest struct {
	PrincipalID string `json:"principal_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Order       int    `json:"order"`
}

func (h *Handler) createSecondaryAccount(w http.ResponseWriter, r *http.Request) {
	var req secondaryAccountRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	account, err := h.svc.CreateSecondaryAccount(r.Context(), core.SecondaryAccount{
		PrincipalID: req.PrincipalID,
		Name:        req.Name,
		Order:       req.Order,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, account)
}

func (h *Handler) updateSecondaryAccount(w http.ResponseWriter, r *http.Request) {
	var req secondaryAccountRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	account, err := h.svc.UpdateSecondaryAccount(r.Context(), core.SecondaryAccount{
		ID:          chi.URLParam(r, "id"),
		PrincipalID: req.PrincipalID,
		Name:        req.Name,
		Order:       req.Order,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, account)
}

func (h *Handler) deleteSecondaryAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSecondaryAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Components ────────────────────────────────────────────────────────

func (h *Handler) listStatementComponents(w http.ResponseWriter, r *http.Request) {
	components, err := h.svc.ListStatementComponents(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, components)
}

type statementComponentRequest struct {
	PrincipalID string          `json:"principal_id" validate:"required"`
	SecondaryID *string         `json:"secondary_id"`
	RefKind     string          `json:"reference_kind" validate:"required,oneof=category indicator"`
	RefID       string          `json:"reference_id" validate:"required"`
	Weight      decimal.Decimal `json:"weight"`
	Order       int             `json:"order"`
	DisplayName *string         `json:"display_name"`
}

func (req statementComponentRequest) toCore(id string) core.StatementComponent {
	return core.StatementComponent{
		ID:          id,
		PrincipalID: req.PrincipalID,
		SecondaryID: req.SecondaryID,
		RefKind:     core.ReferenceKind(req.RefKind),
		RefID:       req.RefID,
		Weight:      req.Weight,
		Order:       req.Order,
		DisplayName: req.DisplayName,
	}
}

func (h *Handler) createStatementComponent(w http.ResponseWriter, r *http.Request) {
	var req statementComponentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	component, err := h.svc.CreateStatementComponent(r.Context(), req.toCore(""))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, component)
}

func (h *Handler) updateStatementComponent(w http.ResponseWriter, r *http.Request) {
	var req statementComponentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	component, err := h.svc.UpdateStatementComponent(r.Context(), req.toCore(chi.URLParam(r, "id")))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, component)
}

func (h *Handler) deleteStatementComponent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteStatementComponent(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Per-company selection ─────────────────────────────────────────────

func (h *Handler) listStatementSelections(w http.ResponseWriter, r *http.Request) {
	selections, err := h.svc.ListStatementSelections(r.Context(), companyID(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, selections)
}

func (h *Handler) setStatementSelection(w http.ResponseWriter, r *http.Request) {
	var req activationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := h.svc.SetStatementSelection(r.Context(), companyID(r), chi.URLParam(r, "componentID"), req.IsActive)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
