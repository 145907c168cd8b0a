package web

import (
	"net/http"

	"finboard/internal/app"
	"finboard/internal/core"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, user)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req app.CreateUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	user, err := h.svc.CreateUser(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, user)
}

type updateUserRequest struct {
	Name            string  `json:"name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Role            string  `json:"role" validate:"required"`
	CompanyID       *string `json:"company_id"`
	HasAllCompanies bool    `json:"has_all_companies_access"`
	IsActive        bool    `json:"is_active"`
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	user, err := h.svc.UpdateUser(r.Context(), core.User{
		ID:              chi.URLParam(r, "id"),
		Name:            req.Name,
		Email:           req.Email,
		Role:            req.Role,
		CompanyID:       req.CompanyID,
		HasAllCompanies: req.HasAllCompanies,
		IsActive:        req.IsActive,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setUserPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password" validate:"required,min=8"`
	}
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.svc.SetUserPassword(r.Context(), chi.URLParam(r, "id"), req.Password); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getUserPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.svc.GetUserPermissions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, permissions)
}

func (h *Handler) setUserPermissions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Permissions []string `json:"permissions"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.SetUserPermissions(r.Context(), chi.URLParam(r, "id"), req.Permissions); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
