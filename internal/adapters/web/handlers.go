package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"finboard/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	validate  *validator.Validate
	jwtSecret string
	logger    *logrus.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string, logger *logrus.Logger) http.Handler {
	h := &Handler{
		svc:       svc,
		validate:  validator.New(),
		jwtSecret: jwtSecret,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(allowedOrigins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API routes (401 JSON if unauthenticated) ───────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// Spreadsheet upload: multipart, capped inside the handler at 10 MB.
		r.With(h.RequireCompanyAccess).Post("/api/companies/{id}/uploads", h.upload)

		// Everything else: 1 MB body limit.
		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(1 << 20)) // 1 MB

			r.Get("/api/auth/me", h.me)

			// ── Companies ─────────────────────────────────────────────────────
			r.Get("/api/companies", h.listCompanies)
			r.With(h.RequireAdmin).Post("/api/companies", h.createCompany)
			r.Route("/api/companies/{id}", func(r chi.Router) {
				r.Use(h.RequireCompanyAccess)
				r.Get("/", h.getCompany)
				r.With(h.RequireAdmin).Put("/", h.updateCompany)
				r.With(h.RequireAdmin).Delete("/", h.deleteCompany)

				// Company-scoped catalog views and junctions
				r.Get("/categories", h.listCompanyCategories)
				r.Put("/categories/{categoryID}/activation", h.setCategoryActivation)
				r.Get("/indicators", h.listCompanyIndicators)
				r.Put("/indicators/{indicatorID}/activation", h.setIndicatorActivation)

				// Raw data
				r.Get("/raw-data", h.listRawData)
				r.Post("/raw-data", h.createRawData)

				// Income statement
				r.Get("/dre/selections", h.listStatementSelections)
				r.Put("/dre/selections/{componentID}", h.setStatementSelection)
				r.Get("/dre/statement", h.getStatement)

				// Dashboard
				r.Get("/dashboard/items", h.listDashboardItems)
				r.Post("/dashboard/items", h.createDashboardItem)
				r.Get("/dashboard", h.getDashboard)
			})

			// Raw data rows addressed by their own id
			r.Put("/api/raw-data/{id}", h.updateRawData)
			r.Delete("/api/raw-data/{id}", h.deleteRawData)

			// ── Shared catalog (admin-managed) ────────────────────────────────
			r.Get("/api/categories", h.listCategories)
			r.Get("/api/category-groups", h.listCategoryGroups)
			r.Get("/api/indicators", h.listIndicators)
			r.Group(func(r chi.Router) {
				r.Use(h.RequireAdmin)
				r.Post("/api/categories", h.createCategory)
				r.Put("/api/categories/{id}", h.updateCategory)
				r.Delete("/api/categories/{id}", h.deleteCategory)
				r.Post("/api/category-groups", h.createCategoryGroup)
				r.Put("/api/category-groups/{id}", h.updateCategoryGroup)
				r.Delete("/api/category-groups/{id}", h.deleteCategoryGroup)
				r.Post("/api/indicators", h.createIndicator)
				r.Put("/api/indicators/{id}", h.updateIndicator)
				r.Delete("/api/indicators/{id}", h.deleteIndicator)
			})

			// ── Income statement template (admin-managed) ─────────────────────
			r.Get("/api/dre/accounts", h.listPrincipalAccounts)
			r.Get("/api/dre/accounts/{id}/secondaries", h.listSecondaryAccounts)
			r.Get("/api/dre/accounts/{id}/components", h.listStatementComponents)
			r.Group(func(r chi.Router) {
				r.Use(h.RequireAdmin)
				r.Post("/api/dre/accounts", h.createPrincipalAccount)
				r.Put("/api/dre/accounts/{id}", h.updatePrincipalAccount)
				r.Delete("/api/dre/accounts/{id}", h.deletePrincipalAccount)
				r.Post("/api/dre/secondaries", h.createSecondaryAccount)
				r.Put("/api/dre/secondaries/{id}", h.updateSecondaryAccount)
				r.Delete("/api/dre/secondaries/{id}", h.deleteSecondaryAccount)
				r.Post("/api/dre/components", h.createStatementComponent)
				r.Put("/api/dre/components/{id}", h.updateStatementComponent)
				r.Delete("/api/dre/components/{id}", h.deleteStatementComponent)
			})

			// ── Dashboard items addressed by their own id ─────────────────────
			r.Put("/api/dashboard-items/{id}", h.updateDashboardItem)
			r.Delete("/api/dashboard-items/{id}", h.deleteDashboardItem)

			// ── Users (admin-managed) ─────────────────────────────────────────
			r.Group(func(r chi.Router) {
				r.Use(h.RequireAdmin)
				r.Get("/api/users", h.listUsers)
				r.Post("/api/users", h.createUser)
				r.Get("/api/users/{id}", h.getUser)
				r.Put("/api/users/{id}", h.updateUser)
				r.Delete("/api/users/{id}", h.deleteUser)
				r.Put("/api/users/{id}/password", h.setUserPassword)
				r.Get("/api/users/{id}/permissions", h.getUserPermissions)
				r.Put("/api/users/{id}/permissions", h.setUserPermissions)
			})
		})
	})

	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// companyID extracts the {id} URL parameter of company-scoped routes.
func companyID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// decodeAndValidate decodes the body and runs struct validation tags,
// writing a 400 with the first offending field on failure.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if !decodeJSON(w, r, v) {
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			writeError(w, r, "invalid request", "BAD_REQUEST", http.StatusBadRequest)
			return false
		}
		writeError(w, r, "validation failed: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
