package web

import (
	"net/http"
	"strconv"

	"finboard/internal/app"
	"finboard/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const maxUploadBytes = 10 << 20 // 10 MB

// periodParams reads the month and year query parameters shared by the
// report and raw data endpoints.
func periodParams(w http.ResponseWriter, r *http.Request) (month string, year int, ok bool) {
	month = r.URL.Query().Get("month")
	if month == "" {
		writeError(w, r, "month query parameter is required", "BAD_REQUEST", http.StatusBadRequest)
		return "", 0, false
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year <= 0 {
		writeError(w, r, "year query parameter must be a positive integer", "BAD_REQUEST", http.StatusBadRequest)
		return "", 0, false
	}
	return month, year, true
}

// listRawData handles GET /api/companies/{id}/raw-data?month=&year=.
func (h *Handler) listRawData(w http.ResponseWriter, r *http.Request) {
	month, year, ok := periodParams(w, r)
	if !ok {
		return
	}
	points, err := h.svc.ListRawData(r.Context(), companyID(r), year, month)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, points)
}

type rawDataRequest struct {
	Year        int             `json:"year" validate:"required,gt=0"`
	Month       string          `json:"month" validate:"required"`
	CategoryID  *string         `json:"category_id"`
	IndicatorID *string         `json:"indicator_id"`
	Amount      decimal.Decimal `json:"amount"`
}

func (h *Handler) createRawData(w http.ResponseWriter, r *http.Request) {
	var req rawDataRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	point, err := h.svc.CreateRawData(r.Context(), core.RawDataPoint{
		CompanyID:   companyID(r),
		Year:        req.Year,
		Month:       req.Month,
		CategoryID:  req.CategoryID,
		IndicatorID: req.IndicatorID,
		Amount:      req.Amount,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, point)
}

func (h *Handler) updateRawData(w http.ResponseWriter, r *http.Request) {
	var req app.UpdateRawDataRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	point, err := h.svc.UpdateRawData(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, point)
}

func (h *Handler) deleteRawData(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRawData(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// upload handles POST /api/companies/{id}/uploads. Multipart form with a
// "file" part plus month and year fields; the whole request is capped at
// 10 MB.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, "invalid or oversized multipart request", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
		return
	}

	month := r.FormValue("month")
	year, err := strconv.Atoi(r.FormValue("year"))
	if month == "" || err != nil || year <= 0 {
		writeError(w, r, "month and year form fields are required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "file form field is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	summary, err := h.svc.ProcessUpload(r.Context(), companyID(r), year, month, header.Filename, file)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, summary)
}
