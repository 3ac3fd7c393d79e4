package handler

import "net/http"

// CreateReport runs the report pipeline over the optional "data" field.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := readBody(w, r)
	if err != nil {
		writeError(ctx, w, badRequest("%s", err))
		return
	}
	data, err := decodeReportRequest(body)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rep, err := h.reports.Create(ctx, data)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	w.Header().Set("Location", "/api/reports/"+rep.ID)
	writeJSON(w, http.StatusCreated, encodeReport(rep))
}

// GetReport returns a saved report.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeReport(rep))
}
