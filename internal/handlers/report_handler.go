package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/service"
)

type ReportHandler struct {
	reports *service.ReportService
	log     *slog.Logger
}

func NewReportHandler(reports *service.ReportService, log *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, log: log}
}

// SalesReport handles GET /api/reports/sales?period=
func (h *ReportHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Sales(r.Context(), models.ReportPeriod(r.URL.Query().Get("period")))
	if err != nil {
		if errors.Is(err, service.ErrInvalidPeriod) {
			WriteError(w, http.StatusBadRequest, "period must be one of: today, week, month, year", h.log)
			return
		}
		h.log.Error("failed to build sales report", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, report, h.log)
}
