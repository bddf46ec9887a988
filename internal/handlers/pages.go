package handlers

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"olist-dashboard/internal/charts"
	"olist-dashboard/internal/errors"
	"olist-dashboard/internal/export"
	"olist-dashboard/internal/observability"
	"olist-dashboard/internal/services"
	"olist-dashboard/internal/ui/templates"
)

// PageHandlers serves the HTML page and the artifacts it links to.
type PageHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewPageHandlers(dashboard *services.Dashboard, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

func (h *PageHandlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	view, err := h.dashboard.Build(r.Context(), ParseSelection(r))
	if err != nil {
		h.renderNotice(w, r, err)
		return
	}

	if err := templates.Dashboard(templates.Page{View: view}).Render(r.Context(), w); err != nil {
		h.logger.Error("render dashboard", "error", err, "request_id", observability.GetRequestID(r.Context()))
	}
}

func (h *PageHandlers) renderNotice(w http.ResponseWriter, r *http.Request, err error) {
	requestID := observability.GetRequestID(r.Context())

	status := http.StatusInternalServerError
	message := "An unexpected error occurred"
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		status = appErr.StatusCode
		message = appErr.Message
	}
	if errors.IsDataUnavailable(err) {
		message = errors.DataUnavailableMessage
	}

	h.logger.Warn("dashboard page unavailable", "error", err, "status", status, "request_id", requestID)

	w.WriteHeader(status)
	if err := templates.Notice(message).Render(r.Context(), w); err != nil {
		h.logger.Error("render notice", "error", err, "request_id", requestID)
	}
}

// HandleChart serves /charts/{file} where file is one of the chart names
// with an .svg suffix.
func (h *PageHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	name, ok := strings.CutSuffix(r.PathValue("file"), ".svg")
	if !ok {
		errors.WriteError(w, h.logger, errors.NotFound("charts are served as .svg"), requestID)
		return
	}

	view, err := h.dashboard.Build(r.Context(), ParseSelection(r))
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	var buf bytes.Buffer
	if err := charts.Render(&buf, name, view); err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=300")
	buf.WriteTo(w)
}

func (h *PageHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	view, err := h.dashboard.Build(r.Context(), ParseSelection(r))
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, view); err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Failed to build workbook"), requestID)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(view)))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	buf.WriteTo(w)
}
