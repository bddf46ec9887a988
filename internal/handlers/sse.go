package handlers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"olist-dashboard/internal/errors"
	"olist-dashboard/internal/observability"
	"olist-dashboard/internal/services"
	"olist-dashboard/internal/ui/templates"
)

// dashboardSignals mirrors the filter state kept by the page. A nil Regions
// means the client never sent the key.
type dashboardSignals struct {
	Start   string    `json:"start"`
	End     string    `json:"end"`
	Regions *[]string `json:"regions"`
}

func (s dashboardSignals) selection() services.Selection {
	sel := services.Selection{
		Start: strings.TrimSpace(s.Start),
		End:   strings.TrimSpace(s.End),
	}
	if s.Regions == nil {
		sel.AllRegions = true
		return sel
	}
	sel.Regions = append([]string{}, *s.Regions...)
	return sel
}

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

func renderComponent(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	err := c.Render(ctx, &sb)
	return sb.String(), err
}

// HandleDashboard recomputes the view for the client's signals and patches
// the dashboard content in place.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "Invalid dashboard signals"), requestID)
		return
	}

	sse := datastar.NewSSE(w, r)

	view, err := h.dashboard.Build(r.Context(), signals.selection())
	if err != nil {
		h.patchError(r.Context(), sse, err)
		return
	}

	page := templates.Page{View: view}
	html, err := renderComponent(r.Context(), templates.Content(page))
	if err != nil {
		h.logger.Error("render dashboard content", "error", err, "request_id", requestID)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch dashboard content", "error", err, "request_id", requestID)
		return
	}

	normalized, err := page.Signals()
	if err != nil {
		h.logger.Error("marshal dashboard signals", "error", err, "request_id", requestID)
		return
	}
	sse.PatchSignals([]byte(normalized))

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) patchError(ctx context.Context, sse *datastar.ServerSentEventGenerator, err error) {
	requestID := observability.GetRequestID(ctx)

	message := "An unexpected error occurred"
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		message = appErr.Message
	}
	if errors.IsDataUnavailable(err) {
		message = errors.DataUnavailableMessage
	}
	h.logger.Warn("dashboard update failed", "error", err, "request_id", requestID)

	html, renderErr := renderComponent(ctx, templates.Error(message))
	if renderErr != nil {
		h.logger.Error("render error fragment", "error", renderErr, "request_id", requestID)
		return
	}
	sse.PatchElements(html)
}
