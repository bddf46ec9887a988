package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"olist-dashboard/internal/errors"
	"olist-dashboard/internal/observability"
	"olist-dashboard/internal/services"
)

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

// ParseSelection reads the filter state from the query string. A missing
// region key selects every region; a present but empty one selects none.
func ParseSelection(r *http.Request) services.Selection {
	q := r.URL.Query()
	sel := services.Selection{
		Start: strings.TrimSpace(q.Get("start")),
		End:   strings.TrimSpace(q.Get("end")),
	}

	regions, ok := q["region"]
	if !ok {
		sel.AllRegions = true
		return sel
	}
	sel.Regions = make([]string, 0, len(regions))
	for _, region := range regions {
		if region = strings.TrimSpace(region); region != "" {
			sel.Regions = append(sel.Regions, region)
		}
	}
	return sel
}

type APIHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

func (h *APIHandlers) view(w http.ResponseWriter, r *http.Request) (*services.View, bool) {
	view, err := h.dashboard.Build(r.Context(), ParseSelection(r))
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return nil, false
	}
	return view, true
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if view, ok := h.view(w, r); ok {
		errors.WriteSuccessWithHeaders(w, view, cacheHeaders)
	}
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if view, ok := h.view(w, r); ok {
		errors.WriteSuccessWithHeaders(w, view.Summary, cacheHeaders)
	}
}

func (h *APIHandlers) HandleRevenueTrend(w http.ResponseWriter, r *http.Request) {
	if view, ok := h.view(w, r); ok {
		errors.WriteSuccessWithHeaders(w, view.RevenueTrend, cacheHeaders)
	}
}

func (h *APIHandlers) HandleSegments(w http.ResponseWriter, r *http.Request) {
	if view, ok := h.view(w, r); ok {
		errors.WriteSuccessWithHeaders(w, view.Segments, cacheHeaders)
	}
}

func (h *APIHandlers) HandleTopCategories(w http.ResponseWriter, r *http.Request) {
	if view, ok := h.view(w, r); ok {
		errors.WriteSuccessWithHeaders(w, view.TopCategories, cacheHeaders)
	}
}

func (h *APIHandlers) HandleTopRegions(w http.ResponseWriter, r *http.Request) {
	if view, ok := h.view(w, r); ok {
		errors.WriteSuccessWithHeaders(w, view.TopRegions, cacheHeaders)
	}
}

func (h *APIHandlers) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	if view, ok := h.view(w, r); ok {
		errors.WriteSuccessWithHeaders(w, view.Recommendations, cacheHeaders)
	}
}

// HandleFilters lists the selectable periods and regions with the default
// selection.
func (h *APIHandlers) HandleFilters(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.Datasets(r.Context())
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccessWithHeaders(w, map[string]any{
		"buckets": data.Buckets(),
		"regions": data.Regions(),
		"default": data.DefaultSelection(),
	}, cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	datasets := "ready"
	if _, err := h.dashboard.Datasets(r.Context()); err != nil {
		datasets = "unavailable"
	}

	healthData := map[string]string{
		"status":    "healthy",
		"datasets":  datasets,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.dashboard.Stats(r.Context())

	errors.WriteSuccess(w, stats)
}
