package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"olist-dashboard/internal/config"
	"olist-dashboard/internal/models"
	"olist-dashboard/internal/observability"
)

// View is one full recomputation of the dashboard for a selection. Views are
// shared between requests and must be treated as read-only.
type View struct {
	Selection       Selection                `json:"selection"`
	Buckets         []models.Bucket          `json:"buckets"`
	Regions         []string                 `json:"regions"`
	FilteredRows    int                      `json:"filtered_rows"`
	Summary         models.Summary           `json:"summary"`
	RevenueTrend    []models.MonthlyRevenue  `json:"revenue_trend"`
	Segments        []models.SegmentCount    `json:"segments"`
	TopCategories   []models.CategoryRevenue `json:"top_categories"`
	TopRegions      []models.RegionRevenue   `json:"top_regions"`
	Recommendations models.Recommendations   `json:"recommendations"`
	GeneratedAt     time.Time                `json:"generated_at"`
}

type Dashboard struct {
	datasets *DatasetHandle
	views    *ttlcache.Cache[string, *View]
	logger   *slog.Logger
	evicting atomic.Bool
}

func NewDashboard(datasets *DatasetHandle, cfg config.CacheConfig, logger *slog.Logger) *Dashboard {
	opts := []ttlcache.Option[string, *View]{
		ttlcache.WithTTL[string, *View](cfg.ViewTTL),
	}
	if cfg.ViewCapacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, *View](cfg.ViewCapacity))
	}

	return &Dashboard{
		datasets: datasets,
		views:    ttlcache.New(opts...),
		logger:   logger,
	}
}

// StartEviction runs the expired-view janitor until Close is called.
func (d *Dashboard) StartEviction() {
	if d.evicting.CompareAndSwap(false, true) {
		go d.views.Start()
	}
}

func (d *Dashboard) Close() {
	if d.evicting.CompareAndSwap(true, false) {
		d.views.Stop()
	}
}

func (d *Dashboard) Datasets(ctx context.Context) (*Datasets, error) {
	return d.datasets.Get(ctx)
}

// Build runs the filter, aggregation, chart and recommendation steps for sel.
// Empty Start/End default to the full range.
func (d *Dashboard) Build(ctx context.Context, sel Selection) (*View, error) {
	data, err := d.datasets.Get(ctx)
	if err != nil {
		return nil, err
	}

	sel = data.Normalize(sel)
	key := sel.Key()

	if item := d.views.Get(key); item != nil {
		observability.ViewBuilds.WithLabelValues("hit").Inc()
		return item.Value(), nil
	}
	observability.ViewBuilds.WithLabelValues("miss").Inc()

	_, span := observability.StartSpan(ctx, "dashboard.build")
	span.SetTag("selection", key)
	defer func() {
		span.Finish()
		d.logger.Debug("dashboard view computed", "span", span)
	}()

	start := time.Now()
	filtered, err := Filter(data.Orders, data.Buckets(), sel)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	topCategories := TopCategories(filtered, TopN)
	view := &View{
		Selection:       sel,
		Buckets:         data.Buckets(),
		Regions:         data.Regions(),
		FilteredRows:    len(filtered),
		Summary:         Summarize(filtered),
		RevenueTrend:    RevenueTrend(filtered),
		Segments:        SegmentDistribution(data.Segments),
		TopCategories:   topCategories,
		TopRegions:      TopRegions(filtered, TopN),
		Recommendations: Recommend(data.Segments, topCategories),
		GeneratedAt:     time.Now(),
	}
	observability.ViewBuildDuration.Observe(time.Since(start).Seconds())

	d.views.Set(key, view, ttlcache.DefaultTTL)
	return view, nil
}

// Stats reports dataset and cache sizes for the admin endpoint.
func (d *Dashboard) Stats(ctx context.Context) map[string]any {
	stats := map[string]any{
		"cached_views": d.views.Len(),
	}

	data, err := d.datasets.Get(ctx)
	if err != nil {
		stats["status"] = "data_unavailable"
		stats["error"] = err.Error()
		return stats
	}

	buckets := data.Buckets()
	stats["status"] = "ready"
	stats["orders"] = len(data.Orders)
	stats["segments"] = len(data.Segments)
	stats["regions"] = len(data.Regions())
	stats["buckets"] = len(buckets)
	stats["loaded_at"] = data.LoadedAt
	if len(buckets) > 0 {
		stats["first_period"] = buckets[0].Label
		stats["last_period"] = buckets[len(buckets)-1].Label
	}
	return stats
}
