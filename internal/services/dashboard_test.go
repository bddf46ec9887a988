package services

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olist-dashboard/internal/config"
	apperrors "olist-dashboard/internal/errors"
)

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{ViewTTL: time.Minute, ViewCapacity: 16}
}

func TestDashboard_Build(t *testing.T) {
	dash := NewDashboard(NewLoadedHandle(newTestDatasets()), testCacheConfig(), quietLogger())

	view, err := dash.Build(context.Background(), Selection{AllRegions: true})
	require.NoError(t, err)

	assert.Equal(t, "Jan 2017", view.Selection.Start)
	assert.Equal(t, "Aug 2018", view.Selection.End)
	assert.Equal(t, 42, view.FilteredRows)
	assert.Equal(t, 41, view.Summary.TotalOrders)
	assert.Equal(t, 22, view.Summary.UniqueCustomers)
	assert.Len(t, view.RevenueTrend, 20)
	assert.Len(t, view.Buckets, 20)
	assert.Equal(t, []string{"MG", "RJ", "SP"}, view.Regions)
	assert.LessOrEqual(t, len(view.TopCategories), TopN)
	assert.Equal(t, 50, view.Recommendations.Champions)
	assert.Equal(t, 30, view.Recommendations.AtRisk)
	assert.Equal(t, view.TopCategories[0].Category, view.Recommendations.TopCategory)
}

func TestDashboard_SegmentsIgnoreFilters(t *testing.T) {
	dash := NewDashboard(NewLoadedHandle(newTestDatasets()), testCacheConfig(), quietLogger())

	full, err := dash.Build(context.Background(), Selection{AllRegions: true})
	require.NoError(t, err)
	empty, err := dash.Build(context.Background(), Selection{Regions: []string{}})
	require.NoError(t, err)

	assert.Zero(t, empty.FilteredRows)
	assert.Empty(t, empty.RevenueTrend)
	assert.Empty(t, empty.TopCategories)
	assert.Equal(t, NotAvailable, empty.Recommendations.TopCategory)
	assert.Equal(t, full.Segments, empty.Segments)
	assert.Equal(t, full.Recommendations.Champions, empty.Recommendations.Champions)
}

func TestDashboard_CachesViews(t *testing.T) {
	dash := NewDashboard(NewLoadedHandle(newTestDatasets()), testCacheConfig(), quietLogger())
	ctx := context.Background()

	first, err := dash.Build(ctx, Selection{Regions: []string{"SP", "RJ"}})
	require.NoError(t, err)

	// Same selection after normalization.
	second, err := dash.Build(ctx, Selection{Start: "Jan 2017", End: "Aug 2018", Regions: []string{"RJ", "SP", "SP"}})
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := dash.Build(ctx, Selection{Regions: []string{"SP"}})
	require.NoError(t, err)
	assert.NotSame(t, first, other)

	assert.Equal(t, 2, dash.Stats(ctx)["cached_views"])
}

func TestDashboard_InvalidSelection(t *testing.T) {
	dash := NewDashboard(NewLoadedHandle(newTestDatasets()), testCacheConfig(), quietLogger())

	_, err := dash.Build(context.Background(), Selection{Start: "Aug 2018", End: "Jan 2017", AllRegions: true})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Equal(t, 0, dash.Stats(context.Background())["cached_views"])
}

func TestDashboard_DataUnavailable(t *testing.T) {
	var calls atomic.Int32
	handle := NewDatasetHandle(LoaderFunc(func(ctx context.Context) (*Datasets, error) {
		calls.Add(1)
		return nil, apperrors.DataUnavailable(os.ErrNotExist, "open orders dataset")
	}), time.Second)
	dash := NewDashboard(handle, testCacheConfig(), quietLogger())

	for i := 0; i < 2; i++ {
		_, err := dash.Build(context.Background(), Selection{AllRegions: true})
		assert.True(t, apperrors.IsDataUnavailable(err))
	}
	assert.Equal(t, int32(1), calls.Load())

	stats := dash.Stats(context.Background())
	assert.Equal(t, "data_unavailable", stats["status"])
}

func TestDashboard_Stats(t *testing.T) {
	dash := NewDashboard(NewLoadedHandle(newTestDatasets()), testCacheConfig(), quietLogger())

	stats := dash.Stats(context.Background())
	assert.Equal(t, "ready", stats["status"])
	assert.Equal(t, 42, stats["orders"])
	assert.Equal(t, 100, stats["segments"])
	assert.Equal(t, 3, stats["regions"])
	assert.Equal(t, 20, stats["buckets"])
	assert.Equal(t, "Jan 2017", stats["first_period"])
	assert.Equal(t, "Aug 2018", stats["last_period"])
}

func TestDashboard_EvictionLifecycle(t *testing.T) {
	dash := NewDashboard(NewLoadedHandle(newTestDatasets()), testCacheConfig(), quietLogger())

	// Close without a running janitor must not block.
	dash.Close()

	dash.StartEviction()
	dash.StartEviction()
	dash.Close()
	dash.Close()
}
