package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"olist-dashboard/internal/models"
	"olist-dashboard/internal/services"
)

func testView() *services.View {
	jan := models.BucketOf(time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC))
	return &services.View{
		Selection:    services.Selection{Start: "Jan 2017", End: "Feb 2017", Regions: []string{"RJ", "SP"}},
		FilteredRows: 3,
		Summary: models.Summary{
			TotalOrders:     2,
			TotalRevenue:    250,
			AvgOrder:        125,
			UniqueCustomers: 2,
		},
		RevenueTrend: []models.MonthlyRevenue{
			{Month: jan.End(), Label: jan.Label, Revenue: 150},
			{Month: jan.Next().End(), Label: jan.Next().Label, Revenue: 100},
		},
		Segments: []models.SegmentCount{
			{Segment: services.SegmentChampions, Count: 3, Share: 75},
			{Segment: services.SegmentAtRisk, Count: 1, Share: 25},
		},
		TopCategories: []models.CategoryRevenue{{Category: "toys", Revenue: 200}, {Category: "garden", Revenue: 50}},
		TopRegions:    []models.RegionRevenue{{Region: "SP", Revenue: 250}},
		Recommendations: services.Recommend(
			[]models.SegmentRecord{{Segment: services.SegmentChampions}},
			[]models.CategoryRevenue{{Category: "toys", Revenue: 200}},
		),
	}
}

func openWorkbook(t *testing.T, v *services.View) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, v))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWrite(t *testing.T) {
	f := openWorkbook(t, testView())

	assert.Equal(t, []string{
		SummarySheet,
		RevenueTrendSheet,
		SegmentsSheet,
		TopCategoriesSheet,
		TopRegionsSheet,
		RecommendationsSheet,
	}, f.GetSheetList())

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 9)
	assert.Equal(t, []string{"Metric", "Value"}, summary[0])
	assert.Equal(t, []string{"Period start", "Jan 2017"}, summary[1])
	assert.Equal(t, []string{"Regions", "[RJ SP]"}, summary[3])
	assert.Equal(t, []string{"Total orders", "2"}, summary[5])

	trend, err := f.GetRows(RevenueTrendSheet)
	require.NoError(t, err)
	require.Len(t, trend, 3)
	assert.Equal(t, []string{"Feb 2017", "2017-02-28", "100"}, trend[2])

	categories, err := f.GetRows(TopCategoriesSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "toys", "200"}, categories[1])

	recs, err := f.GetRows(RecommendationsSheet)
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Contains(t, recs[3][2], "toys")
}

func TestWrite_EmptyView(t *testing.T) {
	v := &services.View{Selection: services.Selection{Start: "Jan 2017", End: "Jan 2017", AllRegions: true}}
	f := openWorkbook(t, v)

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Regions", "All"}, summary[3])

	rows, err := f.GetRows(TopRegionsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "olist-dashboard_Jan 2017_Feb 2017.xlsx", Filename(testView()))
}
