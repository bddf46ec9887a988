package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olist-dashboard/internal/models"
)

func stamped(orders ...models.OrderRecord) []models.OrderRecord {
	return NewDatasets(orders, nil).Orders
}

func TestSummarize(t *testing.T) {
	orders := stamped(
		order("o1", "u1", "SP", month(2017, time.January, 5), "toys", 100),
		order("o1", "u1", "SP", month(2017, time.January, 5), "garden", 50),
		order("o2", "u2", "RJ", month(2017, time.February, 5), "toys", 75.5),
		order("o3", "u1", "SP", month(2017, time.March, 5), "toys", 24.5),
	)

	got := Summarize(orders)
	assert.Equal(t, 3, got.TotalOrders)
	assert.Equal(t, 2, got.UniqueCustomers)
	assert.InDelta(t, 250.0, got.TotalRevenue, 1e-9)
	assert.InDelta(t, 250.0/3, got.AvgOrder, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	assert.Equal(t, models.Summary{}, got)
}

func TestRevenueTrend(t *testing.T) {
	orders := stamped(
		order("o3", "u3", "SP", month(2017, time.April, 2), "toys", 30),
		order("o1", "u1", "SP", month(2017, time.January, 5), "toys", 10),
		order("o2", "u2", "RJ", month(2017, time.January, 28), "toys", 5),
	)

	trend := RevenueTrend(orders)
	require.Len(t, trend, 4)

	wantLabels := []string{"Jan 2017", "Feb 2017", "Mar 2017", "Apr 2017"}
	wantRevenue := []float64{15, 0, 0, 30}
	for i, point := range trend {
		assert.Equal(t, wantLabels[i], point.Label)
		assert.InDelta(t, wantRevenue[i], point.Revenue, 1e-9)
	}

	assert.Equal(t, time.Date(2017, time.January, 31, 0, 0, 0, 0, time.UTC), trend[0].Month)
	assert.Equal(t, time.Date(2017, time.February, 28, 0, 0, 0, 0, time.UTC), trend[1].Month)
}

func TestRevenueTrend_YearBoundary(t *testing.T) {
	orders := stamped(
		order("o1", "u1", "SP", month(2017, time.November, 5), "toys", 1),
		order("o2", "u1", "SP", month(2018, time.February, 5), "toys", 2),
	)

	trend := RevenueTrend(orders)
	require.Len(t, trend, 4)
	assert.Equal(t, "Dec 2017", trend[1].Label)
	assert.Equal(t, "Jan 2018", trend[2].Label)
}

func TestRevenueTrend_Empty(t *testing.T) {
	trend := RevenueTrend(nil)
	assert.NotNil(t, trend)
	assert.Empty(t, trend)
}

func TestRevenueTrend_SumsToTotal(t *testing.T) {
	data := newTestDatasets()

	var sum float64
	for _, p := range RevenueTrend(data.Orders) {
		sum += p.Revenue
	}
	assert.InDelta(t, Summarize(data.Orders).TotalRevenue, sum, 1e-6)
}

func TestSegmentDistribution(t *testing.T) {
	segments := []models.SegmentRecord{
		{Segment: "Lost"},
		{Segment: SegmentChampions},
		{Segment: "Lost"},
		{Segment: SegmentAtRisk},
		{Segment: SegmentChampions},
		{Segment: "Promising"},
	}

	got := SegmentDistribution(segments)
	require.Len(t, got, 4)

	assert.Equal(t, models.SegmentCount{Segment: "Lost", Count: 2, Share: 100.0 / 3}, got[0])
	assert.Equal(t, SegmentChampions, got[1].Segment)
	assert.Equal(t, SegmentAtRisk, got[2].Segment)
	assert.Equal(t, "Promising", got[3].Segment)

	total := 0
	for _, c := range got {
		total += c.Count
	}
	assert.Equal(t, len(segments), total)
}

func TestSegmentDistribution_Empty(t *testing.T) {
	got := SegmentDistribution(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTopCategories(t *testing.T) {
	var orders []models.OrderRecord
	for i := 0; i < 15; i++ {
		orders = append(orders, order(fmt.Sprintf("o%d", i), "u", "SP", month(2017, time.May, 1), fmt.Sprintf("cat-%02d", i), float64(i+1)))
	}
	orders = append(orders, order("x", "u", "SP", month(2017, time.May, 1), "", 1000))

	got := TopCategories(stamped(orders...), TopN)
	require.Len(t, got, TopN)

	assert.Equal(t, "cat-14", got[0].Category)
	assert.InDelta(t, 15.0, got[0].Revenue, 1e-9)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Revenue, got[i].Revenue)
	}
	for _, c := range got {
		assert.NotEmpty(t, c.Category)
	}
}

func TestTopCategories_TiesKeepFirstSeen(t *testing.T) {
	orders := stamped(
		order("o1", "u", "SP", month(2017, time.May, 1), "b", 10),
		order("o2", "u", "SP", month(2017, time.May, 1), "a", 10),
		order("o3", "u", "SP", month(2017, time.May, 1), "c", 5),
		order("o4", "u", "SP", month(2017, time.May, 1), "c", 5),
	)

	got := TopCategories(orders, TopN)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].Category)
	assert.Equal(t, "a", got[1].Category)
	assert.Equal(t, "c", got[2].Category)
}

func TestTopCategories_Empty(t *testing.T) {
	assert.Empty(t, TopCategories(nil, TopN))
}

func TestTopRegions(t *testing.T) {
	data := newTestDatasets()

	got := TopRegions(data.Orders, TopN)
	require.Len(t, got, 3)
	assert.Equal(t, "SP", got[0].Region)
	assert.Equal(t, "RJ", got[1].Region)
	assert.Equal(t, "MG", got[2].Region)
	assert.InDelta(t, 33.0, got[2].Revenue, 1e-9)

	assert.Len(t, TopRegions(data.Orders, 1), 1)
}

func TestTopRegions_CapsAtTopN(t *testing.T) {
	states := []string{"AC", "AL", "AM", "BA", "CE", "DF", "ES", "GO", "MA", "MG", "PR", "RJ", "RS", "SP"}
	var orders []models.OrderRecord
	for i, state := range states {
		// Alternate small and large totals so input order differs from rank.
		price := float64((i%2)*1000 + i + 1)
		orders = append(orders, order(fmt.Sprintf("o%d", i), "u", state, month(2017, time.June, 1), "toys", price))
	}

	got := TopRegions(stamped(orders...), TopN)
	require.Len(t, got, TopN)
	assert.Equal(t, "SP", got[0].Region)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Revenue, got[i].Revenue, "rank %d", i)
	}

	kept := make(map[string]bool, len(got))
	for _, r := range got {
		kept[r.Region] = true
	}
	for _, dropped := range []string{"AC", "AM", "CE", "ES"} {
		assert.False(t, kept[dropped], "%s should fall outside the top %d", dropped, TopN)
	}
}
