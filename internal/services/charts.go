package services

import (
	"slices"

	"olist-dashboard/internal/models"
)

// TopN caps the category and region rankings.
const TopN = 10

// RevenueTrend sums revenue per calendar month, oldest first. Months between
// the first and last order with no sales are reported as zero.
func RevenueTrend(orders []models.OrderRecord) []models.MonthlyRevenue {
	if len(orders) == 0 {
		return []models.MonthlyRevenue{}
	}

	sums := make(map[int]float64)
	first, last := orders[0].Bucket, orders[0].Bucket
	for _, o := range orders {
		sums[o.Bucket.Index] += o.Price
		if o.Bucket.Index < first.Index {
			first = o.Bucket
		}
		if o.Bucket.Index > last.Index {
			last = o.Bucket
		}
	}

	trend := make([]models.MonthlyRevenue, 0, last.Index-first.Index+1)
	for b := first; b.Index <= last.Index; b = b.Next() {
		trend = append(trend, models.MonthlyRevenue{
			Month:   b.End(),
			Label:   b.Label,
			Revenue: sums[b.Index],
		})
	}
	return trend
}

// SegmentDistribution counts customers per segment label, largest first
// with ties in order of first appearance.
func SegmentDistribution(segments []models.SegmentRecord) []models.SegmentCount {
	index := make(map[string]int)
	counts := make([]models.SegmentCount, 0)
	for _, s := range segments {
		i, ok := index[s.Segment]
		if !ok {
			i = len(counts)
			index[s.Segment] = i
			counts = append(counts, models.SegmentCount{Segment: s.Segment})
		}
		counts[i].Count++
	}

	slices.SortStableFunc(counts, func(a, b models.SegmentCount) int {
		return b.Count - a.Count
	})

	if total := len(segments); total > 0 {
		for i := range counts {
			counts[i].Share = float64(counts[i].Count) * 100 / float64(total)
		}
	}
	return counts
}

// TopCategories ranks categories by summed price. Orders without a category
// are left out.
func TopCategories(orders []models.OrderRecord, limit int) []models.CategoryRevenue {
	index := make(map[string]int)
	ranked := make([]models.CategoryRevenue, 0)
	for _, o := range orders {
		if o.Category == "" {
			continue
		}
		i, ok := index[o.Category]
		if !ok {
			i = len(ranked)
			index[o.Category] = i
			ranked = append(ranked, models.CategoryRevenue{Category: o.Category})
		}
		ranked[i].Revenue += o.Price
	}

	slices.SortStableFunc(ranked, func(a, b models.CategoryRevenue) int {
		return compareDesc(a.Revenue, b.Revenue)
	})
	return head(ranked, limit)
}

// TopRegions ranks regions by summed price.
func TopRegions(orders []models.OrderRecord, limit int) []models.RegionRevenue {
	index := make(map[string]int)
	ranked := make([]models.RegionRevenue, 0)
	for _, o := range orders {
		i, ok := index[o.Region]
		if !ok {
			i = len(ranked)
			index[o.Region] = i
			ranked = append(ranked, models.RegionRevenue{Region: o.Region})
		}
		ranked[i].Revenue += o.Price
	}

	slices.SortStableFunc(ranked, func(a, b models.RegionRevenue) int {
		return compareDesc(a.Revenue, b.Revenue)
	})
	return head(ranked, limit)
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

func head[T any](s []T, limit int) []T {
	if limit >= 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
