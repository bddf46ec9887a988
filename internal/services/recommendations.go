package services

import (
	"fmt"

	"olist-dashboard/internal/format"
	"olist-dashboard/internal/models"
)

const (
	SegmentChampions = "Champions (VIP)"
	SegmentAtRisk    = "At Risk / Hibernating"

	// NotAvailable stands in for the top category when nothing was sold.
	NotAvailable = "N/A"
)

const (
	retainTemplate  = "Pamper %s VIP customers with exclusive promotions."
	winBackTemplate = "Reach out to %s lapsed customers before they churn."
	restockTemplate = "Keep the %s category in stock at all times; demand for it is high."
)

// Recommend fills the action templates from the unfiltered segmentation table
// and the current category ranking.
func Recommend(segments []models.SegmentRecord, topCategories []models.CategoryRevenue) models.Recommendations {
	var champions, atRisk int
	for _, s := range segments {
		switch s.Segment {
		case SegmentChampions:
			champions++
		case SegmentAtRisk:
			atRisk++
		}
	}

	topCategory := NotAvailable
	if len(topCategories) > 0 {
		topCategory = topCategories[0].Category
	}

	return models.Recommendations{
		Champions:   champions,
		AtRisk:      atRisk,
		TopCategory: topCategory,
		Items: []models.Recommendation{
			{Kind: "info", Title: "Retain VIPs", Message: fmt.Sprintf(retainTemplate, format.Int(champions))},
			{Kind: "warning", Title: "Win back at-risk customers", Message: fmt.Sprintf(winBackTemplate, format.Int(atRisk))},
			{Kind: "success", Title: "Stock planning", Message: fmt.Sprintf(restockTemplate, topCategory)},
		},
	}
}
