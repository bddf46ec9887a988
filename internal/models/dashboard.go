package models

import "time"

type Summary struct {
	TotalOrders     int     `json:"total_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
	AvgOrder        float64 `json:"avg_order"`
	UniqueCustomers int     `json:"unique_customers"`
}

type MonthlyRevenue struct {
	Month   time.Time `json:"month"`
	Label   string    `json:"label"`
	Revenue float64   `json:"revenue"`
}

type SegmentCount struct {
	Segment string  `json:"segment"`
	Count   int     `json:"count"`
	Share   float64 `json:"share"`
}

type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

type RegionRevenue struct {
	Region  string  `json:"region"`
	Revenue float64 `json:"revenue"`
}

type Recommendation struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type Recommendations struct {
	Champions   int              `json:"champions"`
	AtRisk      int              `json:"at_risk"`
	TopCategory string           `json:"top_category"`
	Items       []Recommendation `json:"items"`
}
