package services

import "olist-dashboard/internal/models"

// Summarize computes the KPI tiles over a filtered order set.
func Summarize(orders []models.OrderRecord) models.Summary {
	orderIDs := make(map[string]struct{})
	customers := make(map[string]struct{})
	var revenue float64

	for _, o := range orders {
		orderIDs[o.OrderID] = struct{}{}
		customers[o.CustomerUniqueID] = struct{}{}
		revenue += o.Price
	}

	s := models.Summary{
		TotalOrders:     len(orderIDs),
		TotalRevenue:    revenue,
		UniqueCustomers: len(customers),
	}
	if s.TotalOrders > 0 {
		s.AvgOrder = s.TotalRevenue / float64(s.TotalOrders)
	}
	return s
}
