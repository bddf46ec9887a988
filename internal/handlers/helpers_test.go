package handlers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"olist-dashboard/internal/config"
	apperrors "olist-dashboard/internal/errors"
	"olist-dashboard/internal/models"
	"olist-dashboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testCache() config.CacheConfig {
	return config.CacheConfig{ViewTTL: time.Minute, ViewCapacity: 32}
}

func createTestDashboard() *services.Dashboard {
	at := func(month time.Month, day int) time.Time {
		return time.Date(2017, month, day, 10, 0, 0, 0, time.UTC)
	}
	orders := []models.OrderRecord{
		{OrderID: "o1", CustomerUniqueID: "u1", Region: "SP", PurchasedAt: at(time.January, 5), Category: "health_beauty", Price: 100},
		{OrderID: "o1", CustomerUniqueID: "u1", Region: "SP", PurchasedAt: at(time.January, 5), Category: "toys", Price: 50},
		{OrderID: "o2", CustomerUniqueID: "u2", Region: "RJ", PurchasedAt: at(time.February, 11), Category: "health_beauty", Price: 80},
		{OrderID: "o3", CustomerUniqueID: "u3", Region: "RJ", PurchasedAt: at(time.March, 2), Category: "garden", Price: 20},
	}
	segments := []models.SegmentRecord{
		{CustomerUniqueID: "u1", Segment: services.SegmentChampions},
		{CustomerUniqueID: "u2", Segment: services.SegmentAtRisk},
		{CustomerUniqueID: "u3", Segment: services.SegmentChampions},
	}

	handle := services.NewLoadedHandle(services.NewDatasets(orders, segments))
	return services.NewDashboard(handle, testCache(), testLogger())
}

func createUnavailableDashboard() *services.Dashboard {
	handle := services.NewDatasetHandle(services.LoaderFunc(func(ctx context.Context) (*services.Datasets, error) {
		return nil, apperrors.DataUnavailable(os.ErrNotExist, "open orders dataset")
	}), time.Second)
	return services.NewDashboard(handle, testCache(), testLogger())
}
