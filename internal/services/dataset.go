package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/sync/errgroup"

	"olist-dashboard/internal/config"
	apperrors "olist-dashboard/internal/errors"
	"olist-dashboard/internal/models"
	"olist-dashboard/internal/observability"
)

const (
	colOrderID    = "order_id"
	colCustomerID = "customer_unique_id"
	colRegion     = "customer_state"
	colPurchaseTS = "order_purchase_timestamp"
	colCategory   = "product_category_name_english"
	colPrice      = "total_price"

	colSegment   = "Segment"
	colRecency   = "Recency"
	colFrequency = "Frequency"
	colMonetary  = "Monetary"

	ctxCheckEvery = 10000
)

var timestampLayouts = []string{
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// Datasets holds both immutable input tables. Nothing mutates them after
// NewDatasets returns.
type Datasets struct {
	Orders   []models.OrderRecord
	Segments []models.SegmentRecord
	LoadedAt time.Time

	buckets []models.Bucket
	regions []string
}

// NewDatasets copies the tables, stamps each order with its bucket and
// derives the bucket and region lists.
func NewDatasets(orders []models.OrderRecord, segments []models.SegmentRecord) *Datasets {
	d := &Datasets{
		Orders:   make([]models.OrderRecord, len(orders)),
		Segments: slices.Clone(segments),
		LoadedAt: time.Now(),
	}
	for i, o := range orders {
		o.Bucket = models.BucketOf(o.PurchasedAt)
		d.Orders[i] = o
	}
	d.buckets = Buckets(d.Orders)
	d.regions = Regions(d.Orders)
	return d
}

// Buckets returns the distinct month buckets present, oldest first.
func (d *Datasets) Buckets() []models.Bucket {
	return d.buckets
}

// Regions returns the distinct region codes, sorted.
func (d *Datasets) Regions() []string {
	return d.regions
}

// DatasetLoader produces the input tables.
type DatasetLoader interface {
	Load(ctx context.Context) (*Datasets, error)
}

type LoaderFunc func(ctx context.Context) (*Datasets, error)

func (f LoaderFunc) Load(ctx context.Context) (*Datasets, error) {
	return f(ctx)
}

// DatasetHandle loads the datasets at most once per process and hands the
// same result, or the same error, to every caller.
type DatasetHandle struct {
	loader  DatasetLoader
	timeout time.Duration

	once sync.Once
	data *Datasets
	err  error
}

func NewDatasetHandle(loader DatasetLoader, timeout time.Duration) *DatasetHandle {
	return &DatasetHandle{loader: loader, timeout: timeout}
}

// NewLoadedHandle wraps tables that are already in memory.
func NewLoadedHandle(data *Datasets) *DatasetHandle {
	h := &DatasetHandle{}
	h.once.Do(func() { h.data = data })
	return h
}

func (h *DatasetHandle) Get(ctx context.Context) (*Datasets, error) {
	h.once.Do(func() {
		// The load outlives the request that happened to trigger it.
		loadCtx := context.WithoutCancel(ctx)
		if h.timeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, h.timeout)
			defer cancel()
		}
		h.data, h.err = h.loader.Load(loadCtx)
		if h.err != nil {
			observability.DatasetLoadFailures.Inc()
		}
	})
	return h.data, h.err
}

// CSVLoader reads the order and segmentation tables from local CSV files.
type CSVLoader struct {
	ordersPath   string
	segmentsPath string
	snapshots    *snapshotStore
	logger       *slog.Logger
}

func NewCSVLoader(cfg config.DatasetsConfig, logger *slog.Logger) *CSVLoader {
	return &CSVLoader{
		ordersPath:   cfg.OrdersFile,
		segmentsPath: cfg.SegmentsFile,
		snapshots:    newSnapshotStore(cfg.SnapshotDir),
		logger:       logger,
	}
}

func (l *CSVLoader) Load(ctx context.Context) (*Datasets, error) {
	start := time.Now()

	if snap, err := l.snapshots.load(l.ordersPath, l.segmentsPath); err == nil {
		data := NewDatasets(snap.Orders, snap.Segments)
		l.record(data, "snapshot", start)
		return data, nil
	}

	l.logger.Info("reading datasets",
		"orders", l.ordersPath,
		"segments", l.segmentsPath,
	)

	var (
		orders   []models.OrderRecord
		segments []models.SegmentRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = readOrders(gctx, l.ordersPath)
		return err
	})
	g.Go(func() error {
		var err error
		segments, err = readSegments(gctx, l.segmentsPath)
		return err
	})
	if err := g.Wait(); err != nil {
		l.logger.Error("dataset load failed", "error", err)
		return nil, err
	}

	data := NewDatasets(orders, segments)

	// Stamp the snapshot with the time reading began so a file rewritten
	// mid-read is newer than the snapshot.
	if err := l.snapshots.save(l.ordersPath, l.segmentsPath, snapshot{
		Orders:    data.Orders,
		Segments:  data.Segments,
		CreatedAt: start,
	}); err != nil {
		l.logger.Warn("failed to save dataset snapshot", "error", err)
	}

	l.record(data, "csv", start)
	return data, nil
}

func (l *CSVLoader) record(data *Datasets, source string, start time.Time) {
	duration := time.Since(start)
	observability.DatasetLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	observability.DatasetRows.WithLabelValues("orders").Set(float64(len(data.Orders)))
	observability.DatasetRows.WithLabelValues("segments").Set(float64(len(data.Segments)))

	l.logger.Info("datasets loaded",
		"source", source,
		"orders", len(data.Orders),
		"segments", len(data.Segments),
		"buckets", len(data.Buckets()),
		"duration", duration,
	)
}

func readTable(path, name string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, apperrors.DataUnavailable(err, fmt.Sprintf("open %s dataset", name))
	}
	defer f.Close()

	return parseTable(f, name)
}

func parseTable(r io.Reader, name string) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return df, apperrors.DataUnavailable(df.Err, fmt.Sprintf("parse %s dataset", name))
	}
	return df, nil
}

func column(df dataframe.DataFrame, name, table string) ([]string, error) {
	if !slices.Contains(df.Names(), name) {
		return nil, apperrors.DataUnavailable(
			fmt.Errorf("column %q not found", name),
			fmt.Sprintf("%s dataset is missing column %s", table, name),
		)
	}
	return df.Col(name).Records(), nil
}

func optionalColumn(df dataframe.DataFrame, name string, n int) []string {
	if !slices.Contains(df.Names(), name) {
		return make([]string, n)
	}
	return df.Col(name).Records()
}

func readOrders(ctx context.Context, path string) ([]models.OrderRecord, error) {
	df, err := readTable(path, "orders")
	if err != nil {
		return nil, err
	}
	return ordersFromFrame(ctx, df)
}

func ordersFromFrame(ctx context.Context, df dataframe.DataFrame) ([]models.OrderRecord, error) {
	if df.Nrow() == 0 {
		return nil, apperrors.DataUnavailable(fmt.Errorf("no rows"), "orders dataset is empty")
	}

	cols := make(map[string][]string, 6)
	for _, name := range []string{colOrderID, colCustomerID, colRegion, colPurchaseTS, colCategory, colPrice} {
		values, err := column(df, name, "orders")
		if err != nil {
			return nil, err
		}
		cols[name] = values
	}

	orders := make([]models.OrderRecord, df.Nrow())
	for i := range orders {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, apperrors.DataUnavailable(err, "orders dataset load interrupted")
			}
		}

		ts, err := parseTimestamp(cols[colPurchaseTS][i])
		if err != nil {
			return nil, apperrors.DataUnavailable(err, fmt.Sprintf("orders row %d: invalid %s", i+2, colPurchaseTS))
		}

		price, err := parsePrice(cols[colPrice][i])
		if err != nil {
			return nil, apperrors.DataUnavailable(err, fmt.Sprintf("orders row %d: invalid %s", i+2, colPrice))
		}

		orders[i] = models.OrderRecord{
			OrderID:          cell(cols[colOrderID][i]),
			CustomerUniqueID: cell(cols[colCustomerID][i]),
			Region:           cell(cols[colRegion][i]),
			PurchasedAt:      ts,
			Category:         cell(cols[colCategory][i]),
			Price:            price,
			Bucket:           models.BucketOf(ts),
		}
	}

	return orders, nil
}

func readSegments(ctx context.Context, path string) ([]models.SegmentRecord, error) {
	df, err := readTable(path, "segmentation")
	if err != nil {
		return nil, err
	}
	return segmentsFromFrame(ctx, df)
}

func segmentsFromFrame(ctx context.Context, df dataframe.DataFrame) ([]models.SegmentRecord, error) {
	labels, err := column(df, colSegment, "segmentation")
	if err != nil {
		return nil, err
	}

	n := df.Nrow()
	customers := optionalColumn(df, colCustomerID, n)
	recency := optionalColumn(df, colRecency, n)
	frequency := optionalColumn(df, colFrequency, n)
	monetary := optionalColumn(df, colMonetary, n)

	segments := make([]models.SegmentRecord, n)
	for i := range segments {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, apperrors.DataUnavailable(err, "segmentation dataset load interrupted")
			}
		}
		segments[i] = models.SegmentRecord{
			CustomerUniqueID: cell(customers[i]),
			Segment:          cell(labels[i]),
			Recency:          parseOptionalFloat(recency[i]),
			Frequency:        parseOptionalFloat(frequency[i]),
			Monetary:         parseOptionalFloat(monetary[i]),
		}
	}

	return segments, nil
}

// cell normalizes a raw string cell; gota reports missing strings as "NaN".
func cell(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "NaN" {
		return ""
	}
	return v
}

func parseTimestamp(raw string) (time.Time, error) {
	v := cell(raw)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", v)
}

// parsePrice treats a missing price as zero; anything else must be numeric.
func parsePrice(raw string) (float64, error) {
	v := cell(raw)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

func parseOptionalFloat(raw string) float64 {
	f, err := strconv.ParseFloat(cell(raw), 64)
	if err != nil {
		return 0
	}
	return f
}
