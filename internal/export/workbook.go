// Package export writes dashboard views as spreadsheet workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"olist-dashboard/internal/services"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	SummarySheet         = "Summary"
	RevenueTrendSheet    = "Revenue Trend"
	SegmentsSheet        = "Segments"
	TopCategoriesSheet   = "Top Categories"
	TopRegionsSheet      = "Top Regions"
	RecommendationsSheet = "Recommendations"
)

type sheet struct {
	name    string
	headers []string
	rows    [][]any
	width   float64
}

// Filename is the suggested download name for a view.
func Filename(v *services.View) string {
	return fmt.Sprintf("olist-dashboard_%s_%s.xlsx", v.Selection.Start, v.Selection.End)
}

// Write renders v as an xlsx workbook with one sheet per dashboard panel.
func Write(w io.Writer, v *services.View) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets(v) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return err
		}
		if err := writeSheet(f, s); err != nil {
			return fmt.Errorf("write sheet %s: %w", s.name, err)
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func sheets(v *services.View) []sheet {
	regions := "All"
	if !v.Selection.AllRegions {
		regions = fmt.Sprint(v.Selection.Regions)
	}

	summary := sheet{
		name:    SummarySheet,
		headers: []string{"Metric", "Value"},
		width:   24,
		rows: [][]any{
			{"Period start", v.Selection.Start},
			{"Period end", v.Selection.End},
			{"Regions", regions},
			{"Order lines", v.FilteredRows},
			{"Total orders", v.Summary.TotalOrders},
			{"Total revenue", v.Summary.TotalRevenue},
			{"Average order value", v.Summary.AvgOrder},
			{"Unique customers", v.Summary.UniqueCustomers},
		},
	}

	trend := sheet{name: RevenueTrendSheet, headers: []string{"Month", "Month end", "Revenue"}, width: 16}
	for _, p := range v.RevenueTrend {
		trend.rows = append(trend.rows, []any{p.Label, p.Month.Format("2006-01-02"), p.Revenue})
	}

	segments := sheet{name: SegmentsSheet, headers: []string{"Segment", "Customers", "Share (%)"}, width: 24}
	for _, s := range v.Segments {
		segments.rows = append(segments.rows, []any{s.Segment, s.Count, s.Share})
	}

	categories := sheet{name: TopCategoriesSheet, headers: []string{"Rank", "Category", "Revenue"}, width: 28}
	for i, c := range v.TopCategories {
		categories.rows = append(categories.rows, []any{i + 1, c.Category, c.Revenue})
	}

	regionRanks := sheet{name: TopRegionsSheet, headers: []string{"Rank", "Region", "Revenue"}, width: 16}
	for i, r := range v.TopRegions {
		regionRanks.rows = append(regionRanks.rows, []any{i + 1, r.Region, r.Revenue})
	}

	recs := sheet{name: RecommendationsSheet, headers: []string{"Kind", "Title", "Message"}, width: 32}
	for _, r := range v.Recommendations.Items {
		recs.rows = append(recs.rows, []any{r.Kind, r.Title, r.Message})
	}

	return []sheet{summary, trend, segments, categories, regionRanks, recs}
}

func writeSheet(f *excelize.File, s sheet) error {
	for i, header := range s.headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(s.name, cell, header); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(s.headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(s.name, "A", last, s.width); err != nil {
		return err
	}

	for r, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
