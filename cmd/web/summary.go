package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"olist-dashboard/internal/format"
	"olist-dashboard/internal/services"
)

func newSummaryCmd(a *app) *cobra.Command {
	var (
		start   string
		end     string
		regions []string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard KPIs and rankings for a selection",
		Example: `  olist-dashboard summary
  olist-dashboard summary --start "Jan 2017" --end "Aug 2018" --region SP --region RJ`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := services.Selection{Start: start, End: end, AllRegions: true}
			if cmd.Flags().Changed("region") {
				sel = services.Selection{Start: start, End: end, Regions: regions}
			}

			view, err := a.dashboard().Build(cmd.Context(), sel)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", `first month, e.g. "Jan 2017" (default earliest)`)
	cmd.Flags().StringVar(&end, "end", "", `last month, e.g. "Aug 2018" (default latest)`)
	cmd.Flags().StringSliceVar(&regions, "region", nil, "region code to include, repeatable (default all)")
	return cmd
}

func printSummary(w io.Writer, v *services.View) error {
	fmt.Fprintf(w, "Showing business performance from %s to %s.\n\n", v.Selection.Start, v.Selection.End)

	kpis := tablewriter.NewWriter(w)
	kpis.SetHeader([]string{"Metric", "Value"})
	kpis.AppendBulk([][]string{
		{"Total orders", format.Int(v.Summary.TotalOrders)},
		{"Total revenue", format.Money(v.Summary.TotalRevenue)},
		{"Average order value", format.Money(v.Summary.AvgOrder)},
		{"Unique customers", format.Int(v.Summary.UniqueCustomers)},
	})
	kpis.Render()
	fmt.Fprintln(w)

	categories := tablewriter.NewWriter(w)
	categories.SetHeader([]string{"#", "Category", "Revenue"})
	for i, c := range v.TopCategories {
		categories.Append([]string{fmt.Sprint(i + 1), c.Category, format.Money(c.Revenue)})
	}
	categories.Render()
	fmt.Fprintln(w)

	regions := tablewriter.NewWriter(w)
	regions.SetHeader([]string{"#", "Region", "Revenue"})
	for i, r := range v.TopRegions {
		regions.Append([]string{fmt.Sprint(i + 1), r.Region, format.Money(r.Revenue)})
	}
	regions.Render()
	fmt.Fprintln(w)

	segments := tablewriter.NewWriter(w)
	segments.SetHeader([]string{"Segment", "Customers", "Share"})
	for _, s := range v.Segments {
		segments.Append([]string{s.Segment, format.Int(s.Count), format.Percent(s.Share)})
	}
	segments.Render()
	fmt.Fprintln(w)

	for _, rec := range v.Recommendations.Items {
		fmt.Fprintf(w, "- %s: %s\n", rec.Title, rec.Message)
	}
	return nil
}
