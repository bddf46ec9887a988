// Package templates holds the dashboard's HTML components.
package templates

import (
	"encoding/json"
	"net/url"
	"slices"

	"olist-dashboard/internal/services"
)

// ContentID is the element the live-update stream replaces.
const ContentID = "dashboard-content"

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// Page is everything the dashboard components render from.
type Page struct {
	View *services.View
}

func (p Page) query() url.Values {
	sel := p.View.Selection
	q := url.Values{}
	q.Set("start", sel.Start)
	q.Set("end", sel.End)
	if !sel.AllRegions {
		if len(sel.Regions) == 0 {
			q["region"] = []string{""}
		}
		for _, r := range sel.Regions {
			q.Add("region", r)
		}
	}
	return q
}

// ChartURL links the SVG for the named chart under the current filters.
func (p Page) ChartURL(name string) string {
	return "/charts/" + name + ".svg?" + p.query().Encode()
}

func (p Page) ExportURL() string {
	return "/export.xlsx?" + p.query().Encode()
}

func (p Page) RegionSelected(region string) bool {
	sel := p.View.Selection
	return sel.AllRegions || slices.Contains(sel.Regions, region)
}

// Signals seeds the client-side filter state.
func (p Page) Signals() (string, error) {
	sel := p.View.Selection
	regions := sel.Regions
	if sel.AllRegions {
		regions = p.View.Regions
	}
	if regions == nil {
		regions = []string{}
	}
	b, err := json.Marshal(map[string]any{
		"start":   sel.Start,
		"end":     sel.End,
		"regions": regions,
	})
	return string(b), err
}
