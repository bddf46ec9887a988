package services

import (
	"fmt"
	"slices"
	"strings"

	apperrors "olist-dashboard/internal/errors"
	"olist-dashboard/internal/models"
)

// Selection is the operator's filter state: an inclusive bucket range by
// label and a region set. AllRegions disables the region dimension; an
// explicit empty Regions set selects nothing.
type Selection struct {
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Regions    []string `json:"regions"`
	AllRegions bool     `json:"all_regions"`
}

// Key identifies a normalized selection for memoization.
func (s Selection) Key() string {
	regions := "*"
	if !s.AllRegions {
		regions = "[" + strings.Join(s.Regions, ",") + "]"
	}
	return s.Start + "|" + s.End + "|" + regions
}

// Buckets returns the distinct buckets of orders ordered by Index.
func Buckets(orders []models.OrderRecord) []models.Bucket {
	seen := make(map[int]models.Bucket)
	for _, o := range orders {
		seen[o.Bucket.Index] = o.Bucket
	}

	buckets := make([]models.Bucket, 0, len(seen))
	for _, b := range seen {
		buckets = append(buckets, b)
	}
	slices.SortFunc(buckets, func(a, b models.Bucket) int {
		return a.Index - b.Index
	})
	return buckets
}

// Regions returns the distinct region codes of orders, sorted.
func Regions(orders []models.OrderRecord) []string {
	seen := make(map[string]struct{})
	for _, o := range orders {
		seen[o.Region] = struct{}{}
	}

	regions := make([]string, 0, len(seen))
	for r := range seen {
		regions = append(regions, r)
	}
	slices.Sort(regions)
	return regions
}

// DefaultSelection spans every bucket and every region.
func (d *Datasets) DefaultSelection() Selection {
	sel := Selection{AllRegions: true}
	if len(d.buckets) > 0 {
		sel.Start = d.buckets[0].Label
		sel.End = d.buckets[len(d.buckets)-1].Label
	}
	return sel
}

// Normalize fills an empty range with the full bucket range, sorts and
// dedupes the region set, and collapses a set covering every known region
// into AllRegions.
func (d *Datasets) Normalize(sel Selection) Selection {
	def := d.DefaultSelection()
	if sel.Start == "" {
		sel.Start = def.Start
	}
	if sel.End == "" {
		sel.End = def.End
	}

	if sel.AllRegions {
		sel.Regions = nil
		return sel
	}

	regions := make([]string, 0, len(sel.Regions))
	for _, r := range sel.Regions {
		if r = strings.TrimSpace(r); r != "" {
			regions = append(regions, r)
		}
	}
	slices.Sort(regions)
	regions = slices.Compact(regions)

	covered := len(d.regions) > 0
	for _, r := range d.regions {
		if _, found := slices.BinarySearch(regions, r); !found {
			covered = false
			break
		}
	}
	if covered {
		return Selection{Start: sel.Start, End: sel.End, AllRegions: true}
	}

	sel.Regions = regions
	return sel
}

// Filter keeps the orders whose bucket lies between sel.Start and sel.End
// (by position in buckets, inclusive) and whose region is selected. The
// input slice is never modified.
func Filter(orders []models.OrderRecord, buckets []models.Bucket, sel Selection) ([]models.OrderRecord, error) {
	lo, hi, err := bucketRange(buckets, sel.Start, sel.End)
	if err != nil {
		return nil, err
	}

	var allowed map[string]struct{}
	if !sel.AllRegions {
		if len(sel.Regions) == 0 {
			return []models.OrderRecord{}, nil
		}
		allowed = make(map[string]struct{}, len(sel.Regions))
		for _, r := range sel.Regions {
			allowed[r] = struct{}{}
		}
	}

	out := make([]models.OrderRecord, 0, len(orders))
	for _, o := range orders {
		if o.Bucket.Index < lo || o.Bucket.Index > hi {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[o.Region]; !ok {
				continue
			}
		}
		out = append(out, o)
	}
	return out, nil
}

func bucketRange(buckets []models.Bucket, start, end string) (int, int, error) {
	startPos := bucketPosition(buckets, start)
	if startPos < 0 {
		return 0, 0, apperrors.Validation(fmt.Sprintf("unknown start period %q", start))
	}
	endPos := bucketPosition(buckets, end)
	if endPos < 0 {
		return 0, 0, apperrors.Validation(fmt.Sprintf("unknown end period %q", end))
	}
	if startPos > endPos {
		return 0, 0, apperrors.Validation(fmt.Sprintf("start period %q is after end period %q", start, end))
	}
	return buckets[startPos].Index, buckets[endPos].Index, nil
}

func bucketPosition(buckets []models.Bucket, label string) int {
	return slices.IndexFunc(buckets, func(b models.Bucket) bool {
		return b.Label == label
	})
}
