package models

import (
	"fmt"
	"time"
)

const bucketLabelLayout = "Jan 2006"

// Bucket is a calendar month used for range selection. Index orders buckets
// chronologically; Label is display only.
type Bucket struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

func BucketOf(t time.Time) Bucket {
	return Bucket{
		Index: t.Year()*12 + int(t.Month()) - 1,
		Label: t.Format(bucketLabelLayout),
	}
}

// Start returns the first instant of the bucket's month in UTC.
func (b Bucket) Start() time.Time {
	return time.Date(b.Index/12, time.Month(b.Index%12+1), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last calendar day of the bucket's month.
func (b Bucket) End() time.Time {
	return b.Start().AddDate(0, 1, -1)
}

func (b Bucket) Next() Bucket {
	return BucketOf(b.Start().AddDate(0, 1, 0))
}

func (b Bucket) String() string {
	return fmt.Sprintf("%s (#%d)", b.Label, b.Index)
}

// OrderRecord is one order line. OrderID repeats across lines of the same
// order; CustomerUniqueID identifies a person across orders.
type OrderRecord struct {
	OrderID          string
	CustomerUniqueID string
	Region           string
	PurchasedAt      time.Time
	Category         string
	Price            float64
	Bucket           Bucket
}

// SegmentRecord is one customer row of the RFM segmentation table.
type SegmentRecord struct {
	CustomerUniqueID string
	Segment          string
	Recency          float64
	Frequency        float64
	Monetary         float64
}
