// Package trend buckets financial records into consecutive calendar months.
package trend

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/receivables/internal/model"
	"github.com/cleared-dev/receivables/internal/period"
)

// DefaultMonths is the length of the series when none is requested.
const DefaultMonths = 6

// LabelFormat is the layout of TrendPoint.Label.
const LabelFormat = "Jan 2006"

// Receipts reports how much has been received against a record.
// *reconcile.Index satisfies it.
type Receipts interface {
	Received(recordID string) decimal.Decimal
}

// Options controls Build.
type Options struct {
	Months   int            // series length; DefaultMonths when not positive
	Location *time.Location // calendar for month boundaries; UTC when nil
}

// Build returns exactly opts.Months points, oldest first, ending with the
// month containing now. Months without records are present with zero sums.
// receipts may be nil, in which case nothing counts as received.
func Build(records []model.Financial, receipts Receipts, now time.Time, opts Options) []model.TrendPoint {
	n := opts.Months
	if n <= 0 {
		n = DefaultMonths
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	months := period.LastMonths(now, n, loc)
	points := make([]model.TrendPoint, len(months))
	index := make(map[string]int, len(months))
	for i, start := range months {
		key := period.MonthKey(start, loc)
		points[i] = model.TrendPoint{
			Key:   key,
			Label: start.Format(LabelFormat),
			Start: start,
		}
		index[key] = i
	}

	for _, rec := range records {
		if rec.Date == nil {
			continue
		}
		i, ok := index[period.MonthKey(*rec.Date, loc)]
		if !ok {
			continue
		}

		received := decimal.Zero
		if receipts != nil {
			received = receipts.Received(rec.ID)
		}

		p := &points[i]
		p.Count++
		p.Invoiced = p.Invoiced.Add(rec.Amount)
		p.Received = p.Received.Add(received)
		p.Due = p.Due.Add(model.ClampZero(rec.Amount.Sub(received)))
	}
	return points
}
