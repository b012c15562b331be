// Package report composes the reconciliation, aggregation, trend and
// overdue engines over one snapshot into dashboard view models.
package report

import (
	"time"

	"github.com/cleared-dev/receivables/internal/aggregate"
	"github.com/cleared-dev/receivables/internal/directory"
	"github.com/cleared-dev/receivables/internal/model"
	"github.com/cleared-dev/receivables/internal/overdue"
	"github.com/cleared-dev/receivables/internal/reconcile"
	"github.com/cleared-dev/receivables/internal/snapshot"
	"github.com/cleared-dev/receivables/internal/trend"
)

// Options controls what a Builder produces.
type Options struct {
	Now        time.Time
	MonthsBack int            // trend length; trend.DefaultMonths when not positive
	Year       int            // year filter for aggregates; zero means all years
	Location   *time.Location // report calendar; UTC when nil
}

// Dashboard is the complete receivables report for one snapshot.
type Dashboard struct {
	GeneratedAt time.Time                  `json:"generatedAt"`
	FetchedAt   time.Time                  `json:"fetchedAt"`
	Year        int                        `json:"year,omitempty"`
	Invoices    []model.DerivedInvoiceView `json:"invoices"`
	Clients     []model.AggregateRow       `json:"clients"`
	ClientYears []model.AggregateRow       `json:"clientYears"`
	Orders      []model.AggregateRow       `json:"orders"`
	Contracts   []model.AggregateRow       `json:"contracts"`
	Expenses    []model.AggregateRow       `json:"expenses"`
	Totals      model.AggregateRow         `json:"totals"`
	Trend       []model.TrendPoint         `json:"trend"`
	Overdue     []overdue.Invoice          `json:"overdue"`
	Aging       []overdue.BucketTotal      `json:"aging"`
	Failures    map[string]string          `json:"failures,omitempty"`
}

// Builder derives views from a snapshot. It holds no state beyond its
// inputs; build a new one for each refreshed snapshot.
type Builder struct {
	snap  *snapshot.Snapshot
	opts  Options
	dir   *directory.Directory
	index *reconcile.Index
}

// NewBuilder creates a Builder. A zero Options.Now means time.Now().
func NewBuilder(snap *snapshot.Snapshot, opts Options) *Builder {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.MonthsBack <= 0 {
		opts.MonthsBack = trend.DefaultMonths
	}
	return &Builder{
		snap:  snap,
		opts:  opts,
		dir:   snap.Directory(),
		index: reconcile.NewIndex(snap.Payments),
	}
}

// Invoices returns every invoice reconciled, with the overdue flag set.
func (b *Builder) Invoices() []model.DerivedInvoiceView {
	views := reconcile.All(b.snap.Invoices, b.snap.Payments, b.dir)
	return overdue.Mark(views, b.opts.Now)
}

// Clients aggregates invoices per client with received payments merged,
// ordered by total descending.
func (b *Builder) Clients() []model.AggregateRow {
	return b.invoiceAggregate(aggregate.ByClient)
}

// ClientYears aggregates invoices per client and year, ordered by total
// descending.
func (b *Builder) ClientYears() []model.AggregateRow {
	return b.invoiceAggregate(aggregate.ByClientYear)
}

// Records aggregates a non-invoice collection per client.
func (b *Builder) Records(records []model.Financial) []model.AggregateRow {
	return b.RecordsBy(records, aggregate.ByClient)
}

// RecordsBy aggregates a non-invoice collection with the given key.
func (b *Builder) RecordsBy(records []model.Financial, key aggregate.KeyFunc) []model.AggregateRow {
	rows := aggregate.Aggregate(records, aggregate.Options{
		Key:      key,
		Year:     b.opts.Year,
		Location: b.opts.Location,
		Clients:  b.dir,
	})
	return aggregate.SortByTotal(rows)
}

// Trend returns the invoice trend over the configured number of months.
func (b *Builder) Trend() []model.TrendPoint {
	return trend.Build(b.financials(b.snap.Invoices), b.index, b.opts.Now, trend.Options{
		Months:   b.opts.MonthsBack,
		Location: b.opts.Location,
	})
}

// RecordTrend returns the trend for a non-invoice collection. Payments only
// reference invoices, so nothing counts as received and due is the full
// amount.
func (b *Builder) RecordTrend(records []model.Financial) []model.TrendPoint {
	return trend.Build(records, nil, b.opts.Now, trend.Options{
		Months:   b.opts.MonthsBack,
		Location: b.opts.Location,
	})
}

// Overdue returns the overdue invoices, oldest debt first.
func (b *Builder) Overdue() []overdue.Invoice {
	return overdue.Classify(b.Invoices(), b.opts.Now)
}

// Dashboard builds every view.
func (b *Builder) Dashboard() Dashboard {
	invoices := b.Invoices()
	clients := b.Clients()
	overdueItems := overdue.Classify(invoices, b.opts.Now)

	d := Dashboard{
		GeneratedAt: b.opts.Now,
		FetchedAt:   b.snap.FetchedAt,
		Year:        b.opts.Year,
		Invoices:    invoices,
		Clients:     clients,
		ClientYears: b.ClientYears(),
		Orders:      b.Records(b.snap.Orders),
		Contracts:   b.Records(b.snap.Contracts),
		Expenses:    b.Records(b.snap.Expenses),
		Totals:      aggregate.Totals(clients),
		Trend:       b.Trend(),
		Overdue:     overdueItems,
		Aging:       overdue.Aging(overdueItems),
	}
	if len(b.snap.Failures) > 0 {
		d.Failures = make(map[string]string, len(b.snap.Failures))
		for c, msg := range b.snap.Failures {
			d.Failures[string(c)] = msg
		}
	}
	return d
}

// Build is shorthand for NewBuilder(snap, opts).Dashboard().
func Build(snap *snapshot.Snapshot, opts Options) Dashboard {
	return NewBuilder(snap, opts).Dashboard()
}

func (b *Builder) invoiceAggregate(key aggregate.KeyFunc) []model.AggregateRow {
	g := aggregate.New(aggregate.Options{
		Key:      key,
		Year:     b.opts.Year,
		Location: b.opts.Location,
		Clients:  b.dir,
	})
	g.Add(b.financials(b.snap.Invoices)...)
	g.MergePayments(b.snap.Payments, b.snap.Invoices)
	return aggregate.SortByTotal(g.Rows())
}

func (b *Builder) financials(invoices []model.Invoice) []model.Financial {
	out := make([]model.Financial, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, inv.Financial())
	}
	return out
}
