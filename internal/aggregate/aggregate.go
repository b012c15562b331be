// Package aggregate groups financial records by a key and reduces their
// amounts into per-group totals.
package aggregate

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/receivables/internal/model"
	"github.com/cleared-dev/receivables/internal/period"
)

// ClientLookup finds clients by ID. *directory.Directory satisfies it.
type ClientLookup interface {
	Client(id string) (model.Client, bool)
}

// Options controls a Grouping.
type Options struct {
	Key      KeyFunc        // defaults to ByClient
	Year     int            // when non-zero, only records dated in this year count
	Location *time.Location // calendar used for year matching; UTC when nil
	Clients  ClientLookup   // optional, used for display names
}

type group struct {
	key      Key
	count    int
	total    decimal.Decimal
	tax1     decimal.Decimal
	tax2     decimal.Decimal
	tds      decimal.Decimal
	received decimal.Decimal
	name     string
	nameRank int
	fallback string
}

// Name ranks, lower wins.
const (
	rankDirectory = iota
	rankInline
	rankNone
)

// Grouping accumulates records and payments into groups.
type Grouping struct {
	opts   Options
	groups map[string]*group
}

// New creates an empty Grouping.
func New(opts Options) *Grouping {
	if opts.Key == nil {
		opts.Key = ByClient
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Grouping{opts: opts, groups: make(map[string]*group)}
}

// Aggregate groups records with key and returns rows ordered by key.
func Aggregate(records []model.Financial, opts Options) []model.AggregateRow {
	g := New(opts)
	g.Add(records...)
	return g.Rows()
}

// Add accumulates records that pass the year filter.
func (g *Grouping) Add(records ...model.Financial) {
	for _, rec := range records {
		if !g.inScope(rec.Date) {
			continue
		}
		grp := g.group(rec)
		grp.count++
		grp.total = grp.total.Add(rec.Amount)
		grp.tax1 = grp.tax1.Add(rec.Tax1())
		grp.tax2 = grp.tax2.Add(rec.Tax2())
		grp.tds = grp.tds.Add(rec.TDS)
	}
}

// MergePayments adds payments to the received totals. A payment is grouped
// by its own client, then by the client of the invoice it references, then
// under the "-" sentinel. When several invoices share an ID, the smallest
// client key wins. Groups that did not exist yet are created with a
// zero count.
func (g *Grouping) MergePayments(payments []model.Payment, invoices []model.Invoice) {
	clientOf := make(map[string]model.Ref, len(invoices))
	for _, inv := range invoices {
		id := strings.TrimSpace(inv.ID)
		if id == "" {
			continue
		}
		if prev, ok := clientOf[id]; ok && !refLess(inv.Client, prev) {
			continue
		}
		clientOf[id] = inv.Client
	}

	for _, p := range payments {
		if !g.inScope(p.Date) {
			continue
		}
		client := p.Client
		if client.IsZero() {
			client = clientOf[strings.TrimSpace(p.InvoiceID)]
		}
		grp := g.group(model.Financial{
			Kind:   model.KindPayment,
			ID:     p.ID,
			Client: client,
			Amount: p.Amount,
			Date:   p.Date,
		})
		grp.received = grp.received.Add(model.ClampZero(p.Amount))
	}
}

// refLess orders refs by key, then by inline name.
func refLess(a, b model.Ref) bool {
	if ak, bk := a.Key(), b.Key(); ak != bk {
		return ak < bk
	}
	return strings.TrimSpace(a.Name) < strings.TrimSpace(b.Name)
}

// Rows returns one row per group ordered by key.
func (g *Grouping) Rows() []model.AggregateRow {
	rows := make([]model.AggregateRow, 0, len(g.groups))
	for k, grp := range g.groups {
		rows = append(rows, model.AggregateRow{
			Key:       k,
			Name:      grp.displayName(),
			Year:      grp.key.Year,
			Count:     grp.count,
			Total:     grp.total,
			Tax1Total: grp.tax1,
			Tax2Total: grp.tax2,
			TDSTotal:  grp.tds,
			Received:  grp.received,
			Due:       model.ClampZero(grp.total.Sub(grp.received)),
		})
	}
	slices.SortFunc(rows, func(a, b model.AggregateRow) int {
		return strings.Compare(a.Key, b.Key)
	})
	return rows
}

// SortByTotal returns a copy of rows ordered by total descending, then key.
func SortByTotal(rows []model.AggregateRow) []model.AggregateRow {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b model.AggregateRow) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	return out
}

// TotalKey is the key of the grand-total row.
const TotalKey = "TOTAL"

// Totals sums rows into a grand-total row. Due is the sum of per-group due,
// so one client's overpayment does not offset another's balance.
func Totals(rows []model.AggregateRow) model.AggregateRow {
	t := model.AggregateRow{Key: TotalKey, Name: "Total"}
	for _, r := range rows {
		t.Count += r.Count
		t.Total = t.Total.Add(r.Total)
		t.Tax1Total = t.Tax1Total.Add(r.Tax1Total)
		t.Tax2Total = t.Tax2Total.Add(r.Tax2Total)
		t.TDSTotal = t.TDSTotal.Add(r.TDSTotal)
		t.Received = t.Received.Add(r.Received)
		t.Due = t.Due.Add(r.Due)
	}
	return t
}

func (g *Grouping) inScope(date *time.Time) bool {
	if g.opts.Year == 0 {
		return true
	}
	return period.InYear(date, g.opts.Year, g.opts.Location)
}

func (g *Grouping) group(rec model.Financial) *group {
	key := g.opts.Key(rec, g.opts.Location)
	k := key.String()
	grp, ok := g.groups[k]
	if !ok {
		grp = &group{key: key, nameRank: rankNone}
		g.groups[k] = grp
	}
	g.offerName(grp, rec.Client)
	return grp
}

// offerName keeps the best display name seen for a group. Ties are broken
// lexicographically so the result does not depend on input order.
func (g *Grouping) offerName(grp *group, ref model.Ref) {
	name, rank := g.resolveName(ref)
	if rank == rankNone {
		if k := ref.Key(); k != model.NoRef && (grp.fallback == "" || k < grp.fallback) {
			grp.fallback = k
		}
		return
	}
	if rank < grp.nameRank || (rank == grp.nameRank && name < grp.name) {
		grp.name = name
		grp.nameRank = rank
	}
}

func (g *Grouping) resolveName(ref model.Ref) (string, int) {
	if g.opts.Clients != nil && ref.ID != "" {
		if c, ok := g.opts.Clients.Client(ref.ID); ok && c.Name != "" && c.Name != model.NoRef {
			return c.Name, rankDirectory
		}
	}
	if name := strings.TrimSpace(ref.Name); name != "" {
		return name, rankInline
	}
	return "", rankNone
}

func (grp *group) displayName() string {
	if grp.nameRank != rankNone {
		return grp.name
	}
	if grp.fallback == "" {
		return model.NoRef
	}
	return grp.fallback
}
