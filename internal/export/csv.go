// Package export writes view models as CSV, JSON or aligned text tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/receivables/internal/model"
	"github.com/cleared-dev/receivables/internal/overdue"
)

const dateFormat = "2006-01-02"

// Column headers.
var (
	InvoiceHeader   = []string{"invoice_id", "client", "project", "issue_date", "due_date", "amount", "tax1", "tax2", "tds", "gross", "received", "due", "status", "payments", "overdue"}
	AggregateHeader = []string{"key", "name", "year", "count", "total", "tax1_total", "tax2_total", "tds_total", "received", "due"}
	TrendHeader     = []string{"month", "label", "count", "invoiced", "received", "due"}
	OverdueHeader   = []string{"invoice_id", "client", "due_date", "due", "status", "days_overdue", "bucket"}
	AgingHeader     = []string{"bucket", "count", "due"}
)

// MarshalInvoice converts an invoice view to a CSV row.
func MarshalInvoice(v model.DerivedInvoiceView) []string {
	return []string{
		v.InvoiceID,
		v.ClientName,
		v.ProjectName,
		formatDate(v.IssueDate),
		formatDate(v.DueDate),
		money(v.Amount),
		money(v.Tax1),
		money(v.Tax2),
		money(v.TDS),
		money(v.Gross),
		money(v.Received),
		money(v.Due),
		string(v.Status),
		strconv.Itoa(v.PaymentCount),
		strconv.FormatBool(v.Overdue),
	}
}

// MarshalAggregate converts an aggregate row to a CSV row.
func MarshalAggregate(r model.AggregateRow) []string {
	year := ""
	if r.Year != 0 {
		year = strconv.Itoa(r.Year)
	}
	return []string{
		r.Key,
		r.Name,
		year,
		strconv.Itoa(r.Count),
		money(r.Total),
		money(r.Tax1Total),
		money(r.Tax2Total),
		money(r.TDSTotal),
		money(r.Received),
		money(r.Due),
	}
}

// MarshalTrendPoint converts a trend point to a CSV row.
func MarshalTrendPoint(p model.TrendPoint) []string {
	return []string{
		p.Key,
		p.Label,
		strconv.Itoa(p.Count),
		money(p.Invoiced),
		money(p.Received),
		money(p.Due),
	}
}

// MarshalOverdue converts an overdue invoice to a CSV row.
func MarshalOverdue(o overdue.Invoice) []string {
	return []string{
		o.InvoiceID,
		o.ClientName,
		formatDate(o.DueDate),
		money(o.Due),
		string(o.Status),
		strconv.Itoa(o.DaysOverdue),
		string(o.Bucket),
	}
}

// MarshalBucketTotal converts an aging band total to a CSV row.
func MarshalBucketTotal(b overdue.BucketTotal) []string {
	return []string{string(b.Bucket), strconv.Itoa(b.Count), money(b.Due)}
}

// WriteInvoices writes invoice views as CSV with a header.
func WriteInvoices(w io.Writer, views []model.DerivedInvoiceView) error {
	return writeCSV(w, InvoiceHeader, len(views), func(i int) []string { return MarshalInvoice(views[i]) })
}

// WriteAggregates writes aggregate rows as CSV with a header.
func WriteAggregates(w io.Writer, rows []model.AggregateRow) error {
	return writeCSV(w, AggregateHeader, len(rows), func(i int) []string { return MarshalAggregate(rows[i]) })
}

// WriteTrend writes trend points as CSV with a header.
func WriteTrend(w io.Writer, points []model.TrendPoint) error {
	return writeCSV(w, TrendHeader, len(points), func(i int) []string { return MarshalTrendPoint(points[i]) })
}

// WriteOverdue writes overdue invoices as CSV with a header.
func WriteOverdue(w io.Writer, items []overdue.Invoice) error {
	return writeCSV(w, OverdueHeader, len(items), func(i int) []string { return MarshalOverdue(items[i]) })
}

// WriteAging writes aging band totals as CSV with a header.
func WriteAging(w io.Writer, totals []overdue.BucketTotal) error {
	return writeCSV(w, AgingHeader, len(totals), func(i int) []string { return MarshalBucketTotal(totals[i]) })
}

func writeCSV(w io.Writer, header []string, n int, row func(int) []string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateFormat)
}
