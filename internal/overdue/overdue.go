// Package overdue flags invoices whose due date has passed without full
// payment, and groups them into aging buckets.
package overdue

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/receivables/internal/model"
	"github.com/cleared-dev/receivables/internal/period"
	"github.com/cleared-dev/receivables/internal/reconcile"
)

// Bucket is an aging band in days past due.
type Bucket string

const (
	Bucket1to30  Bucket = "1-30"
	Bucket31to60 Bucket = "31-60"
	Bucket61to90 Bucket = "61-90"
	Bucket90Plus Bucket = "90+"
)

// Buckets lists every aging band in ascending order.
var Buckets = []Bucket{Bucket1to30, Bucket31to60, Bucket61to90, Bucket90Plus}

// Invoice is an overdue invoice view with its age.
type Invoice struct {
	model.DerivedInvoiceView
	DaysOverdue int    `json:"daysOverdue"`
	Bucket      Bucket `json:"bucket"`
}

// BucketTotal summarizes the overdue invoices in one aging band.
type BucketTotal struct {
	Bucket Bucket          `json:"bucket"`
	Count  int             `json:"count"`
	Due    decimal.Decimal `json:"due"`
}

// IsOverdue reports whether a reconciled invoice is past due: its effective
// status is not Paid, it has a due date, and the due date is before now.
// Invoices without a due date are never overdue.
func IsOverdue(view model.DerivedInvoiceView, now time.Time) bool {
	if view.Status.IsPaid() {
		return false
	}
	if view.DueDate == nil {
		return false
	}
	return period.In(*view.DueDate, now.Location()).Before(now)
}

// IsInvoiceOverdue reconciles inv against payments and applies IsOverdue.
func IsInvoiceOverdue(inv model.Invoice, payments []model.Payment, now time.Time) bool {
	return IsOverdue(reconcile.Reconcile(inv, payments), now)
}

// Mark returns a copy of views with the Overdue flag set.
func Mark(views []model.DerivedInvoiceView, now time.Time) []model.DerivedInvoiceView {
	out := make([]model.DerivedInvoiceView, len(views))
	for i, v := range views {
		v.Overdue = IsOverdue(v, now)
		out[i] = v
	}
	return out
}

// Classify returns the overdue subset of views, oldest debt first.
func Classify(views []model.DerivedInvoiceView, now time.Time) []Invoice {
	out := make([]Invoice, 0)
	for _, v := range views {
		if !IsOverdue(v, now) {
			continue
		}
		v.Overdue = true
		days := DaysOverdue(*v.DueDate, now)
		out = append(out, Invoice{
			DerivedInvoiceView: v,
			DaysOverdue:        days,
			Bucket:             BucketFor(days),
		})
	}
	slices.SortStableFunc(out, func(a, b Invoice) int {
		if a.DaysOverdue != b.DaysOverdue {
			return b.DaysOverdue - a.DaysOverdue
		}
		return strings.Compare(a.InvoiceID, b.InvoiceID)
	})
	return out
}

// DaysOverdue returns the number of whole days between due and now. A
// plain calendar due date is read in now's location.
func DaysOverdue(due, now time.Time) int {
	due = period.In(due, now.Location())
	if !due.Before(now) {
		return 0
	}
	return int(now.Sub(due) / (24 * time.Hour))
}

// BucketFor returns the aging band for a number of days past due.
func BucketFor(days int) Bucket {
	switch {
	case days <= 30:
		return Bucket1to30
	case days <= 60:
		return Bucket31to60
	case days <= 90:
		return Bucket61to90
	default:
		return Bucket90Plus
	}
}

// Aging totals overdue invoices per bucket. Every bucket is present.
func Aging(items []Invoice) []BucketTotal {
	totals := make([]BucketTotal, len(Buckets))
	pos := make(map[Bucket]int, len(Buckets))
	for i, b := range Buckets {
		totals[i] = BucketTotal{Bucket: b}
		pos[b] = i
	}
	for _, it := range items {
		i, ok := pos[it.Bucket]
		if !ok {
			continue
		}
		totals[i].Count++
		totals[i].Due = totals[i].Due.Add(it.Due)
	}
	return totals
}
