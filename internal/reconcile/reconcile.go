// Package reconcile derives an invoice's received amount, outstanding
// balance and payment status from the payments ledger.
package reconcile

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/receivables/internal/model"
)

// Namer resolves display names for relations. *directory.Directory
// satisfies it.
type Namer interface {
	ClientName(ref model.Ref) string
	ProjectName(ref model.Ref) string
}

// Index groups payments by the invoice they reference.
type Index struct {
	byInvoice map[string][]model.Payment
}

// NewIndex builds an Index. Payments without an invoice reference are
// left out; they only count towards client-level aggregates.
func NewIndex(payments []model.Payment) *Index {
	byInvoice := make(map[string][]model.Payment)
	for _, p := range payments {
		key := strings.TrimSpace(p.InvoiceID)
		if key == "" {
			continue
		}
		byInvoice[key] = append(byInvoice[key], p)
	}
	return &Index{byInvoice: byInvoice}
}

// For returns the payments referencing invoiceID.
func (ix *Index) For(invoiceID string) []model.Payment {
	key := strings.TrimSpace(invoiceID)
	if key == "" {
		return nil
	}
	return ix.byInvoice[key]
}

// Received returns the sum of payments referencing invoiceID.
func (ix *Index) Received(invoiceID string) decimal.Decimal {
	return sum(ix.For(invoiceID))
}

// Reconcile derives the view for inv from the full payments list.
func Reconcile(inv model.Invoice, payments []model.Payment) model.DerivedInvoiceView {
	return NewIndex(payments).Reconcile(inv, nil)
}

// Reconcile derives the view for inv from the indexed payments. names may
// be nil, in which case inline names are used.
func (ix *Index) Reconcile(inv model.Invoice, names Namer) model.DerivedInvoiceView {
	matched := ix.For(inv.ID)

	received := sum(matched)
	due := model.ClampZero(inv.Amount.Sub(received))

	tax1 := model.PercentOf(inv.Amount, inv.Tax1Pct)
	tax2 := model.PercentOf(inv.Amount, inv.Tax2Pct)

	view := model.DerivedInvoiceView{
		InvoiceID:       inv.ID,
		ClientKey:       inv.Client.Key(),
		IssueDate:       inv.IssueDate,
		DueDate:         inv.DueDate,
		Amount:          inv.Amount,
		Tax1:            tax1,
		Tax2:            tax2,
		TDS:             inv.TDS,
		Gross:           inv.Amount.Add(tax1).Add(tax2).Sub(inv.TDS),
		Received:        received,
		Due:             due,
		Status:          Status(received, due, inv.Status),
		PaymentCount:    len(matched),
		LastPaymentDate: lastDate(matched),
	}

	if names != nil {
		view.ClientName = names.ClientName(inv.Client)
		view.ProjectName = names.ProjectName(inv.Project)
	} else {
		view.ClientName = inlineName(inv.Client)
		view.ProjectName = strings.TrimSpace(inv.Project.Name)
	}
	return view
}

// All reconciles every invoice against payments, preserving input order.
func All(invoices []model.Invoice, payments []model.Payment, names Namer) []model.DerivedInvoiceView {
	ix := NewIndex(payments)
	views := make([]model.DerivedInvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, ix.Reconcile(inv, names))
	}
	return views
}

// Status returns the effective status. A non-blank server override is
// returned verbatim. Otherwise an invoice is Paid only when something was
// received and nothing remains due, so a zero-amount invoice with no
// payments stays Unpaid.
func Status(received, due decimal.Decimal, override model.InvoiceStatus) model.InvoiceStatus {
	if strings.TrimSpace(string(override)) != "" {
		return override
	}
	switch {
	case received.IsPositive() && !due.IsPositive():
		return model.StatusPaid
	case received.IsPositive():
		return model.StatusPartiallyPaid
	default:
		return model.StatusUnpaid
	}
}

func sum(payments []model.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(model.ClampZero(p.Amount))
	}
	return total
}

func lastDate(payments []model.Payment) *time.Time {
	var last *time.Time
	for _, p := range payments {
		if p.Date == nil {
			continue
		}
		if last == nil || p.Date.After(*last) {
			last = p.Date
		}
	}
	return last
}

func inlineName(ref model.Ref) string {
	if name := strings.TrimSpace(ref.Name); name != "" {
		return name
	}
	return ref.Key()
}
