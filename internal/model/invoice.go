package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the payment state of an invoice. Servers may send
// values outside the derived set (e.g. "Cancelled"); those are kept verbatim.
type InvoiceStatus string

const (
	StatusPaid          InvoiceStatus = "Paid"
	StatusPartiallyPaid InvoiceStatus = "Partially paid"
	StatusUnpaid        InvoiceStatus = "Unpaid"
)

// IsPaid reports whether s names the paid state, ignoring case and padding.
func (s InvoiceStatus) IsPaid() bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(StatusPaid))
}

// LineItem is one billable row on an invoice.
type LineItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
}

// Total returns quantity × rate.
func (li LineItem) Total() decimal.Decimal {
	return li.Quantity.Mul(li.Rate)
}

// Invoice is the canonical invoice record.
type Invoice struct {
	ID        string
	Client    Ref
	Project   Ref
	Amount    decimal.Decimal // principal, never negative
	Tax1Pct   decimal.Decimal
	Tax2Pct   decimal.Decimal
	TDS       decimal.Decimal // withholding, absolute
	IssueDate *time.Time
	DueDate   *time.Time
	Status    InvoiceStatus // server override; empty when not set
	Items     []LineItem
}

// Financial returns the invoice in the shape shared with orders,
// contracts and expenses.
func (inv Invoice) Financial() Financial {
	return Financial{
		Kind:    KindInvoice,
		ID:      inv.ID,
		Client:  inv.Client,
		Amount:  inv.Amount,
		Tax1Pct: inv.Tax1Pct,
		Tax2Pct: inv.Tax2Pct,
		TDS:     inv.TDS,
		Date:    inv.IssueDate,
	}
}

// Payment is a single receipt against an invoice or a client.
type Payment struct {
	ID        string
	InvoiceID string // empty when the payment is attributed to a client only
	Client    Ref
	Amount    decimal.Decimal
	Date      *time.Time
	Method    string
	Note      string
}
