package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DerivedInvoiceView is the read-only reconciliation result for one invoice.
// It is never written back to the source of truth.
type DerivedInvoiceView struct {
	InvoiceID       string          `json:"invoiceId"`
	ClientKey       string          `json:"clientKey"`
	ClientName      string          `json:"clientName"`
	ProjectName     string          `json:"projectName,omitempty"`
	IssueDate       *time.Time      `json:"issueDate,omitempty"`
	DueDate         *time.Time      `json:"dueDate,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Tax1            decimal.Decimal `json:"tax1"`
	Tax2            decimal.Decimal `json:"tax2"`
	TDS             decimal.Decimal `json:"tds"`
	Gross           decimal.Decimal `json:"gross"`
	Received        decimal.Decimal `json:"received"`
	Due             decimal.Decimal `json:"due"`
	Status          InvoiceStatus   `json:"status"`
	PaymentCount    int             `json:"paymentCount"`
	LastPaymentDate *time.Time      `json:"lastPaymentDate,omitempty"`
	Overdue         bool            `json:"overdue"`
}

// AggregateRow is one group of an aggregation.
type AggregateRow struct {
	Key       string          `json:"key"`
	Name      string          `json:"name"`
	Year      int             `json:"year,omitempty"`
	Count     int             `json:"count"`
	Total     decimal.Decimal `json:"total"`
	Tax1Total decimal.Decimal `json:"tax1Total"`
	Tax2Total decimal.Decimal `json:"tax2Total"`
	TDSTotal  decimal.Decimal `json:"tdsTotal"`
	Received  decimal.Decimal `json:"received"`
	Due       decimal.Decimal `json:"due"`
}

// TrendPoint is one calendar-month bucket of a trend series.
type TrendPoint struct {
	Key      string          `json:"key"`   // "2006-01"
	Label    string          `json:"label"` // "Jan 2006"
	Start    time.Time       `json:"start"`
	Count    int             `json:"count"`
	Invoiced decimal.Decimal `json:"invoiced"`
	Received decimal.Decimal `json:"received"`
	Due      decimal.Decimal `json:"due"`
}
