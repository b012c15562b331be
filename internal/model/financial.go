package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind names the collection a Financial record came from.
type Kind string

const (
	KindInvoice  Kind = "invoice"
	KindOrder    Kind = "order"
	KindContract Kind = "contract"
	KindExpense  Kind = "expense"
	KindPayment  Kind = "payment"
)

var hundred = decimal.NewFromInt(100)

// Financial is the common shape of amount-bearing records used for
// aggregation and trends.
type Financial struct {
	Kind    Kind
	ID      string
	Client  Ref
	Amount  decimal.Decimal
	Tax1Pct decimal.Decimal
	Tax2Pct decimal.Decimal
	TDS     decimal.Decimal
	Date    *time.Time
}

// Tax1 returns Amount × Tax1Pct / 100.
func (f Financial) Tax1() decimal.Decimal {
	return PercentOf(f.Amount, f.Tax1Pct)
}

// Tax2 returns Amount × Tax2Pct / 100.
func (f Financial) Tax2() decimal.Decimal {
	return PercentOf(f.Amount, f.Tax2Pct)
}

// PercentOf returns amount × pct / 100.
func PercentOf(amount, pct decimal.Decimal) decimal.Decimal {
	if pct.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(pct).Div(hundred)
}

// ClampZero returns d, or zero when d is negative.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
