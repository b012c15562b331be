package reconcile

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/receivables/internal/directory"
	"github.com/cleared-dev/receivables/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func pay(invoiceID string, amounts ...string) []model.Payment {
	var out []model.Payment
	for i, a := range amounts {
		out = append(out, model.Payment{
			ID:        fmt.Sprintf("%s-p%d", invoiceID, i),
			InvoiceID: invoiceID,
			Amount:    dec(a),
		})
	}
	return out
}

func TestReconcile_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		payments []string
		received string
		due      string
		status   model.InvoiceStatus
	}{
		{"partially paid", "1000", []string{"400", "300"}, "700", "300", model.StatusPartiallyPaid},
		{"paid in full", "500", []string{"500"}, "500", "0", model.StatusPaid},
		{"zero amount no payments", "0", nil, "0", "0", model.StatusUnpaid},
		{"overpaid", "200", []string{"250"}, "250", "0", model.StatusPaid},
		{"unpaid", "300", nil, "0", "300", model.StatusUnpaid},
		{"zero amount with payment", "0", []string{"10"}, "10", "0", model.StatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := model.Invoice{ID: "inv-1", Amount: dec(tt.amount)}
			view := Reconcile(inv, pay("inv-1", tt.payments...))

			assert.True(t, view.Received.Equal(dec(tt.received)), "received %s", view.Received)
			assert.True(t, view.Due.Equal(dec(tt.due)), "due %s", view.Due)
			assert.Equal(t, tt.status, view.Status)
			assert.Equal(t, len(tt.payments), view.PaymentCount)
		})
	}
}

func TestReconcile_IgnoresOtherInvoices(t *testing.T) {
	payments := append(pay("inv-1", "100"), pay("inv-2", "900")...)
	payments = append(payments, model.Payment{ID: "loose", Client: model.Ref{ID: "c1"}, Amount: dec("50")})

	view := Reconcile(model.Invoice{ID: "inv-1", Amount: dec("1000")}, payments)
	assert.True(t, view.Received.Equal(dec("100")))
	assert.Equal(t, 1, view.PaymentCount)
}

func TestReconcile_MatchesTrimmedIdentity(t *testing.T) {
	payments := []model.Payment{{InvoiceID: " inv-1 ", Amount: dec("10")}}
	view := Reconcile(model.Invoice{ID: "inv-1", Amount: dec("10")}, payments)
	assert.Equal(t, model.StatusPaid, view.Status)
}

func TestReconcile_InvoiceWithoutIDMatchesNothing(t *testing.T) {
	payments := []model.Payment{{Amount: dec("10")}}
	view := Reconcile(model.Invoice{Amount: dec("10")}, payments)
	assert.True(t, view.Received.IsZero())
	assert.Equal(t, model.StatusUnpaid, view.Status)
}

func TestReconcile_ServerStatusWins(t *testing.T) {
	inv := model.Invoice{ID: "inv-1", Amount: dec("100"), Status: "Cancelled"}
	view := Reconcile(inv, pay("inv-1", "100"))
	assert.Equal(t, model.InvoiceStatus("Cancelled"), view.Status)
	assert.True(t, view.Due.IsZero())

	inv.Status = "  "
	view = Reconcile(inv, pay("inv-1", "100"))
	assert.Equal(t, model.StatusPaid, view.Status, "blank override is ignored")
}

func TestReconcile_TaxesAndGross(t *testing.T) {
	inv := model.Invoice{
		ID:      "inv-1",
		Amount:  dec("1000"),
		Tax1Pct: dec("9"),
		Tax2Pct: dec("9"),
		TDS:     dec("20"),
	}
	view := Reconcile(inv, nil)
	assert.Equal(t, "90.00", view.Tax1.StringFixed(2))
	assert.Equal(t, "90.00", view.Tax2.StringFixed(2))
	assert.Equal(t, "1160.00", view.Gross.StringFixed(2))
	assert.True(t, view.Due.Equal(dec("1000")), "due is computed on principal")
}

func TestReconcile_LastPaymentDate(t *testing.T) {
	payments := []model.Payment{
		{InvoiceID: "inv-1", Amount: dec("1"), Date: date(2025, 3, 5)},
		{InvoiceID: "inv-1", Amount: dec("1"), Date: date(2025, 4, 1)},
		{InvoiceID: "inv-1", Amount: dec("1")},
	}
	view := Reconcile(model.Invoice{ID: "inv-1", Amount: dec("10")}, payments)
	require.NotNil(t, view.LastPaymentDate)
	assert.Equal(t, time.April, view.LastPaymentDate.Month())
}

func TestReconcile_NegativePaymentCountsAsZero(t *testing.T) {
	view := Reconcile(model.Invoice{ID: "inv-1", Amount: dec("10")}, pay("inv-1", "-5"))
	assert.True(t, view.Received.IsZero())
	assert.Equal(t, model.StatusUnpaid, view.Status)
}

func TestReconcile_Names(t *testing.T) {
	inv := model.Invoice{
		ID:      "inv-1",
		Client:  model.Ref{ID: "c1", Name: "Inline Co"},
		Project: model.Ref{ID: "p1"},
	}

	view := Reconcile(inv, nil)
	assert.Equal(t, "c1", view.ClientKey)
	assert.Equal(t, "Inline Co", view.ClientName)
	assert.Empty(t, view.ProjectName)

	dir := directory.New(
		[]model.Client{{ID: "c1", Name: "Acme Ltd"}},
		[]model.Project{{ID: "p1", Name: "Website"}},
	)
	views := All([]model.Invoice{inv}, nil, dir)
	require.Len(t, views, 1)
	assert.Equal(t, "Acme Ltd", views[0].ClientName)
	assert.Equal(t, "Website", views[0].ProjectName)
}

func TestAll_PreservesOrder(t *testing.T) {
	invs := []model.Invoice{
		{ID: "b", Amount: dec("10")},
		{ID: "a", Amount: dec("20")},
	}
	views := All(invs, pay("a", "20"), nil)
	require.Len(t, views, 2)
	assert.Equal(t, "b", views[0].InvoiceID)
	assert.Equal(t, model.StatusUnpaid, views[0].Status)
	assert.Equal(t, "a", views[1].InvoiceID)
	assert.Equal(t, model.StatusPaid, views[1].Status)
}

func TestProperties_NonNegativeAndConservation(t *testing.T) {
	amounts := []string{"0", "1", "99.99", "500", "1000"}
	paySets := [][]string{nil, {"0"}, {"0.01"}, {"50", "50"}, {"499.99", "0.01"}, {"2000"}}

	for _, a := range amounts {
		for _, ps := range paySets {
			inv := model.Invoice{ID: "x", Amount: dec(a)}
			view := Reconcile(inv, pay("x", ps...))

			assert.False(t, view.Due.IsNegative(), "due must never be negative")
			if view.Received.LessThanOrEqual(inv.Amount) {
				assert.True(t, view.Received.Add(view.Due).Equal(inv.Amount),
					"received + due = amount for amount=%s payments=%v", a, ps)
			} else {
				assert.True(t, view.Due.IsZero())
			}
		}
	}
}

func TestProperties_StatusMonotonic(t *testing.T) {
	rank := map[model.InvoiceStatus]int{
		model.StatusUnpaid:        0,
		model.StatusPartiallyPaid: 1,
		model.StatusPaid:          2,
	}

	for _, a := range []string{"0", "100", "250"} {
		inv := model.Invoice{ID: "x", Amount: dec(a)}
		var payments []model.Payment
		prev := rank[Reconcile(inv, payments).Status]
		for _, p := range []string{"0", "40", "60", "100", "5"} {
			payments = append(payments, pay("x", p)...)
			cur := rank[Reconcile(inv, payments).Status]
			assert.GreaterOrEqual(t, cur, prev, "amount=%s after adding %s", a, p)
			prev = cur
		}
	}
}
