package aggregate

import (
	"encoding/json"
	"math/rand"
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

func rec(id, client, amount string, when *time.Time) model.Financial {
	return model.Financial{
		Kind:   model.KindInvoice,
		ID:     id,
		Client: model.Ref{ID: client},
		Amount: dec(amount),
		Date:   when,
	}
}

func rowByKey(t *testing.T, rows []model.AggregateRow, key string) model.AggregateRow {
	t.Helper()
	for _, r := range rows {
		if r.Key == key {
			return r
		}
	}
	require.Failf(t, "row not found", "key %q", key)
	return model.AggregateRow{}
}

func TestAggregate_SameClientSameYear(t *testing.T) {
	records := []model.Financial{
		rec("a", "c1", "100", date(2025, 2, 1)),
		rec("b", "c1", "200", date(2025, 8, 1)),
	}

	rows := Aggregate(records, Options{Year: 2025})
	require.Len(t, rows, 1)
	assert.Equal(t, "c1", rows[0].Key)
	assert.Equal(t, 2, rows[0].Count)
	assert.True(t, rows[0].Total.Equal(dec("300")))
	assert.True(t, rows[0].Due.Equal(dec("300")))
}

func TestAggregate_TaxesAndWithholding(t *testing.T) {
	records := []model.Financial{
		{ID: "a", Client: model.Ref{ID: "c1"}, Amount: dec("1000"), Tax1Pct: dec("9"), Tax2Pct: dec("9"), TDS: dec("100")},
		{ID: "b", Client: model.Ref{ID: "c1"}, Amount: dec("500"), Tax1Pct: dec("18"), TDS: dec("5")},
	}

	rows := Aggregate(records, Options{})
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "180.00", r.Tax1Total.StringFixed(2))
	assert.Equal(t, "90.00", r.Tax2Total.StringFixed(2))
	assert.Equal(t, "105.00", r.TDSTotal.StringFixed(2), "tds is absolute, not a percentage")
}

func TestAggregate_YearFilter(t *testing.T) {
	records := []model.Financial{
		rec("a", "c1", "100", date(2024, 12, 31)),
		rec("b", "c1", "200", date(2025, 1, 1)),
		rec("c", "c2", "300", nil),
	}

	rows := Aggregate(records, Options{Year: 2025})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Total.Equal(dec("200")))

	all := Aggregate(records, Options{})
	assert.Len(t, all, 2, "undated records count when no year filter is set")
}

func TestAggregate_UnresolvableClientUsesSentinel(t *testing.T) {
	records := []model.Financial{
		rec("a", "", "100", nil),
		rec("b", "", "50", nil),
	}

	rows := Aggregate(records, Options{})
	require.Len(t, rows, 1)
	assert.Equal(t, model.NoRef, rows[0].Key)
	assert.Equal(t, model.NoRef, rows[0].Name)
	assert.Equal(t, 2, rows[0].Count)
}

func TestAggregate_InlineNameKey(t *testing.T) {
	records := []model.Financial{
		{ID: "a", Client: model.Ref{Name: "Walk-in"}, Amount: dec("10")},
		{ID: "b", Client: model.Ref{Name: "Walk-in"}, Amount: dec("15")},
	}
	rows := Aggregate(records, Options{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Walk-in", rows[0].Key)
	assert.Equal(t, "Walk-in", rows[0].Name)
}

func TestAggregate_DisplayNames(t *testing.T) {
	dir := directory.New([]model.Client{{ID: "c1", Name: "Acme Ltd"}}, nil)
	records := []model.Financial{
		{ID: "a", Client: model.Ref{ID: "c1", Name: "Old Name"}, Amount: dec("1")},
		{ID: "b", Client: model.Ref{ID: "c2", Name: "Zeta"}, Amount: dec("1")},
		{ID: "c", Client: model.Ref{ID: "c2", Name: "Beta"}, Amount: dec("1")},
		{ID: "d", Client: model.Ref{ID: "c3"}, Amount: dec("1")},
	}

	rows := Aggregate(records, Options{Clients: dir})
	assert.Equal(t, "Acme Ltd", rowByKey(t, rows, "c1").Name)
	assert.Equal(t, "Beta", rowByKey(t, rows, "c2").Name)
	assert.Equal(t, "c3", rowByKey(t, rows, "c3").Name)
}

func TestAggregate_ByClientYear(t *testing.T) {
	records := []model.Financial{
		rec("a", "c1", "100", date(2024, 5, 1)),
		rec("b", "c1", "200", date(2025, 5, 1)),
		rec("c", "c1", "300", date(2025, 6, 1)),
	}

	rows := Aggregate(records, Options{Key: ByClientYear})
	require.Len(t, rows, 2)
	assert.Equal(t, "c1|2024", rows[0].Key)
	assert.Equal(t, 2024, rows[0].Year)
	assert.Equal(t, "c1|2025", rows[1].Key)
	assert.Equal(t, 2, rows[1].Count)
	assert.True(t, rows[1].Total.Equal(dec("500")))
}

func TestMergePayments(t *testing.T) {
	invoices := []model.Invoice{
		{ID: "inv-1", Client: model.Ref{ID: "c1"}, Amount: dec("1000"), IssueDate: date(2025, 1, 10)},
		{ID: "inv-2", Client: model.Ref{ID: "c2"}, Amount: dec("500"), IssueDate: date(2025, 2, 10)},
	}
	payments := []model.Payment{
		{ID: "p1", InvoiceID: "inv-1", Amount: dec("400"), Date: date(2025, 1, 20)},
		{ID: "p2", Client: model.Ref{ID: "c1"}, Amount: dec("100"), Date: date(2025, 3, 1)},
		{ID: "p3", InvoiceID: "inv-2", Client: model.Ref{ID: "c3"}, Amount: dec("50"), Date: date(2025, 3, 2)},
		{ID: "p4", InvoiceID: "missing", Amount: dec("7"), Date: date(2025, 3, 3)},
		{ID: "p5", InvoiceID: "inv-1", Amount: dec("999"), Date: date(2024, 12, 1)},
	}

	g := New(Options{Year: 2025})
	for _, inv := range invoices {
		g.Add(inv.Financial())
	}
	g.MergePayments(payments, invoices)
	rows := g.Rows()
	require.Len(t, rows, 4)

	c1 := rowByKey(t, rows, "c1")
	assert.True(t, c1.Received.Equal(dec("500")), "received %s", c1.Received)
	assert.True(t, c1.Due.Equal(dec("500")))

	c2 := rowByKey(t, rows, "c2")
	assert.True(t, c2.Received.IsZero(), "payment's own client wins over invoice client")

	c3 := rowByKey(t, rows, "c3")
	assert.Equal(t, 0, c3.Count)
	assert.True(t, c3.Received.Equal(dec("50")))
	assert.True(t, c3.Due.IsZero())

	orphan := rowByKey(t, rows, model.NoRef)
	assert.True(t, orphan.Received.Equal(dec("7")))
}

func TestMergePayments_DuplicateInvoiceIDs(t *testing.T) {
	forward := []model.Invoice{
		{ID: "X", Client: model.Ref{ID: "c2"}, Amount: dec("10")},
		{ID: "X", Client: model.Ref{ID: "c1"}, Amount: dec("20")},
	}
	backward := []model.Invoice{forward[1], forward[0]}
	payments := []model.Payment{{ID: "p1", InvoiceID: "X", Amount: dec("15")}}

	received := func(invoices []model.Invoice) map[string]string {
		g := New(Options{})
		for _, inv := range invoices {
			g.Add(inv.Financial())
		}
		g.MergePayments(payments, invoices)
		out := map[string]string{}
		for _, r := range g.Rows() {
			out[r.Key] = r.Received.String()
		}
		return out
	}

	want := map[string]string{"c1": "15", "c2": "0"}
	assert.Equal(t, want, received(forward))
	assert.Equal(t, want, received(backward))
}

func TestSortByTotal(t *testing.T) {
	rows := []model.AggregateRow{
		{Key: "b", Total: dec("100")},
		{Key: "a", Total: dec("100")},
		{Key: "c", Total: dec("300")},
	}
	sorted := SortByTotal(rows)
	assert.Equal(t, "c", sorted[0].Key)
	assert.Equal(t, "a", sorted[1].Key)
	assert.Equal(t, "b", sorted[2].Key)
	assert.Equal(t, "b", rows[0].Key, "input is not modified")
}

func TestTotals(t *testing.T) {
	rows := []model.AggregateRow{
		{Key: "a", Count: 2, Total: dec("100"), Received: dec("150"), Due: dec("0")},
		{Key: "b", Count: 1, Total: dec("200"), Received: dec("50"), Due: dec("150")},
	}
	total := Totals(rows)
	assert.Equal(t, TotalKey, total.Key)
	assert.Equal(t, 3, total.Count)
	assert.True(t, total.Total.Equal(dec("300")))
	assert.True(t, total.Received.Equal(dec("200")))
	assert.True(t, total.Due.Equal(dec("150")))
}

func TestProperty_AdditivityAndOrderIndependence(t *testing.T) {
	clients := []string{"c1", "c2", "c3", ""}
	amounts := []string{"0.01", "10", "99.99", "1234.56", "0"}
	var records []model.Financial
	for i := 0; i < 60; i++ {
		when := date(2024+i%2, time.Month(1+i%12), 1+i%28)
		r := rec("r", clients[i%len(clients)], amounts[i%len(amounts)], when)
		r.Client.Name = []string{"Zed", "Alpha", "Mid"}[i%3]
		r.Tax1Pct = dec("18")
		records = append(records, r)
	}

	want := decimal.Zero
	for _, r := range records {
		if r.Date.Year() == 2025 {
			want = want.Add(r.Amount)
		}
	}

	base := Aggregate(records, Options{Year: 2025})
	got := decimal.Zero
	for _, r := range base {
		got = got.Add(r.Total)
	}
	assert.True(t, want.Equal(got), "sum of group totals %s != sum of amounts %s", got, want)

	baseJSON, err := json.Marshal(base)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := append([]model.Financial(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		out, err := json.Marshal(Aggregate(shuffled, Options{Year: 2025}))
		require.NoError(t, err)
		assert.Equal(t, string(baseJSON), string(out))
	}
}
