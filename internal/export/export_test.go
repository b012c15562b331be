package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/receivables/internal/model"
	"github.com/cleared-dev/receivables/internal/overdue"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func readCSV(t *testing.T, data string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteInvoices(t *testing.T) {
	due := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	views := []model.DerivedInvoiceView{{
		InvoiceID:    "inv-1",
		ClientName:   "Acme, Ltd",
		DueDate:      &due,
		Amount:       dec("1000"),
		Tax1:         dec("180"),
		Gross:        dec("1180"),
		Received:     dec("700"),
		Due:          dec("300"),
		Status:       model.StatusPartiallyPaid,
		PaymentCount: 2,
		Overdue:      true,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteInvoices(&buf, views))

	records := readCSV(t, buf.String())
	require.Len(t, records, 2)
	assert.Equal(t, InvoiceHeader, records[0])
	row := records[1]
	assert.Equal(t, "inv-1", row[0])
	assert.Equal(t, "Acme, Ltd", row[1])
	assert.Equal(t, "", row[3], "missing issue date")
	assert.Equal(t, "2025-03-31", row[4])
	assert.Equal(t, "1000.00", row[5])
	assert.Equal(t, "0.00", row[7])
	assert.Equal(t, "300.00", row[11])
	assert.Equal(t, "Partially paid", row[12])
	assert.Equal(t, "2", row[13])
	assert.Equal(t, "true", row[14])
}

func TestWriteAggregates(t *testing.T) {
	rows := []model.AggregateRow{
		{Key: "c1|2025", Name: "Acme", Year: 2025, Count: 2, Total: dec("300"), Received: dec("100"), Due: dec("200")},
		{Key: "-", Name: "-", Count: 1, Total: dec("5.5")},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAggregates(&buf, rows))

	records := readCSV(t, buf.String())
	require.Len(t, records, 3)
	assert.Equal(t, []string{"c1|2025", "Acme", "2025", "2", "300.00", "0.00", "0.00", "0.00", "100.00", "200.00"}, records[1])
	assert.Equal(t, "", records[2][2])
	assert.Equal(t, "5.50", records[2][4])
}

func TestWriteTrendAndOverdue(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTrend(&buf, []model.TrendPoint{{Key: "2025-06", Label: "Jun 2025", Count: 1, Invoiced: dec("10")}}))
	records := readCSV(t, buf.String())
	require.Len(t, records, 2)
	assert.Equal(t, []string{"2025-06", "Jun 2025", "1", "10.00", "0.00", "0.00"}, records[1])

	buf.Reset()
	item := overdue.Invoice{DaysOverdue: 40, Bucket: overdue.Bucket31to60}
	item.InvoiceID = "inv-9"
	item.Due = dec("12")
	require.NoError(t, WriteOverdue(&buf, []overdue.Invoice{item}))
	records = readCSV(t, buf.String())
	require.Len(t, records, 2)
	assert.Equal(t, "inv-9", records[1][0])
	assert.Equal(t, "40", records[1][5])
	assert.Equal(t, "31-60", records[1][6])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, []string{"key", "total"}, [][]string{{"c1", "10.00"}, {"longer-key", "5.00"}}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "KEY"))
	assert.Equal(t, strings.Index(lines[1], "10.00"), strings.Index(lines[2], "5.00"), "columns are aligned")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, model.AggregateRow{Key: "c1", Total: dec("1.5")}))
	assert.Contains(t, buf.String(), `"key": "c1"`)
	assert.Contains(t, buf.String(), `"total": "1.5"`)
}

func TestWriteAging(t *testing.T) {
	var buf bytes.Buffer
	totals := []overdue.BucketTotal{
		{Bucket: overdue.Bucket1to30, Count: 2, Due: dec("150")},
		{Bucket: overdue.Bucket90Plus},
	}
	require.NoError(t, WriteAging(&buf, totals))

	records := readCSV(t, buf.String())
	require.Len(t, records, 3)
	assert.Equal(t, AgingHeader, records[0])
	assert.Equal(t, []string{"1-30", "2", "150.00"}, records[1])
	assert.Equal(t, []string{"90+", "0", "0.00"}, records[2])
}
