package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/receivables/internal/aggregate"
	"github.com/cleared-dev/receivables/internal/export"
	"github.com/cleared-dev/receivables/internal/model"
	"github.com/cleared-dev/receivables/internal/overdue"
	"github.com/cleared-dev/receivables/internal/report"
)

// Record kinds selectable with --kind.
const (
	kindInvoices  = "invoices"
	kindOrders    = "orders"
	kindContracts = "contracts"
	kindExpenses  = "expenses"
)

var invoiceTableHeader = []string{"invoice", "client", "due date", "gross", "received", "due", "status", "overdue"}

func newInvoicesCommand(flags *globalFlags) *cobra.Command {
	var client string
	var overdueOnly bool

	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "List invoices reconciled against payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			views := filterInvoices(s.builder(0, 0).Invoices(), client, overdueOnly)
			w := cmd.OutOrStdout()
			switch s.format {
			case export.FormatJSON:
				return export.WriteJSON(w, views)
			case export.FormatCSV:
				return export.WriteInvoices(w, views)
			default:
				rows := make([][]string, 0, len(views))
				for _, v := range views {
					overdueMark := ""
					if v.Overdue {
						overdueMark = "yes"
					}
					row := export.MarshalInvoice(v)
					rows = append(rows, []string{row[0], row[1], row[4], row[9], row[10], row[11], row[12], overdueMark})
				}
				return export.WriteTable(w, invoiceTableHeader, rows)
			}
		},
	}

	cmd.Flags().StringVar(&client, "client", "", "only invoices for this client key or name")
	cmd.Flags().BoolVar(&overdueOnly, "overdue", false, "only overdue invoices")

	return cmd
}

func filterInvoices(views []model.DerivedInvoiceView, client string, overdueOnly bool) []model.DerivedInvoiceView {
	if client == "" && !overdueOnly {
		return views
	}
	out := make([]model.DerivedInvoiceView, 0, len(views))
	for _, v := range views {
		if client != "" && v.ClientKey != client && !strings.EqualFold(v.ClientName, client) {
			continue
		}
		if overdueOnly && !v.Overdue {
			continue
		}
		out = append(out, v)
	}
	return out
}

func newAggregateCommand(flags *globalFlags) *cobra.Command {
	var by string
	var kind string
	var year int

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Summarize totals per client or per client and year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseGroupBy(by)
			if err != nil {
				return err
			}
			if year < 0 {
				return fmt.Errorf("--year must not be negative")
			}

			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			b := s.builder(year, 0)
			var rows []model.AggregateRow
			if kind == kindInvoices {
				if by == "client-year" {
					rows = b.ClientYears()
				} else {
					rows = b.Clients()
				}
			} else {
				records, err := recordsOf(s, kind)
				if err != nil {
					return err
				}
				rows = b.RecordsBy(records, key)
			}
			return writeAggregates(cmd.OutOrStdout(), s.format, rows)
		},
	}

	cmd.Flags().StringVar(&by, "by", "client", "grouping: client or client-year")
	cmd.Flags().StringVar(&kind, "kind", kindInvoices, "records: invoices, orders, contracts or expenses")
	cmd.Flags().IntVar(&year, "year", 0, "only records dated in this calendar year")

	return cmd
}

func parseGroupBy(by string) (aggregate.KeyFunc, error) {
	switch by {
	case "client":
		return aggregate.ByClient, nil
	case "client-year":
		return aggregate.ByClientYear, nil
	default:
		return nil, fmt.Errorf("unknown grouping %q (want client or client-year)", by)
	}
}

func writeAggregates(w io.Writer, format export.Format, rows []model.AggregateRow) error {
	totals := aggregate.Totals(rows)
	switch format {
	case export.FormatJSON:
		return export.WriteJSON(w, struct {
			Rows   []model.AggregateRow `json:"rows"`
			Totals model.AggregateRow   `json:"totals"`
		}{rows, totals})
	case export.FormatCSV:
		return export.WriteAggregates(w, append(rows, totals))
	default:
		return export.WriteTable(w, export.AggregateHeader, aggregateTable(append(rows, totals)))
	}
}

func aggregateTable(rows []model.AggregateRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, export.MarshalAggregate(r))
	}
	return out
}

func newTrendCommand(flags *globalFlags) *cobra.Command {
	var months int
	var kind string

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show monthly totals for the trailing months",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if months < 0 {
				return fmt.Errorf("--months must not be negative")
			}

			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			b := s.builder(0, months)
			var points []model.TrendPoint
			if kind == kindInvoices {
				points = b.Trend()
			} else {
				records, err := recordsOf(s, kind)
				if err != nil {
					return err
				}
				points = b.RecordTrend(records)
			}

			w := cmd.OutOrStdout()
			switch s.format {
			case export.FormatJSON:
				return export.WriteJSON(w, points)
			case export.FormatCSV:
				return export.WriteTrend(w, points)
			default:
				return export.WriteTable(w, export.TrendHeader, trendTable(points))
			}
		},
	}

	cmd.Flags().IntVar(&months, "months", 0, "number of months, including the current one (default from config)")
	cmd.Flags().StringVar(&kind, "kind", kindInvoices, "records: invoices, orders, contracts or expenses")

	return cmd
}

func trendTable(points []model.TrendPoint) [][]string {
	out := make([][]string, 0, len(points))
	for _, p := range points {
		out = append(out, export.MarshalTrendPoint(p))
	}
	return out
}

func recordsOf(s *session, kind string) ([]model.Financial, error) {
	switch kind {
	case kindOrders:
		return s.snap.Orders, nil
	case kindContracts:
		return s.snap.Contracts, nil
	case kindExpenses:
		return s.snap.Expenses, nil
	default:
		return nil, fmt.Errorf("unknown kind %q (want invoices, orders, contracts or expenses)", kind)
	}
}

func newOverdueCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List overdue invoices with aging buckets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			items := s.builder(0, 0).Overdue()
			aging := overdue.Aging(items)

			w := cmd.OutOrStdout()
			switch s.format {
			case export.FormatJSON:
				return export.WriteJSON(w, struct {
					Overdue []overdue.Invoice     `json:"overdue"`
					Aging   []overdue.BucketTotal `json:"aging"`
				}{items, aging})
			case export.FormatCSV:
				return export.WriteOverdue(w, items)
			default:
				if err := export.WriteTable(w, export.OverdueHeader, overdueTable(items)); err != nil {
					return err
				}
				fmt.Fprintln(w)
				return export.WriteTable(w, export.AgingHeader, agingTable(aging))
			}
		},
	}
}

func overdueTable(items []overdue.Invoice) [][]string {
	out := make([][]string, 0, len(items))
	for _, it := range items {
		out = append(out, export.MarshalOverdue(it))
	}
	return out
}

func agingTable(totals []overdue.BucketTotal) [][]string {
	out := make([][]string, 0, len(totals))
	for _, t := range totals {
		out = append(out, export.MarshalBucketTotal(t))
	}
	return out
}

func newDashboardCommand(flags *globalFlags) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Build the full receivables dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			if s.format == export.FormatCSV {
				return fmt.Errorf("dashboard supports table or json output")
			}

			d := s.builder(year, 0).Dashboard()
			for c, msg := range d.Failures {
				s.log.Warn().Str("collection", c).Str("error", msg).Msg("collection unavailable")
			}

			w := cmd.OutOrStdout()
			if s.format == export.FormatJSON {
				return export.WriteJSON(w, d)
			}
			return writeDashboardTable(w, s.cfg.Business.Name, d)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "only aggregate records dated in this calendar year")

	return cmd
}

func writeDashboardTable(w io.Writer, business string, d report.Dashboard) error {
	if business != "" {
		fmt.Fprintf(w, "%s\n", business)
	}
	fmt.Fprintf(w, "Generated %s\n", d.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Invoiced %s, received %s, due %s\n\n",
		d.Totals.Total.StringFixed(2), d.Totals.Received.StringFixed(2), d.Totals.Due.StringFixed(2))

	sections := []struct {
		title  string
		header []string
		rows   [][]string
	}{
		{"Clients", export.AggregateHeader, aggregateTable(d.Clients)},
		{"Trend", export.TrendHeader, trendTable(d.Trend)},
		{"Overdue", export.OverdueHeader, overdueTable(d.Overdue)},
		{"Aging", export.AgingHeader, agingTable(d.Aging)},
	}
	for _, sec := range sections {
		fmt.Fprintf(w, "%s\n", sec.title)
		if err := export.WriteTable(w, sec.header, sec.rows); err != nil {
			return fmt.Errorf("writing %s: %w", strings.ToLower(sec.title), err)
		}
		fmt.Fprintln(w)
	}
	return nil
}
