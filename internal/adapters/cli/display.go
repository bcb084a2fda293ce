package cli

import (
	"fmt"
	"io"
	"strings"

	"distribution-backend/internal/app"
	"distribution-backend/internal/core"
)

const dateLayout = "2006-01-02"

func rule(w io.Writer, ch string, width int) {
	fmt.Fprintln(w, strings.Repeat(ch, width))
}

func printItems(w io.Writer, result *app.ItemListResult) {
	fmt.Fprintln(w)
	rule(w, "=", 72)
	fmt.Fprintln(w, "  ITEMS")
	rule(w, "=", 72)
	if len(result.Items) == 0 {
		fmt.Fprintln(w, "  No items found.")
		rule(w, "=", 72)
		return
	}
	fmt.Fprintf(w, "  %-6s %-30s %-6s %12s %12s\n", "ID", "NAME", "UNIT", "UNIT COST", "ON HAND")
	rule(w, "-", 72)
	for _, it := range result.Items {
		fmt.Fprintf(w, "  %-6d %-30s %-6s %12d %12d\n", it.ID, it.Name, it.Unit, it.UnitCost, it.OnHand)
	}
	rule(w, "=", 72)
}

func printCustomers(w io.Writer, result *app.CustomerListResult) {
	fmt.Fprintln(w)
	rule(w, "=", 72)
	fmt.Fprintln(w, "  CUSTOMERS")
	rule(w, "=", 72)
	if len(result.Customers) == 0 {
		fmt.Fprintln(w, "  No customers found.")
		rule(w, "=", 72)
		return
	}
	fmt.Fprintf(w, "  %-6s %-28s %s\n", "ID", "NAME", "ADDRESS")
	rule(w, "-", 72)
	for _, c := range result.Customers {
		fmt.Fprintf(w, "  %-6d %-28s %s\n", c.ID, c.Name, c.Address)
	}
	rule(w, "=", 72)
}

func printIssuances(w io.Writer, result *app.IssuanceListResult) {
	title := "ISSUANCES"
	switch {
	case result.Year != 0 && result.Month != 0:
		title = fmt.Sprintf("ISSUANCES %04d-%02d", result.Year, result.Month)
	case result.Year != 0:
		title = fmt.Sprintf("ISSUANCES %04d", result.Year)
	}

	fmt.Fprintln(w)
	rule(w, "=", 96)
	fmt.Fprintf(w, "  %s\n", title)
	rule(w, "=", 96)
	if len(result.Issuances) == 0 {
		fmt.Fprintln(w, "  No issuances found.")
		rule(w, "=", 96)
		return
	}
	fmt.Fprintf(w, "  %-5s %-26s %-20s %-10s %12s %12s  %s\n",
		"ID", "DOCUMENT", "CUSTOMER", "DATE", "REVENUE", "MARGIN", "STATUS")
	rule(w, "-", 96)
	for _, s := range result.Issuances {
		fmt.Fprintf(w, "  %-5d %-26s %-20s %-10s %12d %12d  %s\n",
			s.ID, s.DocumentNumber, s.CustomerName, s.IssueDate.Format(dateLayout),
			s.GrossRevenue, s.RunningMargin, s.PaymentStatus)
	}
	rule(w, "=", 96)
}

func printIssuanceResult(w io.Writer, verb string, r *core.IssuanceResult) {
	t := r.Totals
	fmt.Fprintf(w, "\nIssuance %s: %s (id %d)\n", verb, r.DocumentNumber, r.ID)
	fmt.Fprintf(w, "  Issue date     : %s\n", r.IssueDate.Format(dateLayout))
	fmt.Fprintf(w, "  Due date       : %s\n", r.DueDate.Format(dateLayout))
	fmt.Fprintf(w, "  Payment status : %s\n", r.PaymentStatus)
	rule(w, "-", 48)
	for _, l := range r.Lines {
		fmt.Fprintf(w, "  %2d. %-24s %5d x %d\n", l.LineNumber, l.ItemName, l.Quantity, l.UnitPrice)
	}
	rule(w, "-", 48)
	fmt.Fprintf(w, "  %-18s %14d\n", "Gross revenue", t.GrossRevenue)
	fmt.Fprintf(w, "  %-18s %14d\n", "Cost of goods", t.CostOfGoods)
	fmt.Fprintf(w, "  %-18s %14d\n", "Gross margin", t.GrossMargin)
	fmt.Fprintf(w, "  %-18s %14d\n", "Operating cost", t.OperatingCost)
	fmt.Fprintf(w, "  %-18s %14d\n", "Running margin", t.RunningMargin)
	for i, share := range t.OwnerShares {
		fmt.Fprintf(w, "  %-18s %14d\n", fmt.Sprintf("Owner %d", i+1), share)
	}
	fmt.Fprintf(w, "  %-18s %14d\n", "Reserve", t.ReserveShare)
	fmt.Fprintf(w, "  %-18s %14d\n", "Undistributed", t.Undistributed)
}

func printPeriodSummary(w io.Writer, s *core.PeriodSummary) {
	fmt.Fprintln(w)
	rule(w, "=", 48)
	fmt.Fprintf(w, "  PROFIT SHARING %04d-%02d\n", s.Year, s.Month)
	rule(w, "=", 48)
	fmt.Fprintf(w, "  %-22s %20d\n", "Issuances", s.Issuances)
	fmt.Fprintf(w, "  %-22s %20d\n", "Unpaid", s.Unpaid)
	fmt.Fprintf(w, "  %-22s %20d\n", "Gross revenue", s.GrossRevenue)
	fmt.Fprintf(w, "  %-22s %20d\n", "Running margin", s.RunningMargin)
	rule(w, "-", 48)
	for i, share := range s.OwnerShares {
		fmt.Fprintf(w, "  %-22s %20d\n", fmt.Sprintf("Owner %d", i+1), share)
	}
	fmt.Fprintf(w, "  %-22s %20d\n", "Reserve", s.ReserveShare)
	rule(w, "=", 48)
}
