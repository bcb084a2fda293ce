package cli

import (
	"fmt"
	"strconv"
	"strings"

	"distribution-backend/internal/app"

	"github.com/spf13/cobra"
)

// issuanceFlags backs the create and update commands.
type issuanceFlags struct {
	customer int64
	date     string
	lines    []string
	shipping int64
	status   string
	po       string
	fee      int64
}

func (f *issuanceFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.customer, "customer", 0, "customer id")
	cmd.Flags().StringVar(&f.date, "date", "", "issue date YYYY-MM-DD (default today)")
	cmd.Flags().StringArrayVar(&f.lines, "line", nil, "line as ITEM_ID:QTY:UNIT_PRICE, repeatable")
	cmd.Flags().Int64Var(&f.shipping, "shipping", 0, "shipping charge")
	cmd.Flags().StringVar(&f.status, "status", "", "payment status: unpaid or paid")
	cmd.Flags().StringVar(&f.po, "po", "", "customer purchase order reference")
	cmd.Flags().Int64Var(&f.fee, "fee", 0, "handling fee per unit (default from configuration)")
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("line")
}

func (f *issuanceFlags) request(cmd *cobra.Command) (app.IssuanceRequest, error) {
	req := app.IssuanceRequest{
		CustomerID:       f.customer,
		IssueDate:        f.date,
		ShippingCharge:   f.shipping,
		PaymentStatus:    f.status,
		PurchaseOrderRef: f.po,
	}
	if cmd.Flags().Changed("fee") {
		fee := f.fee
		req.FeeRatePerUnit = &fee
	}
	for _, raw := range f.lines {
		line, err := parseLine(raw)
		if err != nil {
			return app.IssuanceRequest{}, err
		}
		req.Lines = append(req.Lines, line)
	}
	return req, nil
}

// parseLine reads ITEM_ID:QTY:UNIT_PRICE.
func parseLine(raw string) (app.IssuanceLineInput, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return app.IssuanceLineInput{}, fmt.Errorf("invalid line %q, expected ITEM_ID:QTY:UNIT_PRICE", raw)
	}
	var nums [3]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return app.IssuanceLineInput{}, fmt.Errorf("invalid line %q: %q is not a number", raw, p)
		}
		nums[i] = n
	}
	return app.IssuanceLineInput{ItemID: nums[0], Quantity: nums[1], UnitPrice: nums[2]}, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func newIssuanceCommand(env Environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "issuance",
		Aliases: []string{"issuances", "sj"},
		Short:   "Create, edit and inspect goods issuances",
	}

	var createFlags issuanceFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "File a new goods issuance",
		Example: `  # Ten units of item 3 at 75000 each, plus 25000 shipping
  distro issuance create --customer 1 --line 3:10:75000 --shipping 25000

  # Back-dated, two items, already paid
  distro issuance create --customer 1 --date 2024-03-05 \
    --line 3:10:75000 --line 4:2:120000 --status paid --po PO-881`,
		Args: cobra.NoArgs,
		RunE: withService(env, func(cmd *cobra.Command, svc app.ApplicationService, _ []string) error {
			req, err := createFlags.request(cmd)
			if err != nil {
				return err
			}
			res, err := svc.CreateIssuance(cmd.Context(), req)
			if err != nil {
				return err
			}
			printIssuanceResult(cmd.OutOrStdout(), "created", res)
			return nil
		}),
	}
	createFlags.register(create)

	var updateFlags issuanceFlags
	update := &cobra.Command{
		Use:   "update <issuance-id>",
		Short: "Replace the contents of an issuance",
		Long: `Replace customer, date, lines and charges of an existing issuance.
Quantities held by the current lines are returned to stock before the new
lines are checked, so an issuance can always be re-saved unchanged.`,
		Example: `  distro issuance update 12 --customer 1 --line 3:8:75000`,
		Args:    cobra.ExactArgs(1),
		RunE: withService(env, func(cmd *cobra.Command, svc app.ApplicationService, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			req, err := updateFlags.request(cmd)
			if err != nil {
				return err
			}
			res, err := svc.UpdateIssuance(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			printIssuanceResult(cmd.OutOrStdout(), "updated", res)
			return nil
		}),
	}
	updateFlags.register(update)

	remove := &cobra.Command{
		Use:   "delete <issuance-id>",
		Short: "Delete an issuance and return its stock",
		Args:  cobra.ExactArgs(1),
		RunE: withService(env, func(cmd *cobra.Command, svc app.ApplicationService, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := svc.DeleteIssuance(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Issuance %d deleted.\n", id)
			return nil
		}),
	}

	show := &cobra.Command{
		Use:   "show <issuance-id>",
		Short: "Print an issuance with its distribution and current stock as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: withService(env, func(cmd *cobra.Command, svc app.ApplicationService, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			view, err := svc.GetIssuanceForEdit(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), view)
		}),
	}

	var year, month int
	list := &cobra.Command{
		Use:   "list",
		Short: "List issuances, newest first",
		Args:  cobra.NoArgs,
		RunE: withService(env, func(cmd *cobra.Command, svc app.ApplicationService, _ []string) error {
			result, err := svc.ListIssuances(cmd.Context(), year, month)
			if err != nil {
				return err
			}
			printIssuances(cmd.OutOrStdout(), result)
			return nil
		}),
	}
	list.Flags().IntVar(&year, "year", 0, "filter by year")
	list.Flags().IntVar(&month, "month", 0, "filter by month (requires --year)")

	var status string
	pay := &cobra.Command{
		Use:   "pay <issuance-id>",
		Short: "Set the payment status of an issuance",
		Args:  cobra.ExactArgs(1),
		RunE: withService(env, func(cmd *cobra.Command, svc app.ApplicationService, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			dist, err := svc.SetPaymentStatus(cmd.Context(), id, status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Issuance %d is now %s.\n", id, dist.PaymentStatus)
			return nil
		}),
	}
	pay.Flags().StringVar(&status, "status", "paid", "payment status: unpaid or paid")

	cmd.AddCommand(create, update, remove, show, list, pay)
	return cmd
}
