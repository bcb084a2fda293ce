package cli

import (
	"fmt"

	"distribution-backend/internal/app"

	"github.com/spf13/cobra"
)

func newCustomersCommand(env Environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer"},
		Short:   "Manage customers",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List customers",
		Args:  cobra.NoArgs,
		RunE: withService(env, func(cmd *cobra.Command, svc app.ApplicationService, _ []string) error {
			result, err := svc.ListCustomers(cmd.Context())
			if err != nil {
				return err
			}
			printCustomers(cmd.OutOrStdout(), result)
			return nil
		}),
	}

	var req app.CreateCustomerRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a customer",
		Args:  cobra.NoArgs,
		RunE: withService(env, func(cmd *cobra.Command, svc app.ApplicationService, _ []string) error {
			customer, err := svc.CreateCustomer(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Customer %d created: %s\n", customer.ID, customer.Name)
			return nil
		}),
	}
	add.Flags().StringVar(&req.Name, "name", "", "customer name")
	add.Flags().StringVar(&req.Address, "address", "", "delivery address")
	_ = add.MarkFlagRequired("name")

	remove := &cobra.Command{
		Use:   "delete <customer-id>",
		Short: "Delete a customer no issuance references",
		Args:  cobra.ExactArgs(1),
		RunE: withService(env, func(cmd *cobra.Command, svc app.ApplicationService, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := svc.DeleteCustomer(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Customer %d deleted.\n", id)
			return nil
		}),
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}
