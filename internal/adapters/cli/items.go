package cli

import (
	"fmt"

	"distribution-backend/internal/app"

	"github.com/spf13/cobra"
)

func newItemsCommand(env Environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Manage the item catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List items with on-hand stock",
		Args:  cobra.NoArgs,
		RunE: withService(env, func(cmd *cobra.Command, svc app.ApplicationService, _ []string) error {
			result, err := svc.ListItems(cmd.Context())
			if err != nil {
				return err
			}
			printItems(cmd.OutOrStdout(), result)
			return nil
		}),
	}

	var req app.CreateItemRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Register an item",
		Args:  cobra.NoArgs,
		RunE: withService(env, func(cmd *cobra.Command, svc app.ApplicationService, _ []string) error {
			item, err := svc.CreateItem(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Item %d created: %s (%d %s on hand)\n", item.ID, item.Name, item.OnHand, item.Unit)
			return nil
		}),
	}
	add.Flags().StringVar(&req.Name, "name", "", "item name")
	add.Flags().StringVar(&req.Unit, "unit", "pcs", "unit of measure")
	add.Flags().Int64Var(&req.UnitCost, "cost", 0, "unit cost")
	add.Flags().Int64Var(&req.InitialStock, "stock", 0, "opening stock")
	_ = add.MarkFlagRequired("name")

	var qty int64
	receive := &cobra.Command{
		Use:   "receive <item-id>",
		Short: "Record an inbound delivery",
		Args:  cobra.ExactArgs(1),
		RunE: withService(env, func(cmd *cobra.Command, svc app.ApplicationService, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, err := svc.ReceiveStock(cmd.Context(), app.ReceiveStockRequest{ItemID: id, Quantity: qty})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d %s on hand\n", item.Name, item.OnHand, item.Unit)
			return nil
		}),
	}
	receive.Flags().Int64Var(&qty, "qty", 0, "quantity received")
	_ = receive.MarkFlagRequired("qty")

	remove := &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete an item no issuance references",
		Args:  cobra.ExactArgs(1),
		RunE: withService(env, func(cmd *cobra.Command, svc app.ApplicationService, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := svc.DeleteItem(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Item %d deleted.\n", id)
			return nil
		}),
	}

	cmd.AddCommand(list, add, receive, remove)
	return cmd
}
