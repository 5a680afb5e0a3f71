package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cafe-orders/internal/cart"
	"cafe-orders/internal/tables"
)

// parseItem reads "product" or "product:qty".
func parseItem(s string) (string, int, error) {
	id, qty, found := strings.Cut(strings.TrimSpace(s), ":")
	if id == "" {
		return "", 0, fmt.Errorf("item %q: missing product id", s)
	}
	if !found {
		return id, 1, nil
	}
	n, err := strconv.Atoi(qty)
	if err != nil {
		return "", 0, fmt.Errorf("item %q: bad quantity", s)
	}
	return id, n, nil
}

// NewOrderCommand creates the order command.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	rf := &remoteFlags{}
	var (
		table   string
		items   []string
		notes   string
		cashier string
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Take an order for a table",
		Example: `  cafe-orders order --table 7 --item latte:2 --item limonata
  cafe-orders order --table 3 --item sufle --notes "no powdered sugar" --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := rf.client(rootOpts, true)
			if err != nil {
				return err
			}
			names, err := c.Tables(ctx)
			if err != nil {
				return apiFailure("list tables", err)
			}
			reg, err := tables.New(names...)
			if err != nil {
				return WrapExitError(ExitFailure, "tables", err)
			}

			sess := cart.NewSession(cart.WithTables(reg), cart.WithCashier(cashier))
			for _, it := range items {
				id, qty, err := parseItem(it)
				if err != nil {
					return WrapExitError(ExitCommandError, "order", err)
				}
				if err := sess.Add(id, qty); err != nil {
					return WrapExitError(ExitCommandError, "order", err)
				}
			}
			if table != "" {
				if err := sess.SetTable(table); err != nil {
					return WrapExitError(ExitCommandError, "order", err)
				}
			}
			sess.SetNotes(notes)
			if _, err := sess.Draft(); err != nil {
				return WrapExitError(ExitCommandError, "order", err)
			}

			estimate, err := sess.Estimate(ctx, c)
			if err != nil {
				return apiFailure("price order", err)
			}
			if dryRun {
				if rootOpts.Format == "json" {
					return printJSON(cmd.OutOrStdout(), map[string]any{"table": sess.Table(), "estimate": estimate})
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "table %s  estimate %s\n", sess.Table(), estimate.StringFixed(2))
				return err
			}

			o, err := sess.Submit(ctx, c)
			if err != nil {
				return apiFailure("create order", err)
			}
			if rootOpts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), o)
			}
			RenderOrder(cmd.OutOrStdout(), o)
			return nil
		},
	}
	addRemoteFlags(cmd, rf)
	cmd.Flags().StringVarP(&table, "table", "t", "", "table name")
	cmd.Flags().StringArrayVarP(&items, "item", "i", nil, "product[:qty], repeatable")
	cmd.Flags().StringVar(&notes, "notes", "", "order notes")
	cmd.Flags().StringVar(&cashier, "cashier", "", "cashier id recorded on the order")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "price the order without creating it")
	return cmd
}
