package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cafe-orders/internal/domain"
)

// NewProductsCommand creates the products command.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	rf := &remoteFlags{}
	var f domain.ProductFilter
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rf.client(rootOpts, true)
			if err != nil {
				return err
			}
			products, err := c.ListProducts(cmd.Context(), f)
			if err != nil {
				return apiFailure("list products", err)
			}
			if rootOpts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), products)
			}
			RenderProducts(cmd.OutOrStdout(), products)
			return nil
		},
	}
	addRemoteFlags(cmd, rf)
	cmd.Flags().BoolVar(&f.AvailableOnly, "available", false, "only products that can be ordered")
	cmd.Flags().StringVar(&f.Category, "category", "", "only this category")
	return cmd
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	rf := &remoteFlags{}
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables orders can be placed for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rf.client(rootOpts, true)
			if err != nil {
				return err
			}
			names, err := c.Tables(cmd.Context())
			if err != nil {
				return apiFailure("list tables", err)
			}
			if rootOpts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), names)
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	addRemoteFlags(cmd, rf)
	return cmd
}
