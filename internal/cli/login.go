package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cafe-orders/internal/domain"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	rf := &remoteFlags{}
	var password string
	cmd := &cobra.Command{
		Use:   "login <role>",
		Short: "Sign in to a station and print the session token",
		Long: `Sign in as admin, cashier, kitchen, waiter or barista.

In text mode only the token is printed, so it can be captured:

  export CAFE_TOKEN=$(cafe-orders login kitchen)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := domain.ParseRole(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "login", err)
			}
			c, err := rf.client(rootOpts, false)
			if err != nil {
				return err
			}
			resp, err := c.Login(cmd.Context(), role, password)
			if err != nil {
				return apiFailure("login", err)
			}
			if rootOpts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return err
		},
	}
	addRemoteFlags(cmd, rf)
	cmd.Flags().StringVar(&password, "password", "", "station password")
	return cmd
}
