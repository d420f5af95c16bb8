package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newCLIContext()
			if err != nil {
				return err
			}

			// Best effort: restore so we can tell the backend, but clear
			// locally regardless of what the server says
			_ = cli.store.Restore(cmd.Context())
			if token := cli.store.Snapshot().Token; token != "" {
				cli.client.SetToken(token)
				_ = cli.client.Logout(cmd.Context())
			}

			cli.store.Logout()

			fmt.Println("✓ Logged out")
			return nil
		},
	}
}
