package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/socivio/socivio/internal/cli/accountselect"
)

// NewSyncCmd creates the sync command
func NewSyncCmd() *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Trigger an on-demand sync of posts and comments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newCLIContext()
			if err != nil {
				return err
			}

			if err := cli.requireAuth(cmd.Context()); err != nil {
				return err
			}

			account, err := accountselect.ResolveAccount(cmd.Context(), cli.client, accountID)
			if err != nil {
				return err
			}

			if err := cli.client.TriggerSync(cmd.Context(), account.ID); err != nil {
				return err
			}

			fmt.Printf("✓ Sync scheduled for @%s\n", account.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Instagram account (uses selected account if not specified)")

	return cmd
}
