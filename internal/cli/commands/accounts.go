package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/socivio/socivio/internal/cli/accountselect"
	"github.com/socivio/socivio/internal/cli/userconfig"
)

// NewAccountsCmd creates the accounts command
func NewAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List connected Instagram accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newCLIContext()
			if err != nil {
				return err
			}

			if err := cli.requireAuth(cmd.Context()); err != nil {
				return err
			}

			accounts, err := cli.client.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}

			if len(accounts) == 0 {
				fmt.Println("No Instagram accounts connected.")
				fmt.Println("\nConnect one from the dashboard.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tPAGE")
			fmt.Fprintln(w, "──\t────────\t────")
			for _, account := range accounts {
				fmt.Fprintf(w, "%s\t@%s\t%s\n", account.ID, account.Username, account.PageName)
			}
			w.Flush()

			return nil
		},
	}
}

// NewSelectAccountCmd creates the select-account command
func NewSelectAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select-account",
		Short: "Choose which Instagram account commands target by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newCLIContext()
			if err != nil {
				return err
			}

			if err := cli.requireAuth(cmd.Context()); err != nil {
				return err
			}

			accounts, err := cli.client.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				return fmt.Errorf("no Instagram accounts connected")
			}

			account, err := accountselect.PromptAccountSelection(accounts)
			if err != nil {
				return err
			}

			if err := userconfig.SetSelectedAccount(account.ID); err != nil {
				return fmt.Errorf("failed to save selected account: %w", err)
			}

			fmt.Printf("✓ Selected @%s\n", account.Username)
			return nil
		},
	}
}
