package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/socivio/socivio/internal/cli/commands"
	"github.com/socivio/socivio/internal/cli/update"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "socivio",
	Short: "Socivio - Instagram engagement from the terminal",
	Long: `Socivio CLI - Review your Instagram engagement without leaving the terminal.

Socivio syncs posts and comments from connected Instagram Business accounts
and drafts replies for you to approve or reject.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Name() == "version" {
			return
		}

		// Check for updates (runs before every command except version)
		update.PrintUpdateNotification(version)
	},
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("socivio version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewAccountsCmd())
	rootCmd.AddCommand(commands.NewSelectAccountCmd())
	rootCmd.AddCommand(commands.NewPostsCmd())
	rootCmd.AddCommand(commands.NewCommentsCmd())
	rootCmd.AddCommand(commands.NewRepliesCmd())
	rootCmd.AddCommand(commands.NewSyncCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
