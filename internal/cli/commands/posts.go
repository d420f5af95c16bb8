package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/socivio/socivio/internal/cli/accountselect"
)

// NewPostsCmd creates the posts command
func NewPostsCmd() *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List synced posts for an account",
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

			posts, err := cli.client.ListPosts(cmd.Context(), account.ID)
			if err != nil {
				return err
			}

			if len(posts) == 0 {
				fmt.Printf("No posts synced for @%s yet.\n", account.Username)
				fmt.Println("\nTrigger a sync with: socivio sync")
				return nil
			}

			fmt.Printf("Posts for @%s:\n\n", account.Username)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPOSTED\tCOMMENTS\tCAPTION")
			fmt.Fprintln(w, "──\t──────\t────────\t───────")
			for _, post := range posts {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					post.ID,
					post.PostedAt.Format("2006-01-02"),
					post.CommentCount,
					truncate(post.Caption, 60),
				)
			}
			w.Flush()

			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Instagram account (uses selected account if not specified)")

	return cmd
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
