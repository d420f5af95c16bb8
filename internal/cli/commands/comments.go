package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewCommentsCmd creates the comments command
func NewCommentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments <post-id>",
		Short: "List synced comments on a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newCLIContext()
			if err != nil {
				return err
			}

			if err := cli.requireAuth(cmd.Context()); err != nil {
				return err
			}

			comments, err := cli.client.ListComments(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if len(comments) == 0 {
				fmt.Println("No comments synced for this post yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tWHEN\tUSER\tCOMMENT")
			fmt.Fprintln(w, "──\t────\t────\t───────")
			for _, comment := range comments {
				fmt.Fprintf(w, "%s\t%s\t@%s\t%s\n",
					comment.ID,
					comment.CommentedAt.Format("2006-01-02 15:04"),
					comment.Username,
					truncate(comment.Text, 60),
				)
			}
			w.Flush()

			return nil
		},
	}

	return cmd
}
