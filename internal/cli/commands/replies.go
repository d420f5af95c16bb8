package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewRepliesCmd creates the replies command group
func NewRepliesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replies",
		Short: "Review AI-drafted replies",
	}

	cmd.AddCommand(newRepliesListCmd())
	cmd.AddCommand(newRepliesApproveCmd())
	cmd.AddCommand(newRepliesRejectCmd())

	return cmd
}

func newRepliesListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List reply drafts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newCLIContext()
			if err != nil {
				return err
			}

			if err := cli.requireAuth(cmd.Context()); err != nil {
				return err
			}

			drafts, err := cli.client.ListReplies(cmd.Context(), status)
			if err != nil {
				return err
			}

			if len(drafts) == 0 {
				fmt.Println("No reply drafts.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tCOMMENT\tDRAFT")
			fmt.Fprintln(w, "──\t──────\t───────\t─────")
			for _, draft := range drafts {
				fmt.Fprintf(w, "%s\t%s\t@%s: %s\t%s\n",
					draft.ID,
					draft.Status,
					draft.Username,
					truncate(draft.CommentText, 40),
					truncate(draft.Text, 40),
				)
			}
			w.Flush()

			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (draft|approved|rejected|published)")

	return cmd
}

func newRepliesApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <draft-id>",
		Short: "Approve a draft and publish it to Instagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newCLIContext()
			if err != nil {
				return err
			}

			if err := cli.requireAuth(cmd.Context()); err != nil {
				return err
			}

			draft, err := cli.client.ApproveReply(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("✓ Reply published to @%s\n", draft.Username)
			fmt.Printf("  %s\n", draft.Text)
			return nil
		},
	}
}

func newRepliesRejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <draft-id>",
		Short: "Reject a draft so it is never published",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newCLIContext()
			if err != nil {
				return err
			}

			if err := cli.requireAuth(cmd.Context()); err != nil {
				return err
			}

			draft, err := cli.client.RejectReply(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("✓ Draft %s rejected\n", draft.ID)
			return nil
		},
	}
}
