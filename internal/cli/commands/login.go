package commands

import (
	"fmt"
	"os"

	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/socivio/socivio/internal/cli/loginform"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the Socivio backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set SOCIVIO_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set SOCIVIO_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(cmd *cobra.Command, email, password string) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("SOCIVIO_EMAIL")
	}
	if password == "" {
		password = os.Getenv("SOCIVIO_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or SOCIVIO_EMAIL env var)")
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println() // New line after password input
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or SOCIVIO_PASSWORD env var)")
		}
	}

	cli, err := newCLIContext()
	if err != nil {
		return err
	}

	fmt.Printf("Logging in to %s...\n", cli.serverURL)

	form := loginform.New(cli.store, func(path string) {
		// Nothing to navigate to in a terminal; success is reported below
	})
	form.SetEmail(email)
	form.SetPassword(password)

	if err := form.Submit(cmd.Context()); err != nil {
		for field, msg := range form.FieldErrors() {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
		}
		if banner := form.Banner(); banner != "" {
			return fmt.Errorf("login failed: %s", banner)
		}
		return fmt.Errorf("login failed")
	}

	snap := cli.store.Snapshot()
	fmt.Println("✓ Login successful!")
	if snap.User != nil {
		fmt.Printf("  User: %s (%s)\n", snap.User.Name, snap.User.Email)
	}

	return nil
}
