package accountselect

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"

	"github.com/socivio/socivio/internal/cli/api"
	"github.com/socivio/socivio/internal/cli/userconfig"
)

// ResolveAccount determines which Instagram account a command targets:
// 1. If accountID flag is provided, use that account
// 2. If user has a selected account in their local config, use that
// 3. If only one account is connected, use that
// 4. Otherwise, prompt user to select an account interactively
func ResolveAccount(ctx context.Context, client *api.Client, accountID string) (*api.ConnectedAccount, error) {
	accounts, err := client.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no Instagram accounts connected. Connect one from the dashboard first")
	}

	// Priority 1: Use account ID if provided
	if accountID != "" {
		account, err := getAccountByID(accounts, accountID)
		if err != nil {
			return nil, err
		}
		return account, nil
	}

	// Priority 2: Use selected account from user config
	selectedID, err := userconfig.GetSelectedAccount()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if selectedID != "" {
		account, err := getAccountByID(accounts, selectedID)
		if err != nil {
			// Selected account is no longer connected, clear it and continue
			_ = userconfig.SetSelectedAccount("")
		} else {
			return account, nil
		}
	}

	// Priority 3: If only one account, use it automatically
	if len(accounts) == 1 {
		account := &accounts[0]
		if err := userconfig.SetSelectedAccount(account.ID); err != nil {
			// Don't fail if we can't save, just continue
			fmt.Printf("Warning: failed to save selected account: %v\n", err)
		}
		return account, nil
	}

	// Priority 4: Prompt user to select an account
	account, err := PromptAccountSelection(accounts)
	if err != nil {
		return nil, err
	}

	if err := userconfig.SetSelectedAccount(account.ID); err != nil {
		// Don't fail if we can't save, just continue
		fmt.Printf("Warning: failed to save selected account: %v\n", err)
	}

	return account, nil
}

// PromptAccountSelection shows an interactive prompt for the user to select an account
func PromptAccountSelection(accounts []api.ConnectedAccount) (*api.ConnectedAccount, error) {
	type accountOption struct {
		Label   string
		Account *api.ConnectedAccount
	}

	options := make([]accountOption, len(accounts))
	for i := range accounts {
		account := &accounts[i]
		label := fmt.Sprintf("@%s (%s)", account.Username, account.PageName)
		options[i] = accountOption{
			Label:   label,
			Account: account,
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select an Instagram account",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("account selection cancelled: %w", err)
	}

	return options[index].Account, nil
}

func getAccountByID(accounts []api.ConnectedAccount, id string) (*api.ConnectedAccount, error) {
	for i := range accounts {
		if accounts[i].ID == id || accounts[i].ExternalID == id || accounts[i].Username == id {
			return &accounts[i], nil
		}
	}
	return nil, fmt.Errorf("account '%s' is not connected", id)
}
