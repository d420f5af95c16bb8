package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/socivio/socivio/internal/cli/api"
	"github.com/socivio/socivio/internal/cli/auth"
	"github.com/socivio/socivio/internal/cli/config"
	"github.com/socivio/socivio/internal/cli/guard"
	"github.com/socivio/socivio/internal/cli/session"
)

// cliContext bundles what every command needs: the resolved server, the API
// client, the session store backed by the OS keychain and the guard gating
// protected commands.
type cliContext struct {
	serverURL string
	client    *api.Client
	store     *session.Store
	guard     *guard.Guard
}

// newCLIContext loads the CLI config and wires the client and session store
func newCLIContext() (*cliContext, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	client := api.New(cfg.ServerURL)
	tokens := auth.NewKeyringStore(cfg.ServerURL)
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	store := session.NewStore(client, tokens, logger)

	return &cliContext{
		serverURL: cfg.ServerURL,
		client:    client,
		store:     store,
		guard:     guard.New(nil),
	}, nil
}

// requireAuth restores the persisted session and gates the command behind it.
// Commands that reach the backend call this first; an unauthenticated user
// gets a login hint instead of a protected surface. The guard latches, so
// once a process is authorized later checks stay authorized.
func (c *cliContext) requireAuth(ctx context.Context) error {
	if err := c.store.Restore(ctx); err != nil {
		return fmt.Errorf("could not verify session: %w", err)
	}

	decision := c.guard.Observe(c.store.Snapshot())
	if decision.Action != guard.Render {
		return fmt.Errorf("not logged in. Run 'socivio login' first")
	}

	c.client.SetToken(c.store.Snapshot().Token)
	return nil
}
