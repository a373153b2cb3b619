package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/goal-forge/internal/config"
	"github.com/PabloGalante/goal-forge/internal/observability"
)

// cli carries state shared by every command of one invocation.
type cli struct {
	app *app
	now func() time.Time
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(time.Now)
}

func buildRootCmd(now func() time.Time) *cobra.Command {
	c := &cli{now: now}

	root := &cobra.Command{
		Use:   "goalforge",
		Short: "Track effort against your goals",
		Long: `goalforge keeps a ledger of effort for each of your goals.

Signed-in users store goals on the Goal Forge server. Without a session,
goals live on this device.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			observability.SetLevel(cfg.LogLevel)

			a, err := newApp(cmd.Context(), cfg, c.now)
			if err != nil {
				return fmt.Errorf("opening device store: %w", err)
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}

	root.AddCommand(
		c.goalsCmd(),
		c.effortCmd(),
		c.statusCmd(),
		c.serveCmd(),
		c.importCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
	)
	return root
}
