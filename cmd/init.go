package cmd

import (
	"context"

	"github.com/getyour/gyadmin/internal/ioschema"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getInitCmd returns the init command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getInitCmd() *cobra.Command {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init <profile>",
		Short: "Create the application schema in an environment",
		Long: `Init creates or updates the application schema in a
non-production environment.

PostgreSQL environments are migrated with GORM AutoMigrate; "_local"
profiles get a fresh single-file SQLite store. Existing tables and data
are preserved. Production environments are refused.

Examples:
  gyadmin init getyour_dev
  gyadmin init getyour_local --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args, force)
		},
	}

	initCmd.Flags().BoolVarP(&force, "force", "f",
		false, "skip confirmation")

	return initCmd
}

func runInit(_ *cobra.Command, args []string, force bool) error {
	ctx := context.Background()
	profile := args[0]

	if !force {
		q := "Create or update the schema in " + profile + "?"
		if !askYesNo(q) {
			gn.Info("Aborted. No changes made.")
			return nil
		}
	}

	if err := ioschema.Bootstrap(ctx, cfg, profile); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("Schema of <em>%s</em> is up to date.", profile)
	return nil
}
