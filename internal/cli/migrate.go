package cli

import (
	"fmt"
	"io"

	"exits_backend/platform/config"
	"exits_backend/platform/db"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			if !cfg.IsDatabaseConfigured() {
				return NewExitError(ExitCommandError, "DATABASE_URL is not set")
			}

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg)
			if err != nil {
				return WrapExitError(ExitFailure, "connect database", err)
			}
			defer pool.Close()

			if err := db.RunMigrations(ctx, pool); err != nil {
				return WrapExitError(ExitFailure, "run migrations", err)
			}

			return newFormatter(rootOpts, cmd.OutOrStdout()).Success(map[string]string{"migrations": "applied"}, func(w io.Writer) {
				fmt.Fprintln(w, "migrations applied")
			})
		},
	}
}
