// migrate.go - migrate command: up, down, status and diff

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-blog-backend/database"
)

// NewMigrateCommand builds the migrate command tree.
func NewMigrateCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply, roll back and inspect versioned schema migrations.

The server never changes the schema on its own unless AUTO_MIGRATE is set;
run "migrate up" before the first start and after every upgrade.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withEnv(func(cmd *cobra.Command, e *env) error {
				if err := database.Migrate(e.db); err != nil {
					return err
				}
				NewPrinter(cmd.OutOrStdout()).Success("schema is up to date")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: withEnv(func(cmd *cobra.Command, e *env) error {
				if err := database.Rollback(e.db); err != nil {
					return err
				}
				NewPrinter(cmd.OutOrStdout()).Success("rolled back one migration")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether each is applied",
			Args:  cobra.NoArgs,
			RunE:  withEnv(runMigrateStatus),
		},
		&cobra.Command{
			Use:   "diff",
			Short: "List tables and columns the database is missing",
			Long: `Compare the live database with the models. Exits non-zero when
anything is missing, so it can gate a deploy.`,
			Args: cobra.NoArgs,
			RunE: withEnv(runMigrateDiff),
		},
	)
	return root
}

func withEnv(fn func(cmd *cobra.Command, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd, e)
	}
}

func runMigrateStatus(cmd *cobra.Command, e *env) error {
	states, err := database.Status(e.db)
	if err != nil {
		return err
	}
	p := NewPrinter(cmd.OutOrStdout())
	p.Header("Migrations (%s)", e.cfg.DBDriver)
	pending := 0
	for _, s := range states {
		if s.Applied {
			p.Success("%s applied", s.ID)
		} else {
			pending++
			p.Warning("%s pending", s.ID)
		}
	}
	p.Info("%d applied, %d pending", len(states)-pending, pending)
	return nil
}

func runMigrateDiff(cmd *cobra.Command, e *env) error {
	missing, err := database.Diff(e.db)
	if err != nil {
		return err
	}
	p := NewPrinter(cmd.OutOrStdout())
	if len(missing) == 0 {
		p.Success("database matches the models")
		return nil
	}
	for _, m := range missing {
		p.Error("missing %s", m)
	}
	return fmt.Errorf("schema drift: %d items missing, run \"migrate up\"", len(missing))
}
