package system

import (
	"fmt"

	"github.com/julianstephens/habitd/internal/cli"
)

type MigrateCmd struct {
	DryRun bool `help:"List pending migrations without applying them."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	// Load accepts an older schema, only a newer one is rejected
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	runner, err := ctx.Store.MigrationRunner()
	if err != nil {
		return err
	}

	if c.DryRun {
		st, err := runner.Status()
		if err != nil {
			return err
		}
		fmt.Printf("Schema version %d of %d\n", st.Current, st.Latest)
		if st.UpToDate() {
			fmt.Println("No pending migrations.")
		}
		for _, m := range st.Pending {
			fmt.Printf("  pending %03d_%s\n", m.Version, m.Name)
		}
		return nil
	}

	count, err := runner.ApplyMigrations(func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
