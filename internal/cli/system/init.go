package system

import (
	"context"
	"fmt"
	"os"

	"github.com/julianstephens/habitd/internal/cli"
	"github.com/julianstephens/habitd/internal/migration"
)

type InitCmd struct {
	Force       bool `help:"Force reset by deleting the existing SQLite database before initialization."`
	SeedCatalog bool `help:"Create taxonomy rows for every catalog interest up front."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if ctx.Store.Driver() != migration.DriverSQLite {
			return fmt.Errorf("--force is only supported for SQLite storage")
		}
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			// Close first to release the file lock
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized habitd storage at: %s\n", ctx.Store.GetConfigPath())

	if c.SeedCatalog {
		bg := context.Background()
		for _, entry := range ctx.Interests.Options() {
			if _, err := ctx.Interests.Materialize(bg, entry.Subcategory); err != nil {
				return fmt.Errorf("failed to seed %q: %w", entry.Subcategory, err)
			}
		}
		fmt.Printf("Seeded %d catalog interests\n", len(ctx.Interests.Options()))
	}
	return nil
}
