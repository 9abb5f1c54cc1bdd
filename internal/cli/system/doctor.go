package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitd/internal/backup"
	"github.com/julianstephens/habitd/internal/catalog"
	"github.com/julianstephens/habitd/internal/cli"
	"github.com/julianstephens/habitd/internal/lockfile"
	"github.com/julianstephens/habitd/internal/migration"
)

// errSkipped marks a check that does not apply to the current backend
var errSkipped = errors.New("not applicable")

type check struct {
	name string
	// warnOnly checks never fail the run
	warnOnly bool
	// needsDB checks are skipped when the database is unreachable
	needsDB bool
	run     func(*cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Progress duplicates", needsDB: true, run: checkProgressDuplicates},
	{name: "Orphaned progress", needsDB: true, run: checkOrphanedProgress},
	{name: "Completed habits", needsDB: true, run: checkCompletedHabits},
	{name: "Interest catalog", run: checkCatalog},
	{name: "Clock/timezone", run: func(*cli.Context) error { return checkClockTimezone() }},
	{name: "API server", warnOnly: true, run: checkServerLockfile},
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := true

	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errSkipped):
			fmt.Printf("⊘ %s: SKIPPED (%v)\n", c.name, err)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println(cli.DangerStyle.Render("Diagnostics completed with errors."))
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println(cli.SuccessStyle.Render("All diagnostics passed!"))
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	db := ctx.Store.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func versions(ctx *cli.Context) (int, int, error) {
	runner, err := ctx.Store.MigrationRunner()
	if err != nil {
		return 0, 0, err
	}
	st, err := runner.Status()
	if err != nil {
		return 0, 0, err
	}
	return st.Current, st.Latest, nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := versions(ctx)
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, err := versions(ctx)
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if ctx.Store.Driver() != migration.DriverSQLite {
		return fmt.Errorf("%w: PostgreSQL storage", errSkipped)
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'habitd backup create'")
	}
	return nil
}

func checkProgressDuplicates(ctx *cli.Context) error {
	var count int
	err := ctx.Store.GetDB().QueryRow(`
		SELECT COUNT(*)
		FROM (
			SELECT habit_id, day
			FROM habit_progress
			GROUP BY habit_id, day
			HAVING COUNT(*) > 1
		) dupes
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check duplicate progress: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("found %d habit+day combinations with duplicate progress", count)
	}
	return nil
}

func checkOrphanedProgress(ctx *cli.Context) error {
	var count int
	err := ctx.Store.GetDB().QueryRow(`
		SELECT COUNT(*)
		FROM habit_progress p
		LEFT JOIN habits h ON p.habit_id = h.id
		WHERE h.id IS NULL
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check orphaned progress: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("found %d progress records referencing non-existent habits", count)
	}
	return nil
}

// checkCompletedHabits verifies every done habit has at least as many
// progress days as its target
func checkCompletedHabits(ctx *cli.Context) error {
	doneClause := "h.done = 1"
	if ctx.Store.Driver() == migration.DriverPostgres {
		doneClause = "h.done"
	}

	var count int
	err := ctx.Store.GetDB().QueryRow(`
		SELECT COUNT(*)
		FROM habits h
		WHERE ` + doneClause + `
		AND (SELECT COUNT(*) FROM habit_progress p WHERE p.habit_id = h.id) < h.duration_days
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check completed habits: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("found %d completed habits with fewer progress days than their target", count)
	}
	return nil
}

func checkCatalog(ctx *cli.Context) error {
	cat, err := catalog.Default()
	if err != nil {
		return err
	}
	if cat.Len() == 0 {
		return fmt.Errorf("catalog is empty")
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkServerLockfile(ctx *cli.Context) error {
	s, err := lockfile.Find(ctx.ConfigDir())
	if errors.Is(err, lockfile.ErrNotRunning) {
		if _, readErr := lockfile.Read(ctx.ConfigDir()); readErr == nil {
			return fmt.Errorf("stale lockfile at %s, remove it or restart 'habitd serve'", lockfile.Path(ctx.ConfigDir()))
		}
		return fmt.Errorf("%w: not running", errSkipped)
	}
	if err != nil {
		return err
	}
	fmt.Printf("   Running on %s (pid %d)\n", s.Addr, s.PID)
	return nil
}
