package system

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitd/internal/backup"
	"github.com/julianstephens/habitd/internal/cli"
	"github.com/julianstephens/habitd/internal/habits"
	"github.com/julianstephens/habitd/internal/storage/sqlite"
	"github.com/julianstephens/habitd/internal/utils"
)

func setupTestDoctorDB(t *testing.T) (*cli.Context, func()) {
	dbPath := filepath.Join(t.TempDir(), "habitd.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	clock := &utils.FixedClock{T: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	ctx := cli.NewContext(store, clock, "local")

	cleanup := func() {
		store.Close()
	}
	return ctx, cleanup
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	// Missing backups is a warning, not a failure
	cmd := &DoctorCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
}

func TestDoctorCmd_WithDataAndBackups(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	bg := context.Background()
	habit, err := ctx.Habits.Create(bg, ctx.Owner, habits.Input{Name: "Read", DurationDays: 1})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	if _, err := ctx.Habits.MarkDone(bg, ctx.Owner, habit.ID); err != nil {
		t.Fatalf("failed to mark habit: %v", err)
	}

	if _, err := backup.NewManager(ctx.Store.GetConfigPath()).Create(); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	cmd := &DoctorCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("doctor command failed with data and backups present: %v", err)
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	db := ctx.Store.GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to insert corrupted schema version: %v", err)
	}

	cmd := &DoctorCmd{}
	if err := cmd.Run(ctx); err == nil {
		t.Error("doctor command should fail with corrupted schema")
	}
}

func TestCheckMigrationsComplete_Incomplete(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	current, latest, err := versions(ctx)
	if err != nil {
		t.Fatalf("failed to read versions: %v", err)
	}
	if current != latest {
		t.Fatalf("fresh database should be fully migrated: %d != %d", current, latest)
	}

	db := ctx.Store.GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", latest-1); err != nil {
		t.Fatalf("failed to insert downgraded schema version: %v", err)
	}

	if err := checkMigrationsComplete(ctx); err == nil {
		t.Error("checkMigrationsComplete should fail with incomplete migrations")
	}
}

func TestCheckCompletedHabits_Inconsistent(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	_, err := ctx.Store.GetDB().Exec(`
		INSERT INTO habits (id, owner_id, name, duration_days, done, created_at, updated_at)
		VALUES ('h1', 'local', 'Ghost', 3, 1, '2024-03-01T09:00:00Z', '2024-03-01T09:00:00Z')
	`)
	if err != nil {
		t.Fatalf("failed to insert habit: %v", err)
	}

	if err := checkCompletedHabits(ctx); err == nil {
		t.Error("expected a done habit without progress to fail the check")
	}
}

func TestCheckClockTimezone(t *testing.T) {
	if err := checkClockTimezone(); err != nil {
		t.Errorf("clock/timezone check failed: %v", err)
	}
}

func TestCheckCatalog(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	if err := checkCatalog(ctx); err != nil {
		t.Errorf("embedded catalog should load: %v", err)
	}
}
