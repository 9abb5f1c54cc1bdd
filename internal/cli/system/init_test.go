package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitd/internal/cli"
	"github.com/julianstephens/habitd/internal/habits"
	"github.com/julianstephens/habitd/internal/storage/sqlite"
	"github.com/julianstephens/habitd/internal/utils"
)

func setupTestInitDB(t *testing.T) (*cli.Context, string, func()) {
	dbPath := filepath.Join(t.TempDir(), "habitd.db")
	store := sqlite.NewStore(dbPath)
	clock := &utils.FixedClock{T: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	ctx := cli.NewContext(store, clock, "local")

	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}
	return ctx, dbPath, cleanup
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}

	bg := context.Background()
	if _, err := ctx.Habits.Create(bg, ctx.Owner, habits.Input{Name: "Read", DurationDays: 7}); err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init with force failed: %v", err)
	}

	list, err := ctx.Habits.List(bg, ctx.Owner)
	if err != nil {
		t.Fatalf("failed to list habits: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected a fresh database after --force, found %d habits", len(list))
	}
}

func TestInitCmd_ForceOnNonExistent(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init with force on non-existent database failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created")
	}
}

func TestInitCmd_SeedCatalog(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{SeedCatalog: true}).Run(ctx); err != nil {
		t.Fatalf("init with seed failed: %v", err)
	}

	var count int
	if err := ctx.Store.GetDB().QueryRow("SELECT COUNT(*) FROM subcategories").Scan(&count); err != nil {
		t.Fatalf("failed to count subcategories: %v", err)
	}
	if count != ctx.Catalog.Len() {
		t.Errorf("expected %d seeded subcategories, got %d", ctx.Catalog.Len(), count)
	}

	// Seeding again must not duplicate rows
	if err := (&InitCmd{SeedCatalog: true}).Run(ctx); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if err := ctx.Store.GetDB().QueryRow("SELECT COUNT(*) FROM subcategories").Scan(&count); err != nil {
		t.Fatalf("failed to count subcategories: %v", err)
	}
	if count != ctx.Catalog.Len() {
		t.Errorf("expected %d subcategories after reseed, got %d", ctx.Catalog.Len(), count)
	}
}
