package interests

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/habitd/internal/catalog"
	"github.com/julianstephens/habitd/internal/errors"
	"github.com/julianstephens/habitd/internal/models"
	"github.com/julianstephens/habitd/internal/storage"
	"github.com/julianstephens/habitd/internal/storage/sqlite"
	"github.com/julianstephens/habitd/internal/utils"
)

func setupService(t *testing.T) (*Service, *sqlite.Store, *utils.FixedClock) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clock := &utils.FixedClock{T: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewService(store, catalog.MustDefault(), clock), store, clock
}

func expectKind(t *testing.T, err error, want errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := errors.KindOf(err); got != want {
		t.Fatalf("error kind = %s, want %s (%v)", got, want, err)
	}
}

func names(list []models.Interest) []string {
	out := make([]string, len(list))
	for i, in := range list {
		out[i] = in.SubcategoryName
	}
	return out
}

func subcategoryExists(t *testing.T, store *sqlite.Store, id string) bool {
	t.Helper()
	ctx := context.Background()
	found := true
	err := store.WithTx(ctx, func(repo storage.Repository) error {
		_, err := repo.GetSubcategory(ctx, id)
		if err == storage.ErrNotFound {
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		t.Fatalf("failed to look up subcategory: %v", err)
	}
	return found
}

func TestSelect(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	got, err := svc.Select(ctx, "alice", []string{"Meditation", "Stoicism", "Meditation"})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Select returned %v", names(got))
	}
	for _, in := range got {
		if in.CategoryName != "Mind & Body" || in.Custom {
			t.Errorf("unexpected interest %+v", in)
		}
	}

	// Another owner selecting the same names reuses the catalog rows
	bobs, err := svc.Select(ctx, "bob", []string{"Meditation"})
	if err != nil {
		t.Fatalf("Select for bob failed: %v", err)
	}
	if bobs[0].SubcategoryID != got[0].SubcategoryID && bobs[0].SubcategoryID != got[1].SubcategoryID {
		t.Error("catalog subcategory row should be shared between owners")
	}
}

func TestSelectCollectsAllProblems(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Select(ctx, "alice", []string{"Meditation", "Bogus", "Nope"})
	expectKind(t, err, errors.InvalidArgument)
	if !strings.Contains(err.Error(), "Bogus") || !strings.Contains(err.Error(), "Nope") {
		t.Errorf("error should list every unresolved name: %v", err)
	}

	list, err := svc.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("failed Select mutated state: %v", names(list))
	}

	if _, err := svc.Select(ctx, "alice", []string{"Meditation"}); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	_, err = svc.Select(ctx, "alice", []string{"Meditation"})
	expectKind(t, err, errors.Conflict)

	_, err = svc.Select(ctx, "alice", nil)
	expectKind(t, err, errors.InvalidArgument)
}

func TestManageOverlap(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Manage(ctx, "alice", []string{"Meditation"}, []string{"Meditation"})
	expectKind(t, err, errors.InvalidArgument)
	if !strings.Contains(err.Error(), "both added and removed") {
		t.Errorf("error should mention the overlap: %v", err)
	}

	list, _ := svc.List(ctx, "alice")
	if len(list) != 0 {
		t.Errorf("overlap mutated state: %v", names(list))
	}
}

func TestManageAtomicity(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Manage(ctx, "alice", []string{"Meditation", "AlreadyBogus"}, nil)
	expectKind(t, err, errors.InvalidArgument)

	list, _ := svc.List(ctx, "alice")
	if len(list) != 0 {
		t.Errorf("valid name was added despite failure: %v", names(list))
	}
}

func TestManageAppliesDiff(t *testing.T) {
	svc, _, clock := setupService(t)
	ctx := context.Background()

	if _, err := svc.Select(ctx, "alice", []string{"Meditation", "Stoicism"}); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	clock.T = clock.T.Add(time.Hour)

	got, err := svc.Manage(ctx, "alice", []string{"Journaling"}, []string{"Stoicism"})
	if err != nil {
		t.Fatalf("Manage failed: %v", err)
	}
	if len(got) != 2 || got[0].SubcategoryName != "Journaling" || got[1].SubcategoryName != "Meditation" {
		t.Errorf("Manage returned %v, want [Journaling Meditation]", names(got))
	}

	tests := []struct {
		name   string
		add    []string
		remove []string
		want   errors.Kind
	}{
		{"already selected", []string{"Meditation"}, nil, errors.Conflict},
		{"not selected", nil, []string{"Stoicism"}, errors.InvalidArgument},
		{"conflict plus invalid", []string{"Meditation"}, []string{"Buddhism"}, errors.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Manage(ctx, "alice", tt.add, tt.remove)
			expectKind(t, err, tt.want)
		})
	}
}

func TestCustomInterestCascade(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	custom, err := svc.AddCustom(ctx, "alice", "Pottery", "")
	if err != nil {
		t.Fatalf("AddCustom failed: %v", err)
	}
	if !custom.Custom || custom.CategoryName != "Custom" || custom.SubcategoryIcon != "⭐" {
		t.Errorf("unexpected custom interest %+v", custom)
	}

	_, err = svc.AddCustom(ctx, "alice", "Pottery", "🏺")
	expectKind(t, err, errors.Conflict)

	if _, err := svc.AddCustom(ctx, "bob", "Pottery", "🏺"); err != nil {
		t.Errorf("same custom name for another owner should succeed: %v", err)
	}

	shared, err := svc.Select(ctx, "alice", []string{"Meditation"})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if _, err := svc.Select(ctx, "bob", []string{"Meditation"}); err != nil {
		t.Fatalf("Select for bob failed: %v", err)
	}
	var meditation models.Interest
	for _, in := range shared {
		if in.SubcategoryName == "Meditation" {
			meditation = in
		}
	}

	if err := svc.Remove(ctx, "alice", custom.ID); err != nil {
		t.Fatalf("Remove custom failed: %v", err)
	}
	if subcategoryExists(t, store, custom.SubcategoryID) {
		t.Error("custom subcategory should be deleted with its interest")
	}

	if err := svc.Remove(ctx, "alice", meditation.ID); err != nil {
		t.Fatalf("Remove catalog interest failed: %v", err)
	}
	if !subcategoryExists(t, store, meditation.SubcategoryID) {
		t.Error("catalog subcategory must survive interest removal")
	}

	bobs, err := svc.List(ctx, "bob")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(bobs) != 2 {
		t.Errorf("bob's interests changed: %v", names(bobs))
	}
}

func TestManageRemovesCustomByName(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	custom, err := svc.AddCustom(ctx, "alice", "Pottery", "🏺")
	if err != nil {
		t.Fatalf("AddCustom failed: %v", err)
	}
	if _, err := svc.Manage(ctx, "alice", nil, []string{"Pottery"}); err != nil {
		t.Fatalf("Manage failed: %v", err)
	}
	if subcategoryExists(t, store, custom.SubcategoryID) {
		t.Error("custom subcategory should be deleted when removed through Manage")
	}
}

func TestRemoveOwnership(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	list, err := svc.Select(ctx, "alice", []string{"Meditation"})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	expectKind(t, svc.Remove(ctx, "bob", list[0].ID), errors.Forbidden)
	expectKind(t, svc.Remove(ctx, "alice", "missing"), errors.NotFound)

	_, err = svc.AddCustom(ctx, "alice", "   ", "")
	expectKind(t, err, errors.InvalidArgument)
}

func TestMaterialize(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.Materialize(ctx, "Meditation")
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	second, err := svc.Materialize(ctx, " Meditation ")
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if first.ID != second.ID || first.IsCustom() {
		t.Errorf("Materialize should be idempotent: %+v vs %+v", first, second)
	}

	_, err = svc.Materialize(ctx, "Bogus")
	expectKind(t, err, errors.InvalidArgument)
}

func TestCatalogAccessors(t *testing.T) {
	svc, _, _ := setupService(t)
	if len(svc.Catalog()) == 0 || len(svc.Areas()) == 0 {
		t.Fatal("catalog should not be empty")
	}
	if len(svc.Options()) != catalog.MustDefault().Len() {
		t.Errorf("Options() returned %d entries", len(svc.Options()))
	}
}

func TestSelectConcurrentMaterialize(t *testing.T) {
	svc, store, _ := setupService(t)
	picks := []string{"Meditation", "Physics"}

	const owners = 8
	var wg sync.WaitGroup
	errs := make([]error, owners)
	for i := 0; i < owners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Select(context.Background(), fmt.Sprintf("user-%d", i), picks)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("owner %d: Select failed: %v", i, err)
		}
	}

	for _, name := range picks {
		var count int
		err := store.GetDB().QueryRow("SELECT COUNT(*) FROM subcategories WHERE name = ? AND owner_id = ''", name).Scan(&count)
		if err != nil {
			t.Fatalf("count query failed: %v", err)
		}
		if count != 1 {
			t.Errorf("subcategory rows for %q = %d, want 1", name, count)
		}
	}

	for i := 0; i < owners; i++ {
		list, err := svc.List(context.Background(), fmt.Sprintf("user-%d", i))
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(list) != len(picks) {
			t.Errorf("user-%d has %d interests, want %d", i, len(list), len(picks))
		}
	}
}

func TestCustomNameBlocksSameCatalogName(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.AddCustom(ctx, "alice", "Meditation", ""); err != nil {
		t.Fatalf("AddCustom failed: %v", err)
	}

	_, err := svc.Manage(ctx, "alice", []string{"Meditation"}, nil)
	expectKind(t, err, errors.Conflict)

	list, err := svc.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || !list[0].Custom {
		t.Errorf("interests = %v, want only the custom Meditation", names(list))
	}
}
