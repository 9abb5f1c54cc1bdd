package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitd/internal/models"
	"github.com/julianstephens/habitd/internal/storage"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newHabit(owner, name string) models.Habit {
	return models.Habit{
		ID:           storage.NewID(),
		OwnerID:      owner,
		Name:         name,
		DurationDays: 3,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
}

func TestInitAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "habitd.db")

	store := NewStore(path)
	if err := store.Load(); err == nil {
		t.Fatal("Load() before Init() should fail")
	}
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() after Init() failed: %v", err)
	}
	defer reopened.Close()

	runner, err := reopened.MigrationRunner()
	if err != nil {
		t.Fatalf("MigrationRunner() failed: %v", err)
	}
	current, _ := runner.GetCurrentVersion()
	latest, _ := runner.GetLatestVersion()
	if current != latest || current == 0 {
		t.Errorf("schema version = %d, latest = %d", current, latest)
	}
}

func TestHabitUniquePerOwner(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(repo storage.Repository) error {
		return repo.InsertHabit(ctx, newHabit("alice", "Read"))
	})
	if err != nil {
		t.Fatalf("failed to insert habit: %v", err)
	}

	err = store.WithTx(ctx, func(repo storage.Repository) error {
		return repo.InsertHabit(ctx, newHabit("alice", "Read"))
	})
	if !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("duplicate insert error = %v, want ErrDuplicate", err)
	}

	err = store.WithTx(ctx, func(repo storage.Repository) error {
		return repo.InsertHabit(ctx, newHabit("bob", "Read"))
	})
	if err != nil {
		t.Errorf("same name for another owner should succeed: %v", err)
	}
}

func TestProgressUniquePerDay(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	h := newHabit("alice", "Read")

	err := store.WithTx(ctx, func(repo storage.Repository) error {
		if err := repo.InsertHabit(ctx, h); err != nil {
			return err
		}
		for _, day := range []string{"2024-03-01", "2024-02-29", "2024-03-01"} {
			if _, err := repo.InsertProgress(ctx, models.ProgressRecord{
				ID: storage.NewID(), HabitID: h.ID, Day: day, CreatedAt: testNow,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to seed progress: %v", err)
	}

	err = store.WithTx(ctx, func(repo storage.Repository) error {
		inserted, err := repo.InsertProgress(ctx, models.ProgressRecord{
			ID: storage.NewID(), HabitID: h.ID, Day: "2024-03-01", CreatedAt: testNow,
		})
		if err != nil {
			return err
		}
		if inserted {
			t.Error("InsertProgress() reported a second record for the same day")
		}

		days, err := repo.ListProgressDays(ctx, h.ID)
		if err != nil {
			return err
		}
		if len(days) != 2 || days[0] != "2024-03-01" || days[1] != "2024-02-29" {
			t.Errorf("ListProgressDays() = %v", days)
		}

		byOwner, err := repo.ListProgressDaysByOwner(ctx, "alice")
		if err != nil {
			return err
		}
		if len(byOwner[h.ID]) != 2 {
			t.Errorf("ListProgressDaysByOwner() = %v", byOwner)
		}

		count, err := repo.CountProgress(ctx, h.ID)
		if err != nil {
			return err
		}
		if count != 2 {
			t.Errorf("CountProgress() = %d, want 2", count)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
}

func TestDeleteHabitWithProgressRestricted(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	h := newHabit("alice", "Read")

	err := store.WithTx(ctx, func(repo storage.Repository) error {
		if err := repo.InsertHabit(ctx, h); err != nil {
			return err
		}
		_, err := repo.InsertProgress(ctx, models.ProgressRecord{
			ID: storage.NewID(), HabitID: h.ID, Day: "2024-03-01", CreatedAt: testNow,
		})
		return err
	})
	if err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	err = store.WithTx(ctx, func(repo storage.Repository) error {
		return repo.DeleteHabit(ctx, h.ID)
	})
	if err == nil {
		t.Error("deleting a habit with progress should be rejected by the foreign key")
	}
}

func TestEnsureTaxonomyIsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(repo storage.Repository) error {
		c1, err := repo.EnsureCategory(ctx, "Mind & Body", "🧠", testNow)
		if err != nil {
			return err
		}
		c2, err := repo.EnsureCategory(ctx, "Mind & Body", "🧠", testNow)
		if err != nil {
			return err
		}
		if c1.ID != c2.ID {
			t.Errorf("EnsureCategory returned different ids: %s, %s", c1.ID, c2.ID)
		}

		s1, created, err := repo.EnsureSubcategory(ctx, c1.ID, "Meditation", "🧘", "", testNow)
		if err != nil {
			return err
		}
		if !created {
			t.Error("first EnsureSubcategory should create")
		}
		s2, created, err := repo.EnsureSubcategory(ctx, c1.ID, "Meditation", "🧘", "", testNow)
		if err != nil {
			return err
		}
		if created || s1.ID != s2.ID {
			t.Error("second EnsureSubcategory should return the existing row")
		}

		// Same name owned by a user is a distinct row
		s3, created, err := repo.EnsureSubcategory(ctx, c1.ID, "Meditation", "🧘", "alice", testNow)
		if err != nil {
			return err
		}
		if !created || s3.ID == s1.ID {
			t.Error("owned subcategory should be distinct from the catalog row")
		}

		refs, err := repo.ListSubcategories(ctx, "bob")
		if err != nil {
			return err
		}
		if len(refs) != 1 || refs[0].CategoryName != "Mind & Body" {
			t.Errorf("ListSubcategories(bob) = %+v", refs)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
}

func TestInterestsOrderedBySelection(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(repo storage.Repository) error {
		cat, err := repo.EnsureCategory(ctx, "Tech & AI", "🤖", testNow)
		if err != nil {
			return err
		}
		for i, name := range []string{"Programming", "Data Science"} {
			sub, _, err := repo.EnsureSubcategory(ctx, cat.ID, name, "", "", testNow)
			if err != nil {
				return err
			}
			inserted, err := repo.InsertInterest(ctx, models.UserInterest{
				ID:            storage.NewID(),
				OwnerID:       "alice",
				SubcategoryID: sub.ID,
				SelectedAt:    testNow.Add(time.Duration(i) * time.Minute),
			})
			if err != nil {
				return err
			}
			if !inserted {
				t.Errorf("interest %s not inserted", name)
			}
			again, err := repo.InsertInterest(ctx, models.UserInterest{
				ID: storage.NewID(), OwnerID: "alice", SubcategoryID: sub.ID, SelectedAt: testNow,
			})
			if err != nil {
				return err
			}
			if again {
				t.Errorf("duplicate interest %s inserted", name)
			}
		}

		interests, err := repo.ListInterests(ctx, "alice")
		if err != nil {
			return err
		}
		if len(interests) != 2 {
			t.Fatalf("ListInterests() returned %d interests", len(interests))
		}
		if interests[0].SubcategoryName != "Data Science" {
			t.Errorf("most recent interest = %s, want Data Science", interests[0].SubcategoryName)
		}
		if interests[0].CategoryName != "Tech & AI" || interests[0].Custom {
			t.Errorf("unexpected interest %+v", interests[0])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(repo storage.Repository) error {
		if err := repo.InsertHabit(ctx, newHabit("alice", "Read")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}

	err = store.WithTx(ctx, func(repo storage.Repository) error {
		habits, err := repo.ListHabits(ctx, "alice")
		if err != nil {
			return err
		}
		if len(habits) != 0 {
			t.Errorf("rolled back insert is visible: %v", habits)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read transaction failed: %v", err)
	}
}

func TestCounterUniquePerOwner(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	counter := models.Counter{ID: storage.NewID(), OwnerID: "alice", Name: "No sugar", StartedAt: testNow, CreatedAt: testNow}
	err := store.WithTx(ctx, func(repo storage.Repository) error {
		return repo.InsertCounter(ctx, counter)
	})
	if err != nil {
		t.Fatalf("failed to insert counter: %v", err)
	}

	dup := counter
	dup.ID = storage.NewID()
	err = store.WithTx(ctx, func(repo storage.Repository) error {
		return repo.InsertCounter(ctx, dup)
	})
	if !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("duplicate counter error = %v, want ErrDuplicate", err)
	}

	err = store.WithTx(ctx, func(repo storage.Repository) error {
		_, err := repo.GetCounter(ctx, "missing")
		return err
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetCounter(missing) error = %v, want ErrNotFound", err)
	}
}
