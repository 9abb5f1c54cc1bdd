// Package habits owns habit definitions and the completion gate that turns
// daily progress into a terminal done state.
package habits

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/julianstephens/habitd/internal/catalog"
	"github.com/julianstephens/habitd/internal/errors"
	"github.com/julianstephens/habitd/internal/logger"
	"github.com/julianstephens/habitd/internal/metrics"
	"github.com/julianstephens/habitd/internal/models"
	"github.com/julianstephens/habitd/internal/storage"
	"github.com/julianstephens/habitd/internal/streak"
	"github.com/julianstephens/habitd/internal/utils"
	"github.com/julianstephens/habitd/internal/validation"
)

// Input carries the user-editable fields of a habit. Empty CategoryID or
// SubcategoryID means no link.
type Input struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	CategoryID    string `json:"category_id"`
	SubcategoryID string `json:"subcategory_id"`
	Icon          string `json:"icon"`
	DurationDays  int    `json:"duration_days"`
}

// Service owns habit definitions and the completion gate
type Service struct {
	store   storage.Provider
	catalog *catalog.Catalog
	clock   utils.Clock
}

// NewService wires the service over store, cat and clock
func NewService(store storage.Provider, cat *catalog.Catalog, clock utils.Clock) *Service {
	return &Service{store: store, catalog: cat, clock: clock}
}

// Create registers a new active habit for owner
func (s *Service) Create(ctx context.Context, owner string, in Input) (models.Habit, error) {
	if err := validateInput(in); err != nil {
		return models.Habit{}, err
	}

	now := s.clock.Now()
	habit := models.Habit{
		ID:           storage.NewID(),
		OwnerID:      owner,
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Icon:         in.Icon,
		DurationDays: in.DurationDays,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		categoryID, subcategoryID, err := resolveLinks(ctx, repo, owner, in.CategoryID, in.SubcategoryID)
		if err != nil {
			return err
		}
		habit.CategoryID = categoryID
		habit.SubcategoryID = subcategoryID

		if err := repo.InsertHabit(ctx, habit); err != nil {
			if stderrors.Is(err, storage.ErrDuplicate) {
				return errors.Newf(errors.Conflict, "habit %q already exists", habit.Name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return models.Habit{}, err
	}

	logger.Info("Habit created", "habit", habit.ID, "owner", owner, "duration", habit.DurationDays)
	return habit, nil
}

// Edit replaces the editable fields of an active habit
func (s *Service) Edit(ctx context.Context, owner, habitID string, in Input) (models.Habit, error) {
	if err := validateInput(in); err != nil {
		return models.Habit{}, err
	}

	var habit models.Habit
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		var err error
		habit, err = lockOwned(ctx, repo, owner, habitID)
		if err != nil {
			return err
		}
		if habit.Done {
			return errors.New(errors.InvalidState, "cannot edit a completed habit")
		}

		if in.DurationDays != habit.DurationDays {
			days, err := repo.ListProgressDays(ctx, habit.ID)
			if err != nil {
				return err
			}
			if streak.Current(days, s.clock.Today()) > 0 {
				return errors.New(errors.InvalidState,
					"cannot change duration after starting the habit, delete and recreate it to restart")
			}
		}

		categoryID, subcategoryID, err := resolveLinks(ctx, repo, owner, in.CategoryID, in.SubcategoryID)
		if err != nil {
			return err
		}

		habit.Name = strings.TrimSpace(in.Name)
		habit.Description = in.Description
		habit.Icon = in.Icon
		habit.DurationDays = in.DurationDays
		habit.CategoryID = categoryID
		habit.SubcategoryID = subcategoryID
		habit.UpdatedAt = s.clock.Now()

		if err := repo.UpdateHabit(ctx, habit); err != nil {
			if stderrors.Is(err, storage.ErrDuplicate) {
				return errors.Newf(errors.Conflict, "habit %q already exists", habit.Name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

// Delete removes a habit that has no recorded progress
func (s *Service) Delete(ctx context.Context, owner, habitID string) error {
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		habit, err := lockOwned(ctx, repo, owner, habitID)
		if err != nil {
			return err
		}

		count, err := repo.CountProgress(ctx, habit.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return errors.Newf(errors.Conflict, "habit %q has %d progress records and cannot be deleted", habit.Name, count)
		}

		return repo.DeleteHabit(ctx, habit.ID)
	})
	if err != nil {
		return err
	}

	logger.Info("Habit deleted", "habit", habitID, "owner", owner)
	return nil
}

// Get returns one habit with its current streak
func (s *Service) Get(ctx context.Context, owner, habitID string) (models.HabitWithStreak, error) {
	var out models.HabitWithStreak
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		habit, err := getOwned(ctx, repo, owner, habitID)
		if err != nil {
			return err
		}
		days, err := repo.ListProgressDays(ctx, habit.ID)
		if err != nil {
			return err
		}
		out = models.HabitWithStreak{Habit: habit, CurrentStreak: streak.Current(days, s.clock.Today())}
		return nil
	})
	return out, err
}

// List returns every habit of owner with its current streak
func (s *Service) List(ctx context.Context, owner string) ([]models.HabitWithStreak, error) {
	var out []models.HabitWithStreak
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		var err error
		out, err = s.listWithStreaks(ctx, repo, owner)
		return err
	})
	return out, err
}

// CurrentStreak returns the streak ending today for a habit
func (s *Service) CurrentStreak(ctx context.Context, owner, habitID string) (int, error) {
	h, err := s.Get(ctx, owner, habitID)
	if err != nil {
		return 0, err
	}
	return h.CurrentStreak, nil
}

// MarkDone records today's progress for a habit and completes the habit
// when the resulting streak reaches its duration. The append, the streak
// check and the done flip share one transaction.
func (s *Service) MarkDone(ctx context.Context, owner, habitID string) (models.Completion, error) {
	today := s.clock.Today()

	var result models.Completion
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		habit, err := lockOwned(ctx, repo, owner, habitID)
		if err != nil {
			return err
		}
		if habit.Done {
			return errors.Newf(errors.InvalidState, "habit %q is already completed", habit.Name)
		}

		inserted, err := repo.InsertProgress(ctx, models.ProgressRecord{
			ID:        storage.NewID(),
			HabitID:   habit.ID,
			Day:       today,
			CreatedAt: s.clock.Now(),
		})
		if err != nil {
			return err
		}
		if !inserted {
			return errors.Newf(errors.Conflict, "habit %q is already marked done for %s", habit.Name, today)
		}

		days, err := repo.ListProgressDays(ctx, habit.ID)
		if err != nil {
			return err
		}
		current := streak.Current(days, today)

		if streak.Reached(current, habit.DurationDays) {
			habit.Done = true
			habit.UpdatedAt = s.clock.Now()
			if err := repo.UpdateHabit(ctx, habit); err != nil {
				return err
			}
		}

		result = models.Completion{HabitID: habit.ID, Day: today, Streak: current, Done: habit.Done}
		return nil
	})
	if err != nil {
		metrics.RecordCompletion(string(errors.KindOf(err)), false)
		return models.Completion{}, err
	}

	metrics.RecordCompletion("ok", result.Done)
	logger.Info("Habit marked done", "habit", habitID, "day", today, "streak", result.Streak, "done", result.Done)
	return result, nil
}

func (s *Service) listWithStreaks(ctx context.Context, repo storage.Repository, owner string) ([]models.HabitWithStreak, error) {
	habits, err := repo.ListHabits(ctx, owner)
	if err != nil {
		return nil, err
	}
	progress, err := repo.ListProgressDaysByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	out := make([]models.HabitWithStreak, 0, len(habits))
	for _, h := range habits {
		out = append(out, models.HabitWithStreak{Habit: h, CurrentStreak: streak.Current(progress[h.ID], today)})
	}
	return out, nil
}

func validateInput(in Input) error {
	result := validation.ValidateHabit(validation.HabitFields{
		Name:         in.Name,
		Description:  in.Description,
		Icon:         in.Icon,
		DurationDays: in.DurationDays,
	})
	return result.Err()
}

func getOwned(ctx context.Context, repo storage.Repository, owner, habitID string) (models.Habit, error) {
	habit, err := repo.GetHabit(ctx, habitID)
	return checkOwner(habit, err, owner, habitID)
}

func lockOwned(ctx context.Context, repo storage.Repository, owner, habitID string) (models.Habit, error) {
	habit, err := repo.LockHabit(ctx, habitID)
	return checkOwner(habit, err, owner, habitID)
}

func checkOwner(habit models.Habit, err error, owner, habitID string) (models.Habit, error) {
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return models.Habit{}, errors.Newf(errors.NotFound, "habit %s not found", habitID)
		}
		return models.Habit{}, err
	}
	if habit.OwnerID != owner {
		return models.Habit{}, errors.New(errors.Forbidden, "access denied")
	}
	return habit, nil
}

// resolveLinks validates the taxonomy references of a habit. A subcategory
// alone implies its category; both together must agree.
func resolveLinks(ctx context.Context, repo storage.Repository, owner, categoryID, subcategoryID string) (string, string, error) {
	if subcategoryID != "" {
		sub, err := repo.GetSubcategory(ctx, subcategoryID)
		if err != nil {
			if stderrors.Is(err, storage.ErrNotFound) {
				return "", "", errors.Newf(errors.NotFound, "subcategory %s not found", subcategoryID)
			}
			return "", "", err
		}
		// Another owner's custom subcategory is invisible
		if sub.IsCustom() && sub.OwnerID != owner {
			return "", "", errors.Newf(errors.NotFound, "subcategory %s not found", subcategoryID)
		}
		if categoryID == "" {
			return sub.CategoryID, sub.ID, nil
		}
		if sub.CategoryID != categoryID {
			return "", "", errors.New(errors.InvalidArgument, "subcategory does not belong to the selected category")
		}
	}

	if categoryID != "" {
		if _, err := repo.GetCategory(ctx, categoryID); err != nil {
			if stderrors.Is(err, storage.ErrNotFound) {
				return "", "", errors.Newf(errors.NotFound, "category %s not found", categoryID)
			}
			return "", "", err
		}
	}
	return categoryID, subcategoryID, nil
}
