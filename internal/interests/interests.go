// Package interests manages per-owner interest selections against the
// taxonomy catalog, including custom interests and bulk diffs.
package interests

import (
	"context"
	stderrors "errors"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/habitd/internal/catalog"
	"github.com/julianstephens/habitd/internal/constants"
	"github.com/julianstephens/habitd/internal/errors"
	"github.com/julianstephens/habitd/internal/logger"
	"github.com/julianstephens/habitd/internal/metrics"
	"github.com/julianstephens/habitd/internal/models"
	"github.com/julianstephens/habitd/internal/storage"
	"github.com/julianstephens/habitd/internal/utils"
	"github.com/julianstephens/habitd/internal/validation"
)

// Service manages owner interests against the catalog
type Service struct {
	store   storage.Provider
	catalog *catalog.Catalog
	clock   utils.Clock
}

// NewService wires the service over store, cat and clock
func NewService(store storage.Provider, cat *catalog.Catalog, clock utils.Clock) *Service {
	return &Service{store: store, catalog: cat, clock: clock}
}

// Catalog returns the full category tree
func (s *Service) Catalog() []catalog.Category {
	return s.catalog.Categories()
}

// Areas returns the catalog grouped for display
func (s *Service) Areas() []catalog.Area {
	return s.catalog.Areas()
}

// Options returns every selectable catalog entry
func (s *Service) Options() []catalog.Entry {
	return s.catalog.Options()
}

// List returns the owner's interests, most recently selected first
func (s *Service) List(ctx context.Context, owner string) ([]models.Interest, error) {
	var out []models.Interest
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		var err error
		out, err = repo.ListInterests(ctx, owner)
		return err
	})
	return out, err
}

// Select adds a batch of catalog interests during onboarding. Every name
// must resolve and none may already be selected; otherwise nothing changes.
func (s *Service) Select(ctx context.Context, owner string, names []string) ([]models.Interest, error) {
	names = validation.Normalize(names)
	if len(names) == 0 {
		return nil, errors.New(errors.InvalidArgument, "at least one interest is required")
	}

	var out []models.Interest
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		selected, err := selectedByName(ctx, repo, owner)
		if err != nil {
			return err
		}

		result := validation.ValidateInterestDiff(validation.InterestDiff{Add: names}, s.resolves, has(selected))
		if err := result.Err(); err != nil {
			return err
		}

		if err := s.addAll(ctx, repo, owner, names); err != nil {
			return err
		}
		out, err = repo.ListInterests(ctx, owner)
		return err
	})
	s.record("select", err)
	if err != nil {
		return nil, err
	}

	logger.Info("Interests selected", "owner", owner, "count", len(names))
	return out, nil
}

// Manage applies a validated add/remove diff. All checks run before any
// mutation and their messages are reported together.
func (s *Service) Manage(ctx context.Context, owner string, add, remove []string) ([]models.Interest, error) {
	add = validation.Normalize(add)
	remove = validation.Normalize(remove)

	var out []models.Interest
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		selected, err := selectedByName(ctx, repo, owner)
		if err != nil {
			return err
		}

		diff := validation.InterestDiff{Add: add, Remove: remove}
		result := validation.ValidateInterestDiff(diff, s.resolves, has(selected))
		if err := result.Err(); err != nil {
			return err
		}

		for _, name := range remove {
			for _, interest := range selected[name] {
				if err := removeInterest(ctx, repo, interest); err != nil {
					return err
				}
			}
		}
		if err := s.addAll(ctx, repo, owner, add); err != nil {
			return err
		}

		out, err = repo.ListInterests(ctx, owner)
		return err
	})
	s.record("manage", err)
	if err != nil {
		return nil, err
	}

	logger.Info("Interests updated", "owner", owner, "added", len(add), "removed", len(remove))
	return out, nil
}

// AddCustom creates a private subcategory under the Custom category and
// selects it for owner.
func (s *Service) AddCustom(ctx context.Context, owner, name, icon string) (models.Interest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Interest{}, errors.New(errors.InvalidArgument, "custom interest name is required")
	}
	if utf8.RuneCountInString(name) > validation.MaxNameLength {
		return models.Interest{}, errors.Newf(errors.InvalidArgument, "custom interest name must be at most %d characters", validation.MaxNameLength)
	}
	icon = strings.TrimSpace(icon)
	if icon == "" {
		icon = constants.DefaultCustomIcon
	}

	now := s.clock.Now()
	var out models.Interest
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		cat, err := repo.EnsureCategory(ctx, constants.CustomCategoryName, constants.CustomCategoryIcon, now)
		if err != nil {
			return err
		}
		sub, created, err := repo.EnsureSubcategory(ctx, cat.ID, name, icon, owner, now)
		if err != nil {
			return err
		}
		if !created {
			return errors.Newf(errors.Conflict, "custom interest %q already exists", name)
		}

		ui := models.UserInterest{ID: storage.NewID(), OwnerID: owner, SubcategoryID: sub.ID, SelectedAt: now}
		if _, err := repo.InsertInterest(ctx, ui); err != nil {
			return err
		}
		out, err = repo.GetInterest(ctx, ui.ID)
		return err
	})
	s.record("custom", err)
	if err != nil {
		return models.Interest{}, err
	}

	logger.Info("Custom interest added", "owner", owner, "interest", out.ID)
	return out, nil
}

// Remove deletes one of owner's interests. Custom interests take their
// subcategory with them.
func (s *Service) Remove(ctx context.Context, owner, interestID string) error {
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		interest, err := repo.GetInterest(ctx, interestID)
		if err != nil {
			if stderrors.Is(err, storage.ErrNotFound) {
				return errors.Newf(errors.NotFound, "interest %s not found", interestID)
			}
			return err
		}
		if interest.OwnerID != owner {
			return errors.New(errors.Forbidden, "access denied")
		}
		return removeInterest(ctx, repo, interest)
	})
	s.record("remove", err)
	if err != nil {
		return err
	}

	logger.Info("Interest removed", "owner", owner, "interest", interestID)
	return nil
}

// Materialize returns the persisted subcategory for a catalog name,
// creating its rows on first use.
func (s *Service) Materialize(ctx context.Context, name string) (models.Subcategory, error) {
	entry, ok := s.catalog.Resolve(name)
	if !ok {
		return models.Subcategory{}, errors.Newf(errors.InvalidArgument, "unknown interest %q", strings.TrimSpace(name))
	}

	var sub models.Subcategory
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		var err error
		sub, err = materialize(ctx, repo, entry, s.clock)
		return err
	})
	return sub, err
}

func (s *Service) resolves(name string) bool {
	_, ok := s.catalog.Resolve(name)
	return ok
}

func (s *Service) addAll(ctx context.Context, repo storage.Repository, owner string, names []string) error {
	for _, name := range names {
		entry, ok := s.catalog.Resolve(name)
		if !ok {
			return errors.Newf(errors.InvalidArgument, "unknown interest %q", name)
		}
		sub, err := materialize(ctx, repo, entry, s.clock)
		if err != nil {
			return err
		}
		inserted, err := repo.InsertInterest(ctx, models.UserInterest{
			ID:            storage.NewID(),
			OwnerID:       owner,
			SubcategoryID: sub.ID,
			SelectedAt:    s.clock.Now(),
		})
		if err != nil {
			return err
		}
		if !inserted {
			return errors.Newf(errors.Conflict, "interest %q already selected", name)
		}
	}
	return nil
}

func (s *Service) record(op string, err error) {
	if err != nil {
		metrics.RecordInterestMutation(op, string(errors.KindOf(err)))
		return
	}
	metrics.RecordInterestMutation(op, "ok")
}

// materialize find-or-creates the category and catalog subcategory rows
// behind an entry. Both writes are conflict-tolerant upserts.
func materialize(ctx context.Context, repo storage.Repository, entry catalog.Entry, clock utils.Clock) (models.Subcategory, error) {
	now := clock.Now()
	cat, err := repo.EnsureCategory(ctx, entry.Category, entry.CategoryIcon, now)
	if err != nil {
		return models.Subcategory{}, err
	}
	sub, _, err := repo.EnsureSubcategory(ctx, cat.ID, entry.Subcategory, entry.SubcategoryIcon, "", now)
	return sub, err
}

func removeInterest(ctx context.Context, repo storage.Repository, interest models.Interest) error {
	if err := repo.DeleteInterest(ctx, interest.ID); err != nil {
		return err
	}
	if interest.Custom {
		if err := repo.DeleteSubcategory(ctx, interest.SubcategoryID); err != nil && !stderrors.Is(err, storage.ErrNotFound) {
			return err
		}
	}
	return nil
}

func selectedByName(ctx context.Context, repo storage.Repository, owner string) (map[string][]models.Interest, error) {
	current, err := repo.ListInterests(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]models.Interest, len(current))
	for _, i := range current {
		out[i.SubcategoryName] = append(out[i.SubcategoryName], i)
	}
	return out, nil
}

func has(selected map[string][]models.Interest) map[string]bool {
	out := make(map[string]bool, len(selected))
	for name := range selected {
		out[name] = true
	}
	return out
}
