// Package counters tracks "time since" counters, e.g. days without sugar.
package counters

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/julianstephens/habitd/internal/errors"
	"github.com/julianstephens/habitd/internal/logger"
	"github.com/julianstephens/habitd/internal/models"
	"github.com/julianstephens/habitd/internal/storage"
	"github.com/julianstephens/habitd/internal/utils"
	"github.com/julianstephens/habitd/internal/validation"
)

// Input carries the editable fields of a counter. A zero StartedAt means now.
type Input struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	StartedAt   time.Time `json:"started_at"`
}

// View is a counter with its elapsed time at the moment it was read
type View struct {
	models.Counter
	ElapsedSeconds int64 `json:"elapsed_seconds"`
	Days           int   `json:"days"`
}

type Service struct {
	store storage.Provider
	clock utils.Clock
}

func NewService(store storage.Provider, clock utils.Clock) *Service {
	return &Service{store: store, clock: clock}
}

func (s *Service) view(c models.Counter) View {
	now := s.clock.Now()
	return View{Counter: c, ElapsedSeconds: int64(c.Elapsed(now) / time.Second), Days: c.Days(now)}
}

func (s *Service) Create(ctx context.Context, owner string, in Input) (View, error) {
	if err := validateInput(in); err != nil {
		return View{}, err
	}

	now := s.clock.Now()
	counter := models.Counter{
		ID:          storage.NewID(),
		OwnerID:     owner,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Icon:        in.Icon,
		StartedAt:   in.StartedAt,
		CreatedAt:   now,
	}
	if counter.StartedAt.IsZero() {
		counter.StartedAt = now
	}

	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		return mapDuplicate(repo.InsertCounter(ctx, counter), counter.Name)
	})
	if err != nil {
		return View{}, err
	}

	logger.Info("Counter created", "counter", counter.ID, "owner", owner)
	return s.view(counter), nil
}

func (s *Service) List(ctx context.Context, owner string) ([]View, error) {
	var counters []models.Counter
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		var err error
		counters, err = repo.ListCounters(ctx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]View, 0, len(counters))
	for _, c := range counters {
		out = append(out, s.view(c))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, owner, id string) (View, error) {
	var counter models.Counter
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		var err error
		counter, err = getOwned(ctx, repo, owner, id)
		return err
	})
	if err != nil {
		return View{}, err
	}
	return s.view(counter), nil
}

// Update replaces the editable fields. A zero StartedAt keeps the current value.
func (s *Service) Update(ctx context.Context, owner, id string, in Input) (View, error) {
	if err := validateInput(in); err != nil {
		return View{}, err
	}

	var counter models.Counter
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		var err error
		counter, err = getOwned(ctx, repo, owner, id)
		if err != nil {
			return err
		}
		counter.Name = strings.TrimSpace(in.Name)
		counter.Description = in.Description
		counter.Icon = in.Icon
		if !in.StartedAt.IsZero() {
			counter.StartedAt = in.StartedAt
		}
		return mapDuplicate(repo.UpdateCounter(ctx, counter), counter.Name)
	})
	if err != nil {
		return View{}, err
	}
	return s.view(counter), nil
}

// Reset restarts a counter from now
func (s *Service) Reset(ctx context.Context, owner, id string) (View, error) {
	var counter models.Counter
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		var err error
		counter, err = getOwned(ctx, repo, owner, id)
		if err != nil {
			return err
		}
		counter.StartedAt = s.clock.Now()
		return repo.UpdateCounter(ctx, counter)
	})
	if err != nil {
		return View{}, err
	}

	logger.Info("Counter reset", "counter", id, "owner", owner)
	return s.view(counter), nil
}

func (s *Service) Delete(ctx context.Context, owner, id string) error {
	return s.store.WithTx(ctx, func(repo storage.Repository) error {
		if _, err := getOwned(ctx, repo, owner, id); err != nil {
			return err
		}
		return repo.DeleteCounter(ctx, id)
	})
}

func validateInput(in Input) error {
	// Counters have no duration; reuse habit field rules with a placeholder.
	result := validation.ValidateHabit(validation.HabitFields{
		Name:         in.Name,
		Description:  in.Description,
		Icon:         in.Icon,
		DurationDays: 1,
	})
	return result.Err()
}

func getOwned(ctx context.Context, repo storage.Repository, owner, id string) (models.Counter, error) {
	c, err := repo.GetCounter(ctx, id)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return models.Counter{}, errors.Newf(errors.NotFound, "counter %s not found", id)
		}
		return models.Counter{}, err
	}
	if c.OwnerID != owner {
		return models.Counter{}, errors.New(errors.Forbidden, "access denied")
	}
	return c, nil
}

func mapDuplicate(err error, name string) error {
	if stderrors.Is(err, storage.ErrDuplicate) {
		return errors.Newf(errors.Conflict, "counter %q already exists", name)
	}
	return err
}
