package cli

import (
	"context"
	"strings"

	"github.com/julianstephens/habitd/internal/errors"
	"github.com/julianstephens/habitd/internal/models"
)

// ResolveHabit finds one of the owner's habits by id, id prefix or name
func (c *Context) ResolveHabit(ctx context.Context, ref string) (models.HabitWithStreak, error) {
	ref = strings.TrimSpace(ref)
	list, err := c.Habits.List(ctx, c.Owner)
	if err != nil {
		return models.HabitWithStreak{}, err
	}

	var matches []models.HabitWithStreak
	for _, h := range list {
		if h.ID == ref || strings.EqualFold(h.Name, ref) {
			return h, nil
		}
		if len(ref) >= 4 && strings.HasPrefix(h.ID, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.HabitWithStreak{}, errors.Newf(errors.NotFound, "habit %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return models.HabitWithStreak{}, errors.Newf(errors.InvalidArgument, "habit id prefix %q is ambiguous", ref)
	}
}

// ResolveSubcategory maps an interest name to its subcategory id. Custom
// interests of the owner are checked before the catalog.
func (c *Context) ResolveSubcategory(ctx context.Context, name string) (string, error) {
	selected, err := c.Interests.List(ctx, c.Owner)
	if err != nil {
		return "", err
	}
	for _, in := range selected {
		if in.Custom && strings.EqualFold(in.SubcategoryName, strings.TrimSpace(name)) {
			return in.SubcategoryID, nil
		}
	}

	sub, err := c.Interests.Materialize(ctx, name)
	if err != nil {
		return "", err
	}
	return sub.ID, nil
}

// ResolveInterest finds one of the owner's interests by id or name
func (c *Context) ResolveInterest(ctx context.Context, ref string) (models.Interest, error) {
	ref = strings.TrimSpace(ref)
	list, err := c.Interests.List(ctx, c.Owner)
	if err != nil {
		return models.Interest{}, err
	}
	for _, in := range list {
		if in.ID == ref || strings.EqualFold(in.SubcategoryName, ref) {
			return in, nil
		}
	}
	return models.Interest{}, errors.Newf(errors.NotFound, "interest %q not found", ref)
}
