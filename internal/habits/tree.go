package habits

import (
	"context"
	stderrors "errors"

	"github.com/julianstephens/habitd/internal/constants"
	"github.com/julianstephens/habitd/internal/models"
	"github.com/julianstephens/habitd/internal/storage"
)

type subKey struct {
	category    string
	subcategory string
}

// ListTree groups the owner's habits under the catalog in declared order,
// followed by the owner's custom interests. Habits with no taxonomy link, or
// whose link no longer maps onto the catalog, land in Uncategorized.
func (s *Service) ListTree(ctx context.Context, owner string) (models.HabitTree, error) {
	var (
		habits []models.HabitWithStreak
		refs   []storage.SubcategoryRef
		cats   = make(map[string]models.Category)
	)

	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		var err error
		if habits, err = s.listWithStreaks(ctx, repo, owner); err != nil {
			return err
		}
		if refs, err = repo.ListSubcategories(ctx, owner); err != nil {
			return err
		}
		for _, h := range habits {
			if h.CategoryID == "" || h.SubcategoryID != "" {
				continue
			}
			if _, ok := cats[h.CategoryID]; ok {
				continue
			}
			c, err := repo.GetCategory(ctx, h.CategoryID)
			if err != nil && !stderrors.Is(err, storage.ErrNotFound) {
				return err
			}
			cats[h.CategoryID] = c
		}
		return nil
	})
	if err != nil {
		return models.HabitTree{}, err
	}

	return s.buildTree(habits, refs, cats), nil
}

func (s *Service) buildTree(habits []models.HabitWithStreak, refs []storage.SubcategoryRef, cats map[string]models.Category) models.HabitTree {
	subByID := make(map[string]storage.SubcategoryRef, len(refs))
	for _, ref := range refs {
		subByID[ref.ID] = ref
	}

	bySub := make(map[subKey][]models.HabitWithStreak)
	byCustom := make(map[string][]models.HabitWithStreak)
	byCategory := make(map[string][]models.HabitWithStreak)

	for _, h := range habits {
		switch {
		case h.SubcategoryID != "":
			ref, ok := subByID[h.SubcategoryID]
			if !ok {
				continue
			}
			if ref.IsCustom() {
				byCustom[ref.ID] = append(byCustom[ref.ID], h)
			} else {
				k := subKey{ref.CategoryName, ref.Name}
				bySub[k] = append(bySub[k], h)
			}
		case h.CategoryID != "":
			if c, ok := cats[h.CategoryID]; ok && c.Name != "" {
				byCategory[c.Name] = append(byCategory[c.Name], h)
			}
		}
	}

	placed := make(map[string]bool, len(habits))
	place := func(list []models.HabitWithStreak) []models.HabitWithStreak {
		out := make([]models.HabitWithStreak, 0, len(list))
		for _, h := range list {
			placed[h.ID] = true
			out = append(out, h)
		}
		return out
	}

	tree := models.HabitTree{}
	for _, cat := range s.catalog.Categories() {
		node := models.CategoryNode{
			Name:          cat.Name,
			Icon:          cat.Icon,
			Subcategories: make([]models.SubcategoryNode, 0, len(cat.Subcategories)),
		}
		for _, sub := range cat.Subcategories {
			node.Subcategories = append(node.Subcategories, models.SubcategoryNode{
				Name:   sub.Name,
				Icon:   sub.Icon,
				Habits: place(bySub[subKey{cat.Name, sub.Name}]),
			})
		}
		if list := byCategory[cat.Name]; len(list) > 0 {
			node.Habits = place(list)
		}
		tree.Categories = append(tree.Categories, node)
	}

	custom := models.CategoryNode{
		Name:          constants.CustomCategoryName,
		Icon:          constants.CustomCategoryIcon,
		Subcategories: []models.SubcategoryNode{},
	}
	for _, ref := range refs {
		if !ref.IsCustom() {
			continue
		}
		custom.Subcategories = append(custom.Subcategories, models.SubcategoryNode{
			Name:   ref.Name,
			Icon:   ref.Icon,
			Custom: true,
			Habits: place(byCustom[ref.ID]),
		})
	}
	if list := byCategory[constants.CustomCategoryName]; len(list) > 0 {
		custom.Habits = place(list)
	}
	if len(custom.Subcategories) > 0 || len(custom.Habits) > 0 {
		tree.Categories = append(tree.Categories, custom)
	}

	tree.Uncategorized = []models.HabitWithStreak{}
	for _, h := range habits {
		if !placed[h.ID] {
			tree.Uncategorized = append(tree.Uncategorized, h)
		}
	}
	return tree
}
