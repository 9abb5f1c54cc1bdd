// Package catalog holds the fixed interest taxonomy. The table is parsed
// once from catalog.yaml and never mutated afterwards, so a *Catalog is
// safe for concurrent readers.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitd/internal/constants"
)

//go:embed catalog.yaml
var catalogYAML []byte

type Subcategory struct {
	Name string `yaml:"name" json:"name"`
	Icon string `yaml:"icon" json:"icon"`
}

type Category struct {
	Name          string        `yaml:"name" json:"name"`
	Icon          string        `yaml:"icon" json:"icon"`
	Subcategories []Subcategory `yaml:"subcategories" json:"subcategories"`
}

// Area is a display grouping of categories
type Area struct {
	Name       string     `yaml:"name" json:"name"`
	Categories []Category `yaml:"categories" json:"categories"`
}

// Entry is a resolved subcategory with its parent category
type Entry struct {
	Subcategory     string `json:"subcategory"`
	SubcategoryIcon string `json:"subcategory_icon"`
	Category        string `json:"category"`
	CategoryIcon    string `json:"category_icon"`
	Area            string `json:"area"`
}

type Catalog struct {
	areas   []Area
	index   map[string]Entry
	options []Entry
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog built from the embedded table
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(catalogYAML)
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that treat a broken embedded table as a programming error
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a catalog from YAML. Names must be unique across the table
// and the reserved custom category name may not appear.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Areas []Area `yaml:"areas"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		areas: doc.Areas,
		index: make(map[string]Entry),
	}
	categories := make(map[string]bool)

	for _, area := range doc.Areas {
		for _, cat := range area.Categories {
			if cat.Name == "" {
				return nil, fmt.Errorf("catalog area %q has a category without a name", area.Name)
			}
			if strings.EqualFold(cat.Name, constants.CustomCategoryName) {
				return nil, fmt.Errorf("catalog may not define the reserved category %q", cat.Name)
			}
			if categories[cat.Name] {
				return nil, fmt.Errorf("duplicate catalog category %q", cat.Name)
			}
			categories[cat.Name] = true

			for _, sub := range cat.Subcategories {
				if sub.Name == "" {
					return nil, fmt.Errorf("catalog category %q has a subcategory without a name", cat.Name)
				}
				if _, exists := c.index[sub.Name]; exists {
					return nil, fmt.Errorf("duplicate catalog subcategory %q", sub.Name)
				}
				e := Entry{
					Subcategory:     sub.Name,
					SubcategoryIcon: sub.Icon,
					Category:        cat.Name,
					CategoryIcon:    cat.Icon,
					Area:            area.Name,
				}
				c.index[sub.Name] = e
				c.options = append(c.options, e)
			}
		}
	}

	if len(c.options) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	return c, nil
}

// Resolve looks up a subcategory by its display name
func (c *Catalog) Resolve(name string) (Entry, bool) {
	e, ok := c.index[strings.TrimSpace(name)]
	return e, ok
}

// Categories returns every category in declared order
func (c *Catalog) Categories() []Category {
	var out []Category
	for _, a := range c.areas {
		for _, cat := range a.Categories {
			out = append(out, copyCategory(cat))
		}
	}
	return out
}

// Areas returns the display grouping in declared order
func (c *Catalog) Areas() []Area {
	out := make([]Area, len(c.areas))
	for i, a := range c.areas {
		out[i] = Area{Name: a.Name, Categories: make([]Category, len(a.Categories))}
		for j, cat := range a.Categories {
			out[i].Categories[j] = copyCategory(cat)
		}
	}
	return out
}

// Options returns a flat list of every subcategory in declared order
func (c *Catalog) Options() []Entry {
	out := make([]Entry, len(c.options))
	copy(out, c.options)
	return out
}

// Len returns the number of subcategories
func (c *Catalog) Len() int {
	return len(c.options)
}

func copyCategory(cat Category) Category {
	subs := make([]Subcategory, len(cat.Subcategories))
	copy(subs, cat.Subcategories)
	return Category{Name: cat.Name, Icon: cat.Icon, Subcategories: subs}
}
