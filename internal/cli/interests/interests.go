package interests

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitd/internal/cli"
)

type InterestCmd struct {
	Catalog InterestCatalogCmd `cmd:"" help:"Show the interest catalog."`
	List    InterestListCmd    `cmd:"" help:"List selected interests." default:"1"`
	Select  InterestSelectCmd  `cmd:"" help:"Make the initial interest selection."`
	Manage  InterestManageCmd  `cmd:"" help:"Add and remove interests in one step."`
	Custom  InterestCustomCmd  `cmd:"" help:"Add a custom interest."`
	Remove  InterestRemoveCmd  `cmd:"" help:"Remove a selected interest."`
}

type InterestCatalogCmd struct {
	Areas bool `help:"Group categories by area."`
}

func (c *InterestCatalogCmd) Run(ctx *cli.Context) error {
	if c.Areas {
		for _, area := range ctx.Interests.Areas() {
			fmt.Println(cli.HeaderStyle.Render(area.Name))
			for _, cat := range area.Categories {
				fmt.Printf("  %s %s\n", cat.Icon, cat.Name)
			}
		}
		return nil
	}

	for _, cat := range ctx.Interests.Catalog() {
		fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("%s %s", cat.Icon, cat.Name)))
		for _, sub := range cat.Subcategories {
			fmt.Printf("  %s %s\n", sub.Icon, sub.Name)
		}
	}
	return nil
}

type InterestListCmd struct{}

func (c *InterestListCmd) Run(ctx *cli.Context) error {
	list, err := ctx.Interests.List(context.Background(), ctx.Owner)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No interests selected. Use 'habitd interest select' to pick some.")
		return nil
	}
	for _, in := range list {
		fmt.Printf("%s %s %s\n", in.SubcategoryIcon, in.SubcategoryName,
			cli.MutedStyle.Render(fmt.Sprintf("(%s %s)", in.CategoryIcon, in.CategoryName)))
	}
	return nil
}

type InterestSelectCmd struct {
	Names []string `arg:"" optional:"" help:"Interest names. Omit to choose interactively."`
}

func (c *InterestSelectCmd) Run(ctx *cli.Context) error {
	names := c.Names
	if len(names) == 0 {
		var err error
		if names, err = chooseInterests(ctx); err != nil {
			return err
		}
	}

	list, err := ctx.Interests.Select(context.Background(), ctx.Owner, names)
	if err != nil {
		return err
	}
	fmt.Printf("%s Selected %d interests\n", cli.SuccessStyle.Render("✓"), len(list))
	return nil
}

func chooseInterests(ctx *cli.Context) ([]string, error) {
	var options []huh.Option[string]
	for _, entry := range ctx.Interests.Options() {
		label := fmt.Sprintf("%s %s  (%s)", entry.SubcategoryIcon, entry.Subcategory, entry.Category)
		options = append(options, huh.NewOption(label, entry.Subcategory))
	}

	var selected []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Choose your interests").
				Options(options...).
				Filterable(true).
				Height(15).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return nil, err
	}
	return selected, nil
}

type InterestManageCmd struct {
	Add    []string `short:"a" help:"Interests to add."`
	Remove []string `short:"r" help:"Interests to remove."`
}

func (c *InterestManageCmd) Run(ctx *cli.Context) error {
	list, err := ctx.Interests.Manage(context.Background(), ctx.Owner, c.Add, c.Remove)
	if err != nil {
		return err
	}
	fmt.Printf("%s Interests updated (%d selected)\n", cli.SuccessStyle.Render("✓"), len(list))
	return nil
}

type InterestCustomCmd struct {
	Name string `arg:"" help:"Custom interest name."`
	Icon string `help:"Optional emoji icon."`
}

func (c *InterestCustomCmd) Run(ctx *cli.Context) error {
	in, err := ctx.Interests.AddCustom(context.Background(), ctx.Owner, c.Name, c.Icon)
	if err != nil {
		return err
	}
	fmt.Printf("%s Added custom interest: %s %s\n", cli.SuccessStyle.Render("✓"), in.SubcategoryIcon, in.SubcategoryName)
	return nil
}

type InterestRemoveCmd struct {
	Interest string `arg:"" help:"Interest name or id."`
}

func (c *InterestRemoveCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	in, err := ctx.ResolveInterest(bg, c.Interest)
	if err != nil {
		return err
	}
	if err := ctx.Interests.Remove(bg, ctx.Owner, in.ID); err != nil {
		return err
	}

	msg := fmt.Sprintf("Removed interest: %s", in.SubcategoryName)
	if in.Custom {
		msg += " " + cli.MutedStyle.Render("(custom interest deleted)")
	}
	fmt.Println(msg)
	return nil
}
