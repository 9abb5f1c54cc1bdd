package habits

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitd/internal/cli"
	"github.com/julianstephens/habitd/internal/habits"
	"github.com/julianstephens/habitd/internal/models"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	Edit   HabitEditCmd   `cmd:"" help:"Edit an active habit."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit with no recorded progress."`
	Done   HabitDoneCmd   `cmd:"" help:"Mark a habit as done for today."`
	Streak HabitStreakCmd `cmd:"" help:"Show the current streak of a habit."`
	List   HabitListCmd   `cmd:"" help:"List habits." default:"1"`
	Tree   HabitTreeCmd   `cmd:"" help:"Show habits grouped by category."`
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Days        int    `short:"d" required:"" help:"Target number of consecutive days."`
	Description string `help:"Optional description."`
	Icon        string `help:"Optional emoji icon."`
	Interest    string `short:"i" help:"Interest (subcategory) to file the habit under."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	in := habits.Input{
		Name:         c.Name,
		Description:  c.Description,
		Icon:         c.Icon,
		DurationDays: c.Days,
	}
	if c.Interest != "" {
		subID, err := ctx.ResolveSubcategory(bg, c.Interest)
		if err != nil {
			return err
		}
		in.SubcategoryID = subID
	}

	habit, err := ctx.Habits.Create(bg, ctx.Owner, in)
	if err != nil {
		return err
	}
	fmt.Printf("%s Added habit: %s (%d days) [%s]\n", cli.SuccessStyle.Render("✓"), habit.Name, habit.DurationDays, cli.ShortID(habit.ID))
	return nil
}

type HabitEditCmd struct {
	Habit       string `arg:"" help:"Habit name or id."`
	Name        string `help:"New name."`
	Days        int    `short:"d" help:"New target days (only before the habit has started)."`
	Description string `help:"New description."`
	Icon        string `help:"New icon."`
	Interest    string `short:"i" help:"New interest (subcategory)."`
	Unfile      bool   `help:"Remove the category and subcategory link."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	current, err := ctx.ResolveHabit(bg, c.Habit)
	if err != nil {
		return err
	}

	in := habits.Input{
		Name:          current.Name,
		Description:   current.Description,
		CategoryID:    current.CategoryID,
		SubcategoryID: current.SubcategoryID,
		Icon:          current.Icon,
		DurationDays:  current.DurationDays,
	}
	if c.Name != "" {
		in.Name = c.Name
	}
	if c.Days != 0 {
		in.DurationDays = c.Days
	}
	if c.Description != "" {
		in.Description = c.Description
	}
	if c.Icon != "" {
		in.Icon = c.Icon
	}
	if c.Unfile {
		in.CategoryID, in.SubcategoryID = "", ""
	}
	if c.Interest != "" {
		subID, err := ctx.ResolveSubcategory(bg, c.Interest)
		if err != nil {
			return err
		}
		in.CategoryID, in.SubcategoryID = "", subID
	}

	habit, err := ctx.Habits.Edit(bg, ctx.Owner, current.ID, in)
	if err != nil {
		return err
	}
	fmt.Printf("%s Updated habit: %s\n", cli.SuccessStyle.Render("✓"), habit.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	habit, err := ctx.ResolveHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Habits.Delete(bg, ctx.Owner, habit.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted habit: %s\n", habit.Name)
	return nil
}

type HabitDoneCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitDoneCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	habit, err := ctx.ResolveHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	completion, err := ctx.Habits.MarkDone(bg, ctx.Owner, habit.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Marked habit %q for %s\n", habit.Name, completion.Day)
	fmt.Printf("  %s\n", cli.ProgressBar(completion.Streak, habit.DurationDays, 20))
	if completion.Done {
		fmt.Println(cli.SuccessStyle.Render("🎉 Habit completed!"))
	}
	return nil
}

type HabitStreakCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitStreakCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	habit, err := ctx.ResolveHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	current, err := ctx.Habits.CurrentStreak(bg, ctx.Owner, habit.ID)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d day streak\n", habit.Name, current)
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	list, err := ctx.Habits.List(context.Background(), ctx.Owner)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, h := range list {
		printHabit("", h)
	}
	return nil
}

type HabitTreeCmd struct{}

func (c *HabitTreeCmd) Run(ctx *cli.Context) error {
	tree, err := ctx.Habits.ListTree(context.Background(), ctx.Owner)
	if err != nil {
		return err
	}
	if len(tree.Categories) == 0 && len(tree.Uncategorized) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, cat := range tree.Categories {
		fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("%s %s", cat.Icon, cat.Name)))
		for _, h := range cat.Habits {
			printHabit("  ", h)
		}
		for _, sub := range cat.Subcategories {
			fmt.Printf("  %s %s\n", sub.Icon, sub.Name)
			for _, h := range sub.Habits {
				printHabit("    ", h)
			}
		}
	}
	if len(tree.Uncategorized) > 0 {
		fmt.Println(cli.HeaderStyle.Render("Uncategorized"))
		for _, h := range tree.Uncategorized {
			printHabit("  ", h)
		}
	}
	return nil
}

func printHabit(indent string, h models.HabitWithStreak) {
	status := ""
	if h.Done {
		status = " " + cli.SuccessStyle.Render("[DONE]")
	}
	icon := h.Icon
	if icon == "" {
		icon = "•"
	}
	fmt.Printf("%s%s %s %s%s %s\n", indent, icon, h.Name,
		cli.ProgressBar(h.CurrentStreak, h.DurationDays, 10), status,
		cli.MutedStyle.Render(cli.ShortID(h.ID)))
}
