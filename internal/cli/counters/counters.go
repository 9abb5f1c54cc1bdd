package counters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitd/internal/cli"
	"github.com/julianstephens/habitd/internal/constants"
	"github.com/julianstephens/habitd/internal/counters"
	"github.com/julianstephens/habitd/internal/errors"
)

type CounterCmd struct {
	Add    CounterAddCmd    `cmd:"" help:"Start a new counter."`
	List   CounterListCmd   `cmd:"" help:"List counters." default:"1"`
	Edit   CounterEditCmd   `cmd:"" help:"Edit a counter."`
	Reset  CounterResetCmd  `cmd:"" help:"Restart a counter from now."`
	Delete CounterDeleteCmd `cmd:"" help:"Delete a counter."`
}

type CounterAddCmd struct {
	Name        string `arg:"" help:"Counter name."`
	Description string `help:"Optional description."`
	Icon        string `help:"Optional emoji icon."`
	Since       string `help:"Start day (YYYY-MM-DD). Defaults to now."`
}

func (c *CounterAddCmd) Run(ctx *cli.Context) error {
	startedAt, err := parseSince(c.Since)
	if err != nil {
		return err
	}
	view, err := ctx.Counters.Create(context.Background(), ctx.Owner, counters.Input{
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
		StartedAt:   startedAt,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s Started counter: %s [%s]\n", cli.SuccessStyle.Render("✓"), view.Name, cli.ShortID(view.ID))
	return nil
}

type CounterListCmd struct{}

func (c *CounterListCmd) Run(ctx *cli.Context) error {
	list, err := ctx.Counters.List(context.Background(), ctx.Owner)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No counters found.")
		return nil
	}
	for _, v := range list {
		icon := v.Icon
		if icon == "" {
			icon = "⏱"
		}
		fmt.Printf("%s %s  %s %s\n", icon, v.Name, FormatElapsed(v), cli.MutedStyle.Render(cli.ShortID(v.ID)))
	}
	return nil
}

type CounterEditCmd struct {
	Counter     string `arg:"" help:"Counter name or id."`
	Name        string `help:"New name."`
	Description string `help:"New description."`
	Icon        string `help:"New icon."`
	Since       string `help:"New start day (YYYY-MM-DD)."`
}

func (c *CounterEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	current, err := resolveCounter(bg, ctx, c.Counter)
	if err != nil {
		return err
	}
	startedAt, err := parseSince(c.Since)
	if err != nil {
		return err
	}

	in := counters.Input{Name: current.Name, Description: current.Description, Icon: current.Icon, StartedAt: startedAt}
	if c.Name != "" {
		in.Name = c.Name
	}
	if c.Description != "" {
		in.Description = c.Description
	}
	if c.Icon != "" {
		in.Icon = c.Icon
	}

	view, err := ctx.Counters.Update(bg, ctx.Owner, current.ID, in)
	if err != nil {
		return err
	}
	fmt.Printf("%s Updated counter: %s\n", cli.SuccessStyle.Render("✓"), view.Name)
	return nil
}

type CounterResetCmd struct {
	Counter string `arg:"" help:"Counter name or id."`
}

func (c *CounterResetCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	current, err := resolveCounter(bg, ctx, c.Counter)
	if err != nil {
		return err
	}
	if _, err := ctx.Counters.Reset(bg, ctx.Owner, current.ID); err != nil {
		return err
	}
	fmt.Printf("Reset counter: %s (was %s)\n", current.Name, FormatElapsed(current))
	return nil
}

type CounterDeleteCmd struct {
	Counter string `arg:"" help:"Counter name or id."`
}

func (c *CounterDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	current, err := resolveCounter(bg, ctx, c.Counter)
	if err != nil {
		return err
	}
	if err := ctx.Counters.Delete(bg, ctx.Owner, current.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted counter: %s\n", current.Name)
	return nil
}

// FormatElapsed renders a counter's elapsed time as "3d 4h 12m"
func FormatElapsed(v counters.View) string {
	d := time.Duration(v.ElapsedSeconds) * time.Second
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dd %dh %dm", v.Days, hours, minutes)
}

func parseSince(since string) (time.Time, error) {
	if since == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(constants.DateFormat, since, time.Local)
	if err != nil {
		return time.Time{}, errors.Newf(errors.InvalidArgument, "invalid date %q, expected YYYY-MM-DD", since)
	}
	return t, nil
}

func resolveCounter(bg context.Context, ctx *cli.Context, ref string) (counters.View, error) {
	list, err := ctx.Counters.List(bg, ctx.Owner)
	if err != nil {
		return counters.View{}, err
	}
	ref = strings.TrimSpace(ref)
	for _, v := range list {
		if v.ID == ref || strings.EqualFold(v.Name, ref) || (len(ref) >= 4 && strings.HasPrefix(v.ID, ref)) {
			return v, nil
		}
	}
	return counters.View{}, errors.Newf(errors.NotFound, "counter %q not found", ref)
}
