package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/codelife/internal/output"
)

// Countries prints the country names known to the reference service.
func (a *App) Countries(ctx context.Context) error {
	names, err := a.lookup.Countries(ctx)
	if err != nil {
		return err
	}
	a.printer.Print("%s", strings.Join(names, ", "))
	a.printer.Info("%d countries", len(names))
	return nil
}

func (a *App) States(ctx context.Context, country string) error {
	states, err := a.lookup.States(ctx, country)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		a.printer.Info("No states listed for %s.", country)
		return nil
	}
	a.printer.Print("%s", strings.Join(states, ", "))
	return nil
}

func (a *App) Universities(ctx context.Context, country string) error {
	unis, err := a.lookup.Universities(ctx, country)
	if err != nil {
		return err
	}
	if len(unis) == 0 {
		a.printer.Info("No universities listed for %s.", country)
		return nil
	}

	t := output.NewTable(a.printer.Out(), []string{"university", "state", "website"})
	for _, u := range unis {
		state := ""
		if u.State != nil {
			state = *u.State
		}
		site := ""
		if len(u.WebPages) > 0 {
			site = u.WebPages[0]
		}
		t.AddRow(u.Name, state, site)
	}
	return t.Render()
}
