package cli

import (
	"context"
	"os"

	"github.com/dmitrijs2005/codelife/internal/client/api"
)

// Profile prints every field the backend keeps for the user.
func (a *App) Profile(ctx context.Context) error {
	v, err := a.api.GetUserProfile(ctx)
	if err != nil {
		return err
	}

	m := asMap(v)
	a.printer.Header("Profile")
	for _, k := range sortedKeys(m) {
		a.printer.Print("%-16s %s", k+":", str(m, k))
	}
	return nil
}

// ProfileSet edits the profile interactively. Empty answers keep the
// current value.
func (a *App) ProfileSet(ctx context.Context) error {
	var p api.ProfileUpdate
	var err error

	if p.DisplayName, err = getSimpleText(a.reader, "Display name (empty to keep)", os.Stdout); err != nil {
		return err
	}

	location, err := a.askProfile(ctx)
	if err != nil {
		return err
	}
	p.Country, p.State, p.University = location.Country, location.State, location.University

	if p.Bio, err = GetMultiline(a.reader, "Bio (empty to keep)", os.Stdout); err != nil {
		return err
	}

	if p == (api.ProfileUpdate{}) {
		a.printer.Info("Nothing to update.")
		return nil
	}

	if _, err := a.api.UpdateUserProfile(ctx, p); err != nil {
		return err
	}
	a.printer.Success("Profile updated")
	return nil
}
