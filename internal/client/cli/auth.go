package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/dmitrijs2005/codelife/internal/client/api"
	"github.com/dmitrijs2005/codelife/internal/client/identity"
	"github.com/dmitrijs2005/codelife/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errPasswordMismatch = errors.New("passwords do not match")

// Register prompts for email and password (twice), creates the account and
// then offers to fill in country, state and university.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(os.Stdout, "Confirm password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		return errPasswordMismatch
	}

	var id *identity.Identity
	err = a.changingIdentity(func() error {
		var err error
		id, err = a.session.SignUp(ctx, email, string(password))
		return err
	})
	if err != nil {
		return err
	}
	a.printer.Success("Account created for %s", id.Email)

	update, err := a.askProfile(ctx)
	if err != nil {
		return err
	}
	if update == (api.ProfileUpdate{}) {
		return nil
	}
	if _, err := a.api.UpdateUserProfile(ctx, update); err != nil {
		return err
	}
	a.printer.Success("Profile saved")
	return nil
}

// askProfile walks the user through the optional sign-up details. Lookup
// failures only cost the suggestions, never the answer.
func (a *App) askProfile(ctx context.Context) (api.ProfileUpdate, error) {
	var p api.ProfileUpdate

	country, err := getSimpleText(a.reader, "Country (empty to skip, ? to list)", os.Stdout)
	if err != nil {
		return p, err
	}
	if country == "?" {
		if err := a.Countries(ctx); err != nil {
			a.printer.Warning("Country list unavailable: %v", err)
		}
		if country, err = getSimpleText(a.reader, "Country (empty to skip)", os.Stdout); err != nil {
			return p, err
		}
	}
	if country == "" {
		return p, nil
	}
	p.Country = country

	states, err := a.lookup.States(ctx, country)
	switch {
	case err != nil:
		a.printer.Warning("State list unavailable: %v", err)
	case len(states) > 0:
		a.printer.Info("States: %s", strings.Join(states, ", "))
	}
	if p.State, err = getSimpleText(a.reader, "State or province (empty to skip)", os.Stdout); err != nil {
		return p, err
	}

	unis, err := a.lookup.Universities(ctx, country)
	switch {
	case err != nil:
		a.printer.Warning("University list unavailable: %v", err)
	case len(unis) > 0:
		names := make([]string, 0, min(len(unis), 10))
		for _, u := range unis[:min(len(unis), 10)] {
			names = append(names, u.Name)
		}
		a.printer.Info("Universities: %s", strings.Join(names, "; "))
	}
	if p.University, err = getSimpleText(a.reader, "University (empty to skip)", os.Stdout); err != nil {
		return p, err
	}

	return p, nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	var id *identity.Identity
	err = a.changingIdentity(func() error {
		var err error
		id, err = a.session.SignIn(ctx, email, string(password))
		return err
	})
	if err != nil {
		return err
	}

	a.printer.Success("Signed in as %s", id.Email)
	if !id.EmailVerified {
		a.printer.Warning("Email address not verified yet")
	}
	return nil
}

// Logout ends the session here and at the identity service.
func (a *App) Logout(ctx context.Context) error {
	if err := a.changingIdentity(func() error { return a.session.SignOut(ctx) }); err != nil {
		return err
	}
	a.printer.Success("Signed out")
	return nil
}

// Whoami prints the identity held by the session.
func (a *App) Whoami(context.Context) error {
	id := a.session.Current()
	if id == nil {
		return identity.NotAuthenticated()
	}

	verified := "pending"
	if id.EmailVerified {
		verified = "verified"
	}
	a.printer.Print("Email: %s (%s)", id.Email, verified)
	a.printer.Print("UID:   %s", id.UID)
	return nil
}

// reportError shows err as a red notice. Expired sessions get a hint.
func (a *App) reportError(err error) {
	a.log.Debug(context.Background(), "command failed", "error", err)

	a.printer.Error("%v", err)
	if errors.Is(err, identity.ErrSessionExpired) {
		a.printer.Info("Type 'login' to sign in again.")
	}
}
