package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gnmweb/internal/common"
	"github.com/dmitrijs2005/gnmweb/internal/services"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and signs in. The password is wiped before
// returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer clear(password)

	id, err := a.auth.Login(ctx, &services.LoginForm{Email: email, Password: string(password)})
	if err != nil {
		notice, _ := services.LoginFailure(err)
		fmt.Fprintln(a.out, "Login failed:", notice)
		return err
	}

	a.forget()
	a.identity = id
	fmt.Fprintf(a.out, "Logged in as %s\n", id.DisplayName())
	return nil
}

// Logout ends the backend session and forgets the account locally even when
// the backend call fails.
func (a *App) Logout(ctx context.Context) error {
	err := a.auth.Logout(ctx)
	a.jar.Clear(common.BackendCookies...)
	a.forget()
	fmt.Fprintln(a.out, services.NoticeLoggedOut)
	return err
}

// Whoami asks the backend who is signed in and updates the prompt.
func (a *App) Whoami(ctx context.Context) error {
	s := a.resolver.Resolve(ctx)
	if !s.Authenticated() {
		a.forget()
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	a.identity = s.Identity
	role := "customer"
	switch {
	case s.Identity.IsSuperuser:
		role = "superuser"
	case s.Identity.IsStaff:
		role = "staff"
	}
	fmt.Fprintf(a.out, "%s <%s> %s\n", s.Identity.DisplayName(), s.Identity.Email, role)
	return nil
}
