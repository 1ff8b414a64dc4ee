package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/quickdesk/helpdesk-client/internal/core/forms"
)

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := a.flags("login")
	passwordFile := fs.String("password-file", "", "read the password from this file instead of prompting")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return usagef("login [username] [--password-file path]")
	}

	form := forms.Login{}
	if fs.NArg() == 1 {
		form.Username = fs.Arg(0)
	} else {
		username, err := a.readLine("Username: ")
		if err != nil {
			return err
		}
		form.Username = strings.TrimSpace(username)
	}

	password, err := a.password(*passwordFile, "Password: ")
	if err != nil {
		return err
	}
	form.Password = password
	if err := forms.Validate(form); err != nil {
		return err
	}

	session, err := a.sessions.Login(ctx, form.Username, form.Password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.io.out, "Signed in as %s (%s)\n", session.User.FullName, roleLabel(session.Role()))
	return nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := a.flags("register")
	form := forms.Register{}
	fs.StringVar(&form.Username, "username", "", "account name")
	fs.StringVar(&form.Email, "email", "", "email address")
	fs.StringVar(&form.FullName, "full-name", "", "display name")
	passwordFile := fs.String("password-file", "", "read the password from this file instead of prompting")
	if err := parse(fs, args); err != nil {
		return err
	}

	password, err := a.password(*passwordFile, "Password: ")
	if err != nil {
		return err
	}
	form.Password = password
	if *passwordFile != "" {
		form.Confirm = password
	} else if form.Confirm, err = a.readSecret("Confirm password: "); err != nil {
		return err
	}
	if err := forms.Validate(form); err != nil {
		return err
	}

	session, err := a.sessions.Register(ctx, form.Input())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.io.out, "Account created. Signed in as %s\n", session.User.Username)
	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	if err := parse(a.flags("logout"), args); err != nil {
		return err
	}
	a.sessions.Logout(ctx)
	fmt.Fprintln(a.io.out, "Signed out")
	return nil
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	fs := a.flags("whoami")
	refresh := fs.Bool("refresh", false, "re-read the user record from the backend")
	if err := parse(fs, args); err != nil {
		return err
	}

	session, err := a.requireSession()
	if err != nil {
		return err
	}
	if *refresh {
		if session, err = a.sessions.RefreshUser(ctx); err != nil {
			return err
		}
	}

	u := session.User
	w := newTable(a.io.out)
	row(w, "Username", u.Username)
	row(w, "Name", u.FullName)
	row(w, "Email", u.Email)
	row(w, "Role", roleLabel(u.Role))
	if claims, err := a.sessions.Claims(); err == nil && !claims.ExpiresAt.IsZero() {
		state := "expires " + humanize.Time(claims.ExpiresAt)
		if claims.Expired(time.Now()) {
			state = "expired " + humanize.Time(claims.ExpiresAt)
		}
		row(w, "Token", state)
	}
	return w.Flush()
}

// password reads from path when given, otherwise prompts.
func (a *app) password(path, prompt string) (string, error) {
	if path == "" {
		return a.readSecret(prompt)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read password file: %w", err)
	}
	password := strings.TrimRight(string(data), "\r\n")
	if password == "" {
		return "", errors.New("password file is empty")
	}
	return password, nil
}
