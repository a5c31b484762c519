package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/journal/internal/common"
)

// Login prompts for credentials and authenticates. The password bytes are
// wiped once the request has been sent.
func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username:", os.Stdout)
	if err != nil {
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.gw.Login(ctx, username, password); err != nil {
		fmt.Printf("Login failed: %v\n", err)
		return err
	}

	a.userName = username
	a.setMode(ModeOnline)
	fmt.Println("Logged in.")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if a.engine.HasUnsavedChanges() {
		fmt.Println("Warning: unsaved changes will be lost.")
	}
	a.gw.Logout()
	a.userName = ""
	a.listing = nil
	fmt.Println("Logged out.")
	return nil
}
