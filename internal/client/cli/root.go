package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if a.engine.HasUnsavedChanges() {
		s = s + " *"
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Run starts the interactive session: an initial login prompt, the online
// status watcher, then the REPL until EOF or exit.
func (a *App) Run(ctx context.Context) {
	fmt.Println("Welcome to journal CLI (type 'help' for commands)")

	_ = a.Login(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)

	if a.engine.HasUnsavedChanges() {
		fmt.Println("Note: some changes were not saved.")
	}
}
