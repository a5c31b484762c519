package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Open(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Write(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Time(ctx context.Context, args []string) error
	Refresh(ctx context.Context) error
	Calendar(ctx context.Context, args []string) error
	Metrics(ctx context.Context, args []string) error
	Fill(ctx context.Context, args []string) error
}

// runREPL starts a simple read–eval–print loop for the journal CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - open [date]    — open a date (default today)
//	  - (l)ist         — list the open date's entries
//	  - (w)rite        — write a new entry
//	  - edit <n>       — edit entry n from the listing
//	  - delete <n>     — delete entry n
//	  - time <n>       — change entry n's written-at time
//	  - refresh        — re-fetch the open date
//	  - calendar       — month overview of dates with entries
//	  - metrics [date] — show the day's metrics
//	  - fill [date]    — fill in the day's metrics
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// print their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("journal %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: open [date], (l)ist, (w)rite, edit <n>, delete <n>, time <n>, refresh, calendar, metrics [date], fill [date], logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "open":
			_ = a.Open(ctx, args)

		case "l", "list":
			_ = a.List(ctx)

		case "w", "write":
			_ = a.Write(ctx)

		case "edit":
			_ = a.Edit(ctx, args)

		case "delete":
			_ = a.Delete(ctx, args)

		case "time":
			_ = a.Time(ctx, args)

		case "refresh":
			_ = a.Refresh(ctx)

		case "calendar":
			_ = a.Calendar(ctx, args)

		case "metrics":
			_ = a.Metrics(ctx, args)

		case "fill":
			_ = a.Fill(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
