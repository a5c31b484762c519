package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/journal/internal/client/models"
)

// Open switches the viewed date and loads its entries. The argument is a
// YYYY-MM-DD date or "today"; no argument means today.
func (a *App) Open(ctx context.Context, args []string) error {
	date := models.Today()
	if len(args) > 0 && args[0] != "today" {
		parsed, err := models.ParseDate(args[0])
		if err != nil {
			fmt.Println("Usage: open [YYYY-MM-DD|today]")
			return err
		}
		date = parsed
	}

	if err := a.engine.OpenDate(ctx, date); err != nil {
		fmt.Printf("Could not load %s: %v\n", date, err)
		return err
	}
	return a.List(ctx)
}

// List prints the viewed date's entries, oldest first, plus the draft row
// when it renders.
func (a *App) List(ctx context.Context) error {
	if a.engine.Date() == "" {
		fmt.Println("No date open. Use: open [YYYY-MM-DD|today]")
		return nil
	}

	a.listing = a.engine.VisibleEntries()
	fmt.Printf("--- %s ---\n", a.engine.Date())
	for i, e := range a.listing {
		fmt.Printf("[%d] %s  %s\n", i+1, e.WrittenAt.Local().Format("15:04"), e.Content)
	}
	if a.engine.DraftRowVisible() {
		fmt.Printf("[*] (draft) %s\n", a.engine.Draft().Content())
	}
	if len(a.listing) == 0 && !a.engine.DraftRowVisible() {
		fmt.Println("(no entries)")
	}
	return nil
}

// Write reads a new entry body and saves it through the draft.
func (a *App) Write(ctx context.Context) error {
	if a.engine.Date() == "" {
		fmt.Println("No date open. Use: open [YYYY-MM-DD|today]")
		return nil
	}

	content, err := GetMultiline(a.reader, "New entry:", os.Stdout)
	if err != nil {
		return err
	}
	if content == "" {
		fmt.Println("Nothing written.")
		return nil
	}

	a.engine.EditDraft(content)
	a.engine.SaveDraftNow()
	if id := a.engine.Draft().EntryID(); id == "" {
		fmt.Println("Entry not saved; it stays as a draft. Retry with 'write' or check the connection.")
		return nil
	}
	return a.List(ctx)
}

// Edit replaces the body of the entry at the given listing index.
func (a *App) Edit(ctx context.Context, args []string) error {
	e, ok := a.pickEntry(args, "edit")
	if !ok {
		return nil
	}

	fmt.Printf("Current content:\n%s\n", e.Content)
	content, err := GetMultiline(a.reader, "New content (empty deletes the entry):", os.Stdout)
	if err != nil {
		return err
	}

	a.engine.SaveEntryNow(e.ID, content)
	return a.List(ctx)
}

// Delete removes the entry at the given listing index.
func (a *App) Delete(ctx context.Context, args []string) error {
	e, ok := a.pickEntry(args, "delete")
	if !ok {
		return nil
	}

	if err := a.engine.DeleteEntry(ctx, e.ID); err != nil {
		fmt.Printf("Delete failed: %v\n", err)
		return err
	}
	return a.List(ctx)
}

// Time changes the written-at clock time of the entry at the given index.
func (a *App) Time(ctx context.Context, args []string) error {
	e, ok := a.pickEntry(args, "time")
	if !ok {
		return nil
	}

	if !a.engine.BeginTimeEdit(e.ID) {
		fmt.Println("Entry not editable.")
		return nil
	}

	input, err := GetSimpleText(a.reader, fmt.Sprintf("New time for [%s] (HH:MM, empty to cancel):", e.WrittenAt.Local().Format("15:04")), os.Stdout)
	if err != nil || input == "" {
		a.engine.CancelTimeEdit(e.ID)
		return err
	}

	a.engine.SetTimeEditInput(e.ID, input)
	if err := a.engine.ConfirmTimeEdit(e.ID); err != nil {
		fmt.Printf("Invalid time: %v\n", err)
		return err
	}
	return a.List(ctx)
}

// Refresh re-fetches the viewed date from the server.
func (a *App) Refresh(ctx context.Context) error {
	if a.engine.Date() == "" {
		return nil
	}
	if err := a.engine.Refresh(ctx); err != nil {
		fmt.Printf("Refresh failed: %v\n", err)
		return err
	}
	return a.List(ctx)
}

// Calendar prints which days of a month have entries. Defaults to the
// current month.
func (a *App) Calendar(ctx context.Context, args []string) error {
	now := time.Now()
	year, month := now.Year(), now.Month()
	if len(args) >= 2 {
		y, errY := strconv.Atoi(args[0])
		m, errM := strconv.Atoi(args[1])
		if errY != nil || errM != nil || m < 1 || m > 12 {
			fmt.Println("Usage: calendar [year month]")
			return nil
		}
		year, month = y, time.Month(m)
	}

	days, err := a.gw.ListEntryDates(ctx, year, month)
	if err != nil {
		fmt.Printf("Calendar failed: %v\n", err)
		return err
	}

	fmt.Printf("--- %s %d ---\n", month, year)
	for _, d := range days {
		marker := " "
		if d.HasEntry {
			marker = "x"
		}
		fmt.Printf("%s [%s]\n", d.Date, marker)
	}
	return nil
}

// pickEntry resolves a 1-based listing index argument against the last
// printed listing.
func (a *App) pickEntry(args []string, cmd string) (models.Entry, bool) {
	if len(args) == 0 {
		fmt.Printf("Usage: %s <n> (run 'list' to see indexes)\n", cmd)
		return models.Entry{}, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(a.listing) {
		fmt.Printf("No entry [%s]. Run 'list' to see indexes.\n", args[0])
		return models.Entry{}, false
	}
	return a.listing[n-1], true
}
