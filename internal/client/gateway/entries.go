package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrijs2005/journal/internal/client/models"
)

// ListEntries returns all entries for the scope date. The caller replaces
// its collection wholesale with the result.
func (g *Gateway) ListEntries(ctx context.Context, date models.Date) ([]models.Entry, error) {
	q := url.Values{"date": {date.String()}}

	var entries []models.Entry
	if err := g.do(ctx, http.MethodGet, "/entries", q, nil, &entries, callOpts{}); err != nil {
		return nil, err
	}
	for i := range entries {
		if err := validateEntry(&entries[i]); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// CreateEntry persists a new entry. The server assigns the id and all
// timestamps; this call is the only way an entry acquires identity.
func (g *Gateway) CreateEntry(ctx context.Context, date models.Date, content string) (models.Entry, error) {
	body := map[string]string{"date": date.String(), "content": content}

	var e models.Entry
	if err := g.do(ctx, http.MethodPost, "/entries", nil, body, &e, callOpts{}); err != nil {
		return models.Entry{}, err
	}
	if err := validateEntry(&e); err != nil {
		return models.Entry{}, err
	}
	return e, nil
}

// UpdateEntry applies a partial update and returns the server's view of the
// entry afterwards.
func (g *Gateway) UpdateEntry(ctx context.Context, id string, patch models.EntryPatch) (models.Entry, error) {
	var e models.Entry
	if err := g.do(ctx, http.MethodPatch, "/entries/"+id, nil, patch, &e, callOpts{}); err != nil {
		return models.Entry{}, err
	}
	if err := validateEntry(&e); err != nil {
		return models.Entry{}, err
	}
	return e, nil
}

func (g *Gateway) DeleteEntry(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodDelete, "/entries/"+id, nil, nil, nil, callOpts{})
}

// ListEntryDates returns the month's calendar of dates that have entries.
func (g *Gateway) ListEntryDates(ctx context.Context, year int, month time.Month) ([]models.CalendarDay, error) {
	q := url.Values{
		"year":  {strconv.Itoa(year)},
		"month": {strconv.Itoa(int(month))},
	}

	var days []models.CalendarDay
	if err := g.do(ctx, http.MethodGet, "/entries/calendar", q, nil, &days, callOpts{}); err != nil {
		return nil, err
	}
	return days, nil
}

func validateEntry(e *models.Entry) error {
	if e.ID == "" {
		return fmt.Errorf("entry: %w: missing id", ErrBadPayload)
	}
	if _, err := models.ParseDate(e.Date.String()); err != nil {
		return fmt.Errorf("entry %s: %w: %v", e.ID, ErrBadPayload, err)
	}
	if e.WrittenAt.IsZero() {
		return fmt.Errorf("entry %s: %w: missing written_at", e.ID, ErrBadPayload)
	}
	return nil
}
