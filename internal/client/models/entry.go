// Package models defines the journal domain types exchanged with the
// persistence API. Identity is assigned exclusively by the server: an entry
// without an ID exists only as local draft state.
package models

import (
	"strings"
	"time"
)

// Entry is one journal entry as last confirmed by the server.
//
// WrittenAt is the user-editable "as of" time used for display ordering;
// CreatedAt and UpdatedAt are server bookkeeping and never edited locally.
type Entry struct {
	ID        string    `json:"id"`
	Date      Date      `json:"date"`
	Content   string    `json:"content"`
	WrittenAt time.Time `json:"written_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryPatch is a partial update for an entry. Nil fields are left untouched
// by the server.
type EntryPatch struct {
	Content   *string    `json:"content,omitempty"`
	WrittenAt *time.Time `json:"written_at,omitempty"`
}

// CalendarDay reports whether a date has at least one entry, for month
// overviews.
type CalendarDay struct {
	Date     Date `json:"date"`
	HasEntry bool `json:"hasEntry"`
}

// NormalizeContent trims the whitespace that the editor pads around entry
// text. Content that normalizes to "" on save is an implicit delete request.
func NormalizeContent(s string) string {
	return strings.TrimSpace(s)
}
