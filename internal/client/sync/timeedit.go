package sync

import (
	"fmt"
	"time"
)

// TimeEdit is the sub-state of an editable unit while its displayed
// written-at time is being changed. Entering snapshots the original
// timestamp; confirming recombines the edited clock time with the original
// calendar date; canceling discards everything without a save.
//
// A time edit on its own does not mark the unit dirty: only an explicit
// confirm produces a save.
type TimeEdit struct {
	active   bool
	original time.Time
	input    string
}

// Begin enters edit mode, snapshotting the current written-at value. The
// initial input is the original clock time, so confirming untouched input
// is a no-op save of the same value.
func (te *TimeEdit) Begin(original time.Time) {
	te.active = true
	te.original = original
	te.input = original.Format("15:04")
}

func (te *TimeEdit) Active() bool { return te.active }

// SetInput records the edited clock-time text ("15:04" or "15:04:05").
func (te *TimeEdit) SetInput(s string) {
	if te.active {
		te.input = s
	}
}

// Confirm leaves edit mode and returns the new written-at: the edited clock
// time recombined with the original calendar date and location. Unparsable
// input is an error and leaves edit mode with no change.
func (te *TimeEdit) Confirm() (time.Time, error) {
	if !te.active {
		return time.Time{}, fmt.Errorf("no time edit in progress")
	}
	te.active = false

	var clock time.Time
	var err error
	for _, layout := range []string{"15:04:05", "15:04"} {
		clock, err = time.Parse(layout, te.input)
		if err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", te.input, err)
	}

	o := te.original
	return time.Date(o.Year(), o.Month(), o.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, o.Location()), nil
}

// Cancel leaves edit mode, discarding the edit.
func (te *TimeEdit) Cancel() {
	te.active = false
	te.input = ""
}
