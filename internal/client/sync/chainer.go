package sync

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/journal/internal/client/models"
	"github.com/dmitrijs2005/journal/internal/logging"
)

// CompletionWindowDays is the trailing window scanned after a metrics save:
// the saved date itself plus the six days before it.
const CompletionWindowDays = 7

// MetricsLister is the slice of the gateway the chainer needs.
type MetricsLister interface {
	ListMetrics(ctx context.Context, from, to models.Date) ([]models.MetricSet, error)
}

// Prompter asks the user whether to fill in the next incomplete date. It is
// handed the remaining queue, most recent first; returning false discards
// the queue for this save event.
type Prompter interface {
	ConfirmBackfill(dates []models.Date) bool
}

// Navigator moves the UI to another date and opens its metrics input.
type Navigator interface {
	OpenMetrics(date models.Date)
}

// Chainer drives the "fill in missing data" flow: after a metrics save it
// scans the trailing window for dates with incomplete metric sets and walks
// the user through them one confirmation at a time.
type Chainer struct {
	mu       sync.Mutex
	lister   MetricsLister
	prompter Prompter
	nav      Navigator
	log      logging.Logger

	queue  []models.Date
	active bool
}

func NewChainer(lister MetricsLister, prompter Prompter, nav Navigator, log logging.Logger) *Chainer {
	return &Chainer{lister: lister, prompter: prompter, nav: nav, log: log}
}

// OnMetricsSaved runs after a metrics save for date d succeeded.
//
// When a backfill queue is already active, the save is one of its own
// steps: d is removed from the queue first, otherwise the chainer would
// re-prompt for the date it just saved, forever. With no active queue, a
// fresh scan of the trailing window produces a new queue and the initial
// prompt.
func (c *Chainer) OnMetricsSaved(ctx context.Context, d models.Date) {
	c.mu.Lock()
	if c.active {
		c.removeLocked(d)
		if len(c.queue) == 0 {
			c.active = false
			c.mu.Unlock()
			return
		}
		remaining := c.snapshotLocked()
		c.mu.Unlock()
		c.advance(remaining)
		return
	}
	c.mu.Unlock()

	missing, err := c.scanWindow(ctx, d)
	if err != nil {
		c.log.Warn(ctx, "completion scan failed", "date", d, "err", err)
		return
	}
	if len(missing) == 0 {
		return
	}

	c.mu.Lock()
	c.queue = missing
	c.active = true
	remaining := c.snapshotLocked()
	c.mu.Unlock()

	c.advance(remaining)
}

// scanWindow returns the dates in (d-6 .. d-1) whose metric sets are
// missing or incomplete, most recent first. d itself is excluded.
func (c *Chainer) scanWindow(ctx context.Context, d models.Date) ([]models.Date, error) {
	from := d.AddDays(-(CompletionWindowDays - 1))
	to := d.AddDays(-1)

	sets, err := c.lister.ListMetrics(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byDate := make(map[models.Date]*models.MetricSet, len(sets))
	for i := range sets {
		byDate[sets[i].Date] = &sets[i]
	}

	var missing []models.Date
	for i := 1; i < CompletionWindowDays; i++ {
		date := d.AddDays(-i)
		if !byDate[date].Complete() {
			missing = append(missing, date)
		}
	}
	return missing, nil
}

// advance runs one prompt round outside the lock, so a confirm that leads
// straight into another save cannot deadlock. Decline discards the queue;
// no re-prompt happens for the same save event.
func (c *Chainer) advance(remaining []models.Date) {
	if c.prompter.ConfirmBackfill(remaining) {
		c.nav.OpenMetrics(remaining[0])
		return
	}
	c.mu.Lock()
	c.queue = nil
	c.active = false
	c.mu.Unlock()
}

// SkipCurrent pops the current date without saving it and re-prompts for
// the next one, if any.
func (c *Chainer) SkipCurrent() {
	c.mu.Lock()
	if !c.active || len(c.queue) == 0 {
		c.mu.Unlock()
		return
	}
	c.queue = c.queue[1:]
	if len(c.queue) == 0 {
		c.active = false
		c.mu.Unlock()
		return
	}
	remaining := c.snapshotLocked()
	c.mu.Unlock()
	c.advance(remaining)
}

// Dismiss abandons any active queue.
func (c *Chainer) Dismiss() {
	c.mu.Lock()
	c.queue = nil
	c.active = false
	c.mu.Unlock()
}

func (c *Chainer) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Queue returns a copy of the pending dates, most recent first.
func (c *Chainer) Queue() []models.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Chainer) snapshotLocked() []models.Date {
	out := make([]models.Date, len(c.queue))
	copy(out, c.queue)
	return out
}

func (c *Chainer) removeLocked(d models.Date) {
	for i, q := range c.queue {
		if q == d {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return
		}
	}
}
