package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/journal/internal/client/config"
	"github.com/dmitrijs2005/journal/internal/client/gateway"
	"github.com/dmitrijs2005/journal/internal/client/models"
	"github.com/dmitrijs2005/journal/internal/client/session"
	"github.com/dmitrijs2005/journal/internal/client/sync"
	"github.com/dmitrijs2005/journal/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App wires the journal client together: gateway, sync engine, completion
// chainer, and the terminal I/O around them.
type App struct {
	config  *config.Config
	log     logging.Logger
	gw      *gateway.Gateway
	engine  *sync.Engine
	chainer *sync.Chainer

	userName string
	Mode     Mode
	reader   *bufio.Reader

	// listing holds the entries as last printed, so commands can address
	// them by index.
	listing []models.Entry
}

func NewApp(c *config.Config, log logging.Logger) *App {
	a := &App{
		config: c,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
	}

	a.gw = gateway.New(c.ServerURL, session.New(), log, c.RequestTimeout)
	a.engine = sync.NewEngine(a.gw, log, sync.Options{
		DebounceInterval: c.DebounceInterval,
		OnSaveError: func(unitID string, err error) {
			fmt.Printf("save rejected: %v\n", err)
		},
	})
	a.chainer = sync.NewChainer(a.gw, a, a, log)
	return a
}

func (a *App) isLoggedIn() bool {
	return a.gw.Session().Authenticated()
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		fmt.Printf("Switched to %s mode\n", mode)
	}
}

// StartOnlineStatusWatcher probes server liveness on the configured interval
// and flips the online/offline indicator.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.gw.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// ConfirmBackfill implements sync.Prompter: it lists the incomplete dates
// and asks whether to walk through them.
func (a *App) ConfirmBackfill(dates []models.Date) bool {
	fmt.Printf("Metrics are missing or incomplete for %d day(s): ", len(dates))
	for i, d := range dates {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Print(d)
	}
	fmt.Println()

	answer, err := GetSimpleText(a.reader, "Fill in "+dates[0].String()+" now? (y/n)", os.Stdout)
	if err != nil {
		return false
	}
	return answer == "y" || answer == "yes"
}

// OpenMetrics implements sync.Navigator: the chainer steers the flow to the
// next incomplete date's metrics form.
func (a *App) OpenMetrics(date models.Date) {
	a.fillMetricsFor(context.Background(), date)
}
