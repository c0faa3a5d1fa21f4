package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Watcher re-runs the feed search on a fixed interval for the CLI watch
// mode. It never re-resolves the position; that stays an explicit action.
type Watcher struct {
	cron *cron.Cron
	ctrl *Controller
	spec string
	log  zerolog.Logger
}

func NewWatcher(ctrl *Controller, interval time.Duration, log zerolog.Logger) *Watcher {
	return &Watcher{
		cron: cron.New(),
		ctrl: ctrl,
		spec: fmt.Sprintf("@every %s", interval),
		log:  log.With().Str("component", "watcher").Logger(),
	}
}

// Start registers the refresh job and starts the scheduler. The first search
// is the controller's Start, not a watcher tick.
func (w *Watcher) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(w.spec, func() {
		w.log.Debug().Msg("refreshing feed")
		w.ctrl.Refresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	w.cron.Start()
	w.log.Info().Str("spec", w.spec).Msg("watch started")
	return nil
}

// Stop shuts the scheduler down and waits for a running tick to finish.
func (w *Watcher) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.log.Info().Msg("watch stopped")
}
