// Package janitor drives age-based eviction of session contexts. The
// store itself never expires entries; this is the periodic caller that
// decides the cadence.
package janitor

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/fleetmind/fleetmind/pkg/contextstore"
)

// Janitor periodically evicts stale session contexts.
type Janitor struct {
	store    *contextstore.Store
	maxAge   time.Duration
	schedule string
	cron     *cron.Cron
}

// New creates a janitor sweeping on the given cron schedule.
func New(store *contextstore.Store, schedule string, maxAge time.Duration) *Janitor {
	return &Janitor{
		store:    store,
		maxAge:   maxAge,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start schedules the sweep. The first sweep happens on schedule, not
// immediately; a fresh process has nothing to evict.
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.sweep); err != nil {
		return err
	}
	j.cron.Start()
	log.Info().
		Str("schedule", j.schedule).
		Dur("max_age", j.maxAge).
		Msg("Session janitor started")
	return nil
}

// Stop stops the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Session janitor stopped")
}

func (j *Janitor) sweep() {
	removed := j.store.EvictOlderThan(j.maxAge)
	log.Debug().Int("removed", removed).Msg("Eviction sweep complete")
}
