package config

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/fleetmind/fleetmind/pkg/complexity"
)

// Watcher reloads the config file on change and publishes updated
// complexity limits, so admission control can tighten or loosen without a
// restart.
type Watcher struct {
	loader   *Loader
	watcher  *fsnotify.Watcher
	onLimits func(complexity.Limits)
	debounce time.Duration
	timer    *time.Timer
	stopCh   chan struct{}
}

// NewWatcher starts watching the loader's config file. onLimits is called
// with the new limits after each successful reload.
func NewWatcher(loader *Loader, onLimits func(complexity.Limits)) (*Watcher, error) {
	path, err := loader.Path()
	if err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(path); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	w := &Watcher{
		loader:   loader,
		watcher:  fsWatcher,
		onLimits: onLimits,
		debounce: 500 * time.Millisecond,
		stopCh:   make(chan struct{}),
	}
	go w.run()

	log.Info().Str("path", path).Msg("Config watcher started")
	return w, nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	return w.watcher.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.scheduleReload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Config watcher error")
		case <-w.stopCh:
			return
		}
	}
}

// scheduleReload debounces bursts of write events from editors.
func (w *Watcher) scheduleReload() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := w.loader.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Config reload failed, keeping previous limits")
		return
	}
	if err := cfg.Validate(); err != nil {
		log.Warn().Err(err).Msg("Reloaded config invalid, keeping previous limits")
		return
	}
	log.Info().
		Int("max_jobs", cfg.Limits.MaxJobs).
		Int("max_resources", cfg.Limits.MaxResources).
		Msg("Complexity limits reloaded")
	w.onLimits(cfg.Limits)
}
