package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"shellgate/internal/gate"
	"shellgate/internal/rules"
)

// Reloader watches the rules file for changes and hot-reloads the gate.
type Reloader struct {
	watcher   *fsnotify.Watcher
	gate      *gate.Gate
	rulesPath string
	logger    *slog.Logger
}

// NewReloader creates a file watcher for the given rules file. A missing
// or empty path returns (nil, nil): nothing to watch.
func NewReloader(g *gate.Gate, rulesPath string, logger *slog.Logger) (*Reloader, error) {
	if rulesPath == "" {
		return nil, nil
	}
	if _, err := os.Stat(rulesPath); err != nil {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(rulesPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", rulesPath, err)
	}

	return &Reloader{
		watcher:   watcher,
		gate:      g,
		rulesPath: rulesPath,
		logger:    logger,
	}, nil
}

// Run watches for file changes and reloads rules. Blocks until ctx is
// cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Debounce: wait 500ms after last write before reloading
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, r.reload)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("file watcher error", "error", err)
		}
	}
}

// reload re-reads the rules file and swaps it into the gate. A rules
// file that fails to parse keeps the previous rules active.
func (r *Reloader) reload() {
	loaded, err := rules.Load(r.rulesPath)
	if err != nil {
		r.logger.Error("rules hot-reload failed", "path", r.rulesPath, "error", err)
		return
	}
	if err := r.gate.ReloadRules(loaded); err != nil {
		r.logger.Error("rules hot-reload failed", "path", r.rulesPath, "error", err)
		return
	}
	r.logger.Info("rules hot-reloaded", "path", r.rulesPath)
}
