package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher reloads the permission policy section of the config file into a
// Store when the file changes on disk. The server list is intentionally not
// reloaded: capability server configs are immutable for the process.
type Watcher struct {
	configPath string
	store      *Store
	fsWatcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for the given config file.
func NewWatcher(configPath string, store *Store) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fs watcher: %w", err)
	}

	// Watch the directory rather than the file: editors replace files on
	// save, which would drop a file-level watch.
	if err := fsWatcher.Add(filepath.Dir(configPath)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	return &Watcher{
		configPath: configPath,
		store:      store,
		fsWatcher:  fsWatcher,
	}, nil
}

// Run processes file events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsWatcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Name != w.configPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Config watcher error")
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := NewLoader(w.configPath).Load()
	if err != nil {
		log.Warn().Err(err).Str("path", w.configPath).Msg("Config reload failed, keeping previous policy")
		return
	}

	w.store.ApplyPolicy(cfg.ToolCallPermission, cfg.ToolPermissions, cfg.VerboseToolCalls)

	log.Info().Str("path", w.configPath).Msg("Permission policy reloaded")
}
