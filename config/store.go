package config

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/xackery/replyquote/tlog"
)

// Store holds the active config, reloading it when the file changes
type Store struct {
	path string
	mu   sync.RWMutex
	cfg  *Config
}

// NewStore creates a store seeded with cfg, loaded from path
func NewStore(path string, cfg *Config) *Store {
	return &Store{
		path: path,
		cfg:  cfg,
	}
}

// Config returns a copy of the active config
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.cfg
}

// ReplyTemplate returns the active reply template
func (s *Store) ReplyTemplate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Template()
}

// Reload reads the config file again, applying its debug level. On failure, the active config is kept
func (s *Store) Reload() error {
	cfg, err := Load(s.path)
	if err != nil {
		return errors.Wrap(err, "reload")
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// Watch reloads the config whenever its file is written, until ctx is done
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "newwatcher")
	}
	defer watcher.Close()

	// editors often replace the file instead of writing it, so the directory is watched
	err = watcher.Add(filepath.Dir(s.path))
	if err != nil {
		return errors.Wrap(err, "watcheradd")
	}
	target := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			tlog.Debugf("[config] %s modified, reloading", s.path)
			err = s.Reload()
			if err != nil {
				tlog.Warnf("[config] failed to reload %s: %s", s.path, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			tlog.Warnf("[config] watch %s: %s", s.path, err)
		}
	}
}
