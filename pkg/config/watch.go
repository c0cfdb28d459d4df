package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads config.toml whenever it is written, created or renamed into
// place and hands the result to onChange. Parse failures go to onError and
// the previous config stays in effect. The parent directory is watched so
// editors that replace the file atomically are picked up. Watch returns once
// the watcher is running; it stops when ctx is done.
func (c *Configer) Watch(ctx context.Context, onChange func(*Config), onError func(error)) error {
	if c.targetPath == "" {
		return errors.New("cannot watch empty target path")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}

	if err := w.Add(filepath.Dir(c.targetPath)); err != nil {
		w.Close()
		return fmt.Errorf("watching config dir: %w", err)
	}

	if onError == nil {
		onError = func(error) {}
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(c.targetPath) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}

				cfg, err := c.LoadConfig()
				if err != nil {
					onError(err)
					continue
				}
				onChange(cfg)

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				onError(err)
			}
		}
	}()

	return nil
}
