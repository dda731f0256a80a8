package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"go.viam.com/forcefeedback/force"
	"go.viam.com/forcefeedback/logging"
)

// ReadModes reads a mode file.
func ReadModes(path string) (force.ModeState, error) {
	var state force.ModeState
	//nolint:gosec
	buf, err := os.ReadFile(path)
	if err != nil {
		return state, err
	}
	if err := json.Unmarshal(buf, &state); err != nil {
		return state, errors.Wrapf(err, "cannot parse modes %q", path)
	}
	return state, nil
}

// WatchModes applies the mode file to modes now and every time it changes, until ctx is done.
// Unreadable contents are logged and the previous modes are kept.
func WatchModes(ctx context.Context, path string, modes *force.Modes, logger logging.Logger) error {
	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Debugw("cannot close watcher", "error", err)
		}
	}()
	// editors replace files, so watch the directory
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.Wrapf(err, "cannot watch %q", path)
	}

	apply := func() {
		state, err := ReadModes(path)
		if err != nil {
			logger.Warnw("cannot apply modes", "path", path, "error", err)
			return
		}
		modes.Apply(state)
		logger.Infow("modes applied", "full_force", state.FullForce, "boundary_only", state.BoundaryOnly,
			"game_started", state.GameStarted, "ceiling_height_m", modes.State().CeilingHeight)
	}
	if _, err := os.Stat(path); err == nil {
		apply()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			apply()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("mode watcher error", "error", err)
		}
	}
}
