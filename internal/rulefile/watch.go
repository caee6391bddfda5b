package rulefile

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"vitals-monitor/internal/vitals"
)

// Watch reloads path whenever it is written or replaced and passes the new
// definitions to onChange. It runs until ctx is cancelled. A file that fails
// to load is logged and skipped; onChange is not called for it.
//
// The parent directory is watched rather than the file, so saves that rename
// a temporary file over path keep being seen.
func Watch(ctx context.Context, path string, onChange func([]vitals.Def)) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("watching rules file")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			// a rename onto path arrives as Create
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			defs, err := Load(path)
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("rules reload failed; keeping previous rules")
				continue
			}
			log.Info().Str("path", path).Int("rules", len(defs)).Msg("rules file reloaded")
			onChange(defs)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("rules watcher error")
		}
	}
}
