package locations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/antoine-paris/moontracker-sub002/internal/logging"
)

// reloadDebounce coalesces the burst of write events editors and atomic
// renames produce into a single reload.
const reloadDebounce = 250 * time.Millisecond

// LoadFile loads the directory from a CSV file on disk.
func (d *Directory) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("locations: open %q: %w", path, err)
	}
	defer f.Close()
	return d.LoadCSV(f)
}

// Watch reloads the directory whenever the CSV file at path changes. It
// watches the parent directory so atomic replace (write temp, rename) is
// seen too. Watch blocks until ctx is cancelled.
func (d *Directory) Watch(ctx context.Context, path string, log logging.Logger) error {
	if log == nil {
		log = logging.Noop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("locations: create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("locations: watch %q: %w", dir, err)
	}

	base := filepath.Base(path)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
				timerC = timer.C
			} else {
				timer.Reset(reloadDebounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			n, err := d.LoadFile(path)
			if err != nil {
				log.Warn(ctx, "location directory reload failed",
					logging.String("path", path),
					logging.String("error", err.Error()),
				)
				continue
			}
			log.Info(ctx, "location directory reloaded",
				logging.String("path", path),
				logging.Int("places", n),
			)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn(ctx, "location watcher error", logging.String("error", err.Error()))
		}
	}
}
