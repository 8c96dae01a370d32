package noboiler

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// FileWatcher reports changes to a fixed set of files. The parent
// directories are watched so editors that save by rename are still seen.
//
// Notifications are coalesced: Changed holds at most one pending path and
// later changes are dropped until it is drained.
type FileWatcher struct {
	w       *fsnotify.Watcher
	files   map[string]struct{}
	changed chan string
	done    chan struct{}
	log     *slog.Logger
}

// WatchFiles starts watching paths.
func WatchFiles(paths []string, log *slog.Logger) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "noboiler: creating file watcher")
	}
	fw := &FileWatcher{
		w:       w,
		files:   make(map[string]struct{}, len(paths)),
		changed: make(chan string, 1),
		done:    make(chan struct{}),
		log:     OrNop(log),
	}
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return nil, errors.Wrapf(err, "noboiler: resolving %s", p)
		}
		fw.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, errors.Wrapf(err, "noboiler: watching %s", dir)
		}
	}
	go fw.run()
	return fw, nil
}

func (fw *FileWatcher) run() {
	defer close(fw.done)
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			if _, ok := fw.files[name]; !ok {
				continue
			}
			fw.log.Debug("noboiler: watched file changed", "path", name, "op", ev.Op.String())
			select {
			case fw.changed <- name:
			default:
			}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			fw.log.Warn("noboiler: file watcher error", "err", err)
		}
	}
}

// Changed delivers the path of a changed file.
func (fw *FileWatcher) Changed() <-chan string {
	return fw.changed
}

// Close stops watching and waits for the watcher goroutine to exit.
func (fw *FileWatcher) Close() error {
	err := fw.w.Close()
	<-fw.done
	return err
}
