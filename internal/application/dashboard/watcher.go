package dashboard

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/data/scanner"
	"github.com/penwyp/go-health-dashboard/internal/util"
)

// FileWatcher reports changes to export files under a set of directories.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	paths   []string
	events  chan model.FileEvent
	done    chan struct{}
}

func NewFileWatcher(paths []string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher: watcher,
		paths:   paths,
		events:  make(chan model.FileEvent, 100),
		done:    make(chan struct{}),
	}

	for _, path := range paths {
		if err := fw.addPath(path); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}

	go fw.processEvents()

	return fw, nil
}

func (fw *FileWatcher) addPath(path string) error {
	// Recursively add directories
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return fw.watcher.Add(p)
		}
		return nil
	})
}

func (fw *FileWatcher) processEvents() {
	defer close(fw.events)
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// New patient directories need their own watch. Exports moved in
			// with the directory produce no events of their own.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addPath(event.Name); err != nil {
						util.LogWarnf("Failed to watch %s: %v", event.Name, err)
					}
					for _, path := range exportFiles(event.Name) {
						if !fw.emit(model.FileEvent{Path: path, Operation: fsnotify.Create.String()}) {
							return
						}
					}
					continue
				}
			}

			if !scanner.IsExportFile(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}

			if !fw.emit(model.FileEvent{Path: event.Name, Operation: event.Op.String()}) {
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("File monitoring error: " + err.Error())

		case <-fw.done:
			return
		}
	}
}

// emit forwards an event; false means the watcher is closing.
func (fw *FileWatcher) emit(event model.FileEvent) bool {
	select {
	case fw.events <- event:
		return true
	case <-fw.done:
		return false
	}
}

func exportFiles(dir string) []string {
	var files []string
	_ = filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() && scanner.IsExportFile(p) {
			files = append(files, p)
		}
		return nil
	})
	return files
}

func (fw *FileWatcher) Events() <-chan model.FileEvent {
	return fw.events
}

func (fw *FileWatcher) Close() error {
	select {
	case <-fw.done:
		return nil
	default:
		close(fw.done)
	}
	return fw.watcher.Close()
}
