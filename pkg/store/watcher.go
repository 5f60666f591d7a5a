package store

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"

	"github.com/robotalks/macropad.go/pkg/framework"
)

// ChangedMsg is posted to the loop when the configuration file changed
// on disk.
type ChangedMsg struct {
	File string
}

// Watcher watches a directory and posts ChangedMsg when File is
// written or created there. Replacing it by rename creates it.
type Watcher struct {
	Dir  string
	File string
}

// NewWatcher creates a Watcher for the primary file of s. It returns
// nil if the storage is not a directory.
func NewWatcher(s *Store) *Watcher {
	dir, ok := s.Storage().(*DirStorage)
	if !ok || s.Degraded() {
		return nil
	}
	return &Watcher{Dir: dir.Dir, File: s.ConfigFile}
}

// Name implements framework.Named.
func (w *Watcher) Name() string {
	return "config-watcher"
}

// Run implements framework.Runnable.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.Dir); err != nil {
		return err
	}
	loop := framework.LoopCtlFrom(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != w.File || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if glog.V(2) {
				glog.Infof("config file event: %s", ev)
			}
			loop.PostMessage(&ChangedMsg{File: w.File})
			loop.TriggerNext()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			glog.Warningf("watch %s: %v", w.Dir, err)
		}
	}
}
