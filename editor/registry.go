// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: editor/registry.go
// Summary: Tracks the set of open files and watches them on disk.
// Usage: The ordered open-file list is the input to the layout
// engine's editor tab reconciliation; files deleted or renamed away
// are closed automatically.

package editor

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Registry owns the ordered list of open files. onChange receives the
// updated path list plus the tab id that should be focused; callers
// pass both straight to layout.(*Workspace).SyncEditorTabs.
type Registry struct {
	mu       sync.Mutex
	open     []string
	watcher  *fsnotify.Watcher
	onChange func(paths []string, activeTabID string)
	done     chan struct{}
}

// NewRegistry creates a registry with a running file watcher.
func NewRegistry(onChange func([]string, string)) (*Registry, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("editor watcher: %w", err)
	}
	r := &Registry{
		watcher:  watcher,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go r.watch()
	return r, nil
}

// Open adds a file to the open set and focuses it. Opening an already
// open file only refocuses it. The path is made absolute so the
// derived tab id is stable regardless of the caller's working
// directory.
func (r *Registry) Open(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return err
	}

	r.mu.Lock()
	known := false
	for _, p := range r.open {
		if p == abs {
			known = true
			break
		}
	}
	if !known {
		r.open = append(r.open, abs)
		if err := r.watcher.Add(abs); err != nil {
			log.Printf("[editor] cannot watch %s: %v", abs, err)
		}
	}
	paths := append([]string(nil), r.open...)
	r.mu.Unlock()

	r.notify(paths, "edit-"+abs)
	return nil
}

// Close drops a file from the open set.
func (r *Registry) Close(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	r.mu.Lock()
	idx := -1
	for i, p := range r.open {
		if p == abs {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return
	}
	r.open = append(r.open[:idx], r.open[idx+1:]...)
	r.watcher.Remove(abs)
	paths := append([]string(nil), r.open...)
	r.mu.Unlock()

	r.notify(paths, "")
}

// Paths returns the open files in open order.
func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.open...)
}

// Shutdown stops the watcher.
func (r *Registry) Shutdown() {
	close(r.done)
	r.watcher.Close()
}

func (r *Registry) notify(paths []string, activeTabID string) {
	if r.onChange != nil {
		r.onChange(paths, activeTabID)
	}
}

// watch closes files that disappear from disk. Writes are ignored
// here; buffer reloading is the editor view's concern.
func (r *Registry) watch() {
	for {
		select {
		case <-r.done:
			return
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				log.Printf("[editor] %s gone from disk, closing", ev.Name)
				r.Close(ev.Name)
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[editor] watcher error: %v", err)
		}
	}
}
