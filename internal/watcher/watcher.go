// Package watcher calls back when any of a fixed set of files changes.
// Bursts of events (editors writing in several steps, atomic renames) are
// collapsed into one callback by a debounce delay.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"atsmatch/internal/errors"
)

const defaultDebounce = 300 * time.Millisecond

// FileWatcher watches files for changes and triggers a callback
type FileWatcher struct {
	mu sync.Mutex

	files     []string
	lastState map[string]fileState

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	changeChan chan struct{}
	done       chan struct{}

	onChange func()
	logger   *errors.Logger

	running bool
}

// New creates a watcher for files. A zero debounceDelay uses 300ms.
func New(files []string, debounceDelay time.Duration, onChange func(), logger *errors.Logger) *FileWatcher {
	if debounceDelay <= 0 {
		debounceDelay = defaultDebounce
	}

	cleaned := make([]string, 0, len(files))
	for _, f := range files {
		if f != "" {
			cleaned = append(cleaned, filepath.Clean(f))
		}
	}

	return &FileWatcher{
		files:         cleaned,
		lastState:     make(map[string]fileState),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		changeChan:    make(chan struct{}, 1),
		done:          make(chan struct{}),
		onChange:      onChange,
		logger:        logger,
	}
}

// Start begins watching. It fails when no watched file or directory can be added.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.running {
		return fmt.Errorf("file watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	fw.fsWatcher = watcher

	for _, file := range fw.files {
		if stat, err := os.Stat(file); err == nil {
			fw.lastState[file] = stateOf(stat)
		}
	}

	// Directories rather than files, so atomic saves (write temp, rename)
	// keep being seen.
	added := 0
	for _, dir := range fw.directories() {
		if err := fw.fsWatcher.Add(dir); err != nil {
			fw.logger.Warn("Failed to watch directory", "directory", dir, "error", err)
			continue
		}
		added++
	}
	if added == 0 && len(fw.files) > 0 {
		_ = fw.fsWatcher.Close()
		return fmt.Errorf("none of the watched paths could be added: %v", fw.files)
	}

	fw.running = true
	go fw.watchLoop()

	fw.logger.Info("File watcher started",
		"files", fw.files,
		"debounce_delay", fw.debounceDelay)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = false
	close(fw.stopChan)
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	err := fw.fsWatcher.Close()
	fw.mu.Unlock()

	<-fw.done
	if err != nil {
		fw.logger.LogError(err, "Failed to close file system watcher")
		return err
	}
	fw.logger.Info("File watcher stopped")
	return nil
}

// IsRunning returns whether the watcher is currently running
func (fw *FileWatcher) IsRunning() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.running
}

// Files returns the watched files.
func (fw *FileWatcher) Files() []string {
	return slices.Clone(fw.files)
}

func (fw *FileWatcher) directories() []string {
	var dirs []string
	for _, file := range fw.files {
		dir := filepath.Dir(file)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func (fw *FileWatcher) watchLoop() {
	defer close(fw.done)
	for {
		select {
		case event, ok := <-fw.fsWatcher.Events:
			if !ok {
				return
			}
			if fw.isRelevant(event) {
				fw.scheduleChange()
			}

		case err, ok := <-fw.fsWatcher.Errors:
			if !ok {
				return
			}
			fw.logger.LogError(err, "File watcher error")

		case <-fw.changeChan:
			if fw.hasAnyFileChanged() {
				fw.logger.Debug("Watched files changed")
				fw.onChange()
			}

		case <-fw.stopChan:
			return
		}
	}
}

func (fw *FileWatcher) isRelevant(event fsnotify.Event) bool {
	if !slices.Contains(fw.files, filepath.Clean(event.Name)) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

type fileState struct {
	modTime time.Time
	size    int64
}

func stateOf(info os.FileInfo) fileState {
	return fileState{modTime: info.ModTime(), size: info.Size()}
}

// hasFileChanged reports a new modification time or size, or a file that
// disappeared. Only the event loop calls it.
func (fw *FileWatcher) hasFileChanged(file string) bool {
	stat, err := os.Stat(file)
	if err != nil {
		if _, existed := fw.lastState[file]; existed && os.IsNotExist(err) {
			delete(fw.lastState, file)
			return true
		}
		return false
	}

	last, exists := fw.lastState[file]
	current := stateOf(stat)
	if !exists || !current.modTime.Equal(last.modTime) || current.size != last.size {
		fw.lastState[file] = current
		return true
	}
	return false
}

func (fw *FileWatcher) hasAnyFileChanged() bool {
	changed := false
	for _, file := range fw.files {
		if fw.hasFileChanged(file) {
			changed = true
		}
	}
	return changed
}

func (fw *FileWatcher) scheduleChange() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debounceDelay, func() {
		select {
		case fw.changeChan <- struct{}{}:
		default:
		}
	})
}
