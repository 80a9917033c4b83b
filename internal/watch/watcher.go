// Package watch re-runs a callback when rule files change on disk.
package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ai-guards/ai-guards/internal/utils"
)

// DefaultDebounce is used when no debounce duration is configured.
const DefaultDebounce = 200 * time.Millisecond

// DefaultIgnored are editor artifacts that never count as rule changes.
var DefaultIgnored = []string{"*.swp", "*.swx", "*~", "4913"}

// RuleWatcher monitors a rules directory tree and calls onChange with the
// batch of changed paths once events stop arriving for the debounce period.
type RuleWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	root      string
	ignored   []string
	onChange  func([]string) error
	logger    *zap.Logger
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewRuleWatcher creates a watcher for root. A non-positive debounce uses
// DefaultDebounce; a nil logger discards output.
func NewRuleWatcher(root string, debounce time.Duration, logger *zap.Logger, onChange func([]string) error) (*RuleWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rw := &RuleWatcher{
		watcher:   watcher,
		debouncer: NewDebouncer(debounce),
		root:      filepath.Clean(root),
		ignored:   DefaultIgnored,
		onChange:  onChange,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}

	rw.debouncer.SetCallback(func(files []string) {
		if err := rw.onChange(files); err != nil {
			rw.logger.Error("failed to handle rule changes", zap.Error(err))
		}
	})

	return rw, nil
}

// Start adds every directory under root to the watch list and begins
// processing events in the background.
func (rw *RuleWatcher) Start() error {
	dirs, err := rw.findDirectories()
	if err != nil {
		return fmt.Errorf("failed to find directories: %w", err)
	}

	for _, dir := range dirs {
		if err := rw.addDir(dir); err != nil {
			return err
		}
	}

	rw.wg.Add(1)
	go rw.watch()

	return nil
}

// Stop stops the watcher. Pending changes are discarded. Calling Stop more
// than once is safe.
func (rw *RuleWatcher) Stop() error {
	var err error
	rw.stopOnce.Do(func() {
		close(rw.stopChan)
		rw.wg.Wait()
		rw.debouncer.Stop()
		err = rw.watcher.Close()
	})
	return err
}

// watch is the main event loop
func (rw *RuleWatcher) watch() {
	defer rw.wg.Done()

	for {
		select {
		case event, ok := <-rw.watcher.Events:
			if !ok {
				return
			}
			rw.handle(event)

		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return
			}
			rw.logger.Warn("watch error", zap.Error(err))

		case <-rw.stopChan:
			return
		}
	}
}

func (rw *RuleWatcher) handle(event fsnotify.Event) {
	if rw.shouldIgnore(event.Name) {
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		if isDir(event.Name) {
			// A directory moved or created under root may already hold rules.
			if err := rw.addTree(event.Name); err != nil {
				rw.logger.Warn("failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
			}
			rw.queue(event)
			return
		}
		if utils.IsRuleFile(event.Name) {
			rw.queue(event)
		}

	case event.Has(fsnotify.Write):
		if utils.IsRuleFile(event.Name) {
			rw.queue(event)
		}

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// The path is gone and may have been a directory holding rules.
		rw.queue(event)
	}
}

func (rw *RuleWatcher) queue(event fsnotify.Event) {
	rw.logger.Debug("rule change", zap.String("path", event.Name), zap.String("op", event.Op.String()))
	rw.debouncer.Add(event.Name)
}

// findDirectories returns root and every directory below it.
func (rw *RuleWatcher) findDirectories() ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(rw.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

func (rw *RuleWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return rw.addDir(path)
		}
		return nil
	})
}

func (rw *RuleWatcher) addDir(dir string) error {
	if err := rw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	rw.logger.Debug("watching directory", zap.String("path", dir))
	return nil
}

// shouldIgnore checks if a file path should be ignored
func (rw *RuleWatcher) shouldIgnore(path string) bool {
	// Editors write hidden temp files next to the one being saved.
	if utils.IsHidden(path) {
		return true
	}

	baseName := filepath.Base(path)

	for _, pattern := range rw.ignored {
		if matched, _ := filepath.Match(pattern, baseName); matched {
			return true
		}
	}

	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Debouncer collects file changes and triggers callbacks after a delay
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	files    map[string]struct{}
	mutex    sync.Mutex
	callback func([]string)
	stopped  bool
	// running serializes callbacks so a slow flush never overlaps the next.
	running sync.Mutex
}

// NewDebouncer creates a new debouncer instance
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
		files:    make(map[string]struct{}),
	}
}

// Add adds a file to the debouncer and restarts the delay.
func (d *Debouncer) Add(file string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}

	d.files[file] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.duration, d.flush)
}

// flush triggers the callback with accumulated files in sorted order.
func (d *Debouncer) flush() {
	d.mutex.Lock()
	if d.stopped || len(d.files) == 0 {
		d.mutex.Unlock()
		return
	}

	files := make([]string, 0, len(d.files))
	for file := range d.files {
		files = append(files, file)
	}
	sort.Strings(files)

	d.files = make(map[string]struct{})
	callback := d.callback
	d.mutex.Unlock()

	if callback != nil {
		d.running.Lock()
		defer d.running.Unlock()
		callback(files)
	}
}

// SetCallback sets the callback function
func (d *Debouncer) SetCallback(callback func([]string)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = callback
}

// Stop cancels any pending flush. Later calls to Add are ignored.
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.stopped = true
	d.files = make(map[string]struct{})
}
