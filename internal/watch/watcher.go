// Package watch re-runs the metadata pipeline when sample readmes change.
package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to settle
const DefaultDebounce = 300 * time.Millisecond

// skippedDirs are build output directories that are never watched
var skippedDirs = map[string]bool{
	"bin": true,
	"obj": true,
}

// Options configures a FileWatcher
type Options struct {
	// Dirs are watched recursively; directories created later are added as
	// they appear
	Dirs []string
	// Patterns are doublestar globs matched case-insensitively against base
	// names. Empty matches every file.
	Patterns []string
	// Ignore are doublestar globs matched against paths relative to the
	// watched directory
	Ignore   []string
	Debounce time.Duration
	Logger   *zap.Logger
}

// FileWatcher reports batches of changed files below a set of directories
type FileWatcher struct {
	fsw      *fsnotify.Watcher
	opts     Options
	batch    *Debouncer
	onChange func([]string) error

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewFileWatcher validates the globs in opts and creates a watcher that calls
// onChange with each settled batch of files
func NewFileWatcher(opts Options, onChange func([]string) error) (*FileWatcher, error) {
	for _, g := range append(append([]string(nil), opts.Patterns...), opts.Ignore...) {
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("invalid watch pattern %q", g)
		}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{fsw: fsw, opts: opts, onChange: onChange, done: make(chan struct{})}
	fw.batch = NewDebouncer(opts.Debounce, func(files []string) {
		if err := fw.onChange(files); err != nil {
			fw.opts.Logger.Warn("error handling file changes", zap.Error(err))
		}
	})
	return fw, nil
}

// Start registers every directory below the configured roots and begins
// delivering events
func (fw *FileWatcher) Start() error {
	total := 0
	for _, root := range fw.opts.Dirs {
		n, err := fw.addTree(root)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
		total += n
	}
	fw.opts.Logger.Info("watching", zap.Int("directories", total))

	fw.wg.Add(1)
	go fw.loop()
	return nil
}

// Stop ends event delivery, drops pending changes and closes the underlying
// watcher. Calls after the first are no-ops.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.done)
		fw.wg.Wait()
		if n := fw.batch.Pending(); n > 0 {
			fw.opts.Logger.Debug("dropping pending changes", zap.Int("files", n))
		}
		fw.batch.Stop()
		err = fw.fsw.Close()
	})
	return err
}

func (fw *FileWatcher) loop() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.done:
			return
		case err, ok := <-fw.fsw.Errors:
			if !ok {
				return
			}
			fw.opts.Logger.Warn("watch error", zap.Error(err))
		case event, ok := <-fw.fsw.Events:
			if !ok {
				return
			}
			fw.handle(event)
		}
	}
}

func (fw *FileWatcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if fw.ignored(event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if _, err := fw.addTree(event.Name); err != nil {
				fw.opts.Logger.Warn("failed to watch directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return
		}
	}

	if fw.matches(event.Name) {
		fw.opts.Logger.Debug("file changed", zap.String("file", event.Name))
		fw.batch.Add(event.Name)
	}
}

// addTree watches root and its subdirectories, returning how many were added
func (fw *FileWatcher) addTree(root string) (int, error) {
	dirs, err := walkDirs(root)
	if err != nil {
		return 0, err
	}
	for _, dir := range dirs {
		if err := fw.fsw.Add(dir); err != nil {
			return 0, err
		}
	}
	return len(dirs), nil
}

// walkDirs returns root and its subdirectories, skipping hidden and build
// output directories
func walkDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || skippedDirs[name]) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}

// ignored reports editor droppings and paths matching an ignore glob
func (fw *FileWatcher) ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return true
	}
	if len(fw.opts.Ignore) == 0 {
		return false
	}

	for _, root := range fw.opts.Dirs {
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		for _, g := range fw.opts.Ignore {
			if ok, _ := doublestar.Match(g, rel); ok {
				return true
			}
		}
	}
	return false
}

// matches reports whether the base name of path matches a watch pattern
func (fw *FileWatcher) matches(path string) bool {
	if len(fw.opts.Patterns) == 0 {
		return true
	}
	base := strings.ToLower(filepath.Base(path))
	for _, g := range fw.opts.Patterns {
		if ok, _ := doublestar.Match(strings.ToLower(g), base); ok {
			return true
		}
	}
	return false
}

// Debouncer batches paths and hands them to its callback, sorted and
// de-duplicated, once no new path has arrived for the delay. Batches are
// delivered one at a time; a batch that settles while the callback is still
// running waits for it to return.
type Debouncer struct {
	delay time.Duration
	fire  func([]string)

	// fireMu is held for the whole callback
	fireMu sync.Mutex

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer calling fire with each batch
func NewDebouncer(delay time.Duration, fire func([]string)) *Debouncer {
	return &Debouncer{delay: delay, fire: fire, pending: make(map[string]bool)}
}

// Add queues path and restarts the delay
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending[path] = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.flush)
		return
	}
	d.timer.Reset(d.delay)
}

// Pending returns how many paths wait for the next batch
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Debouncer) flush() {
	d.fireMu.Lock()
	defer d.fireMu.Unlock()

	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	files := make([]string, 0, len(d.pending))
	for path := range d.pending {
		files = append(files, path)
	}
	d.pending = make(map[string]bool)
	d.mu.Unlock()

	sort.Strings(files)
	d.fire(files)
}

// Stop drops pending paths and waits for a running callback to return.
// Later Adds are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.pending = make(map[string]bool)
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	d.fireMu.Lock()
	d.fireMu.Unlock()
}
