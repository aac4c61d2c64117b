package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/samplekit/samplekit/internal/metadata"
	"github.com/samplekit/samplekit/internal/platform"
	"github.com/samplekit/samplekit/internal/report"
)

// Syncer re-processes one sample; pipeline.Runner implements it
type Syncer interface {
	SyncSample(ctx context.Context, dir string, p *platform.Platform) (*report.Report, error)
}

// SampleWatcher syncs metadata whenever a sample readme is written
type SampleWatcher struct {
	root      string
	platforms []*platform.Platform
	syncer    Syncer
	logger    *zap.Logger

	// Debounce overrides DefaultDebounce when positive
	Debounce time.Duration
}

// NewSampleWatcher watches the sample trees of platforms under root
func NewSampleWatcher(root string, platforms []*platform.Platform, syncer Syncer, logger *zap.Logger) *SampleWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SampleWatcher{root: root, platforms: platforms, syncer: syncer, logger: logger}
}

// Run watches until ctx is cancelled. onSync, when set, receives the report of
// every sync.
func (w *SampleWatcher) Run(ctx context.Context, onSync func(*report.Report)) error {
	var dirs []string
	for _, p := range w.platforms {
		dir := p.SamplesDir(w.root)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}

	fw, err := NewFileWatcher(Options{
		Dirs:     dirs,
		Patterns: []string{metadata.ReadmeFile},
		Debounce: w.Debounce,
		Logger:   w.logger,
	}, func(files []string) error {
		rep := w.Handle(ctx, files)
		if onSync != nil {
			onSync(rep)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := fw.Start(); err != nil {
		fw.Stop()
		return err
	}

	<-ctx.Done()
	return fw.Stop()
}

// Handle syncs every sample owning one of the changed readmes
func (w *SampleWatcher) Handle(ctx context.Context, files []string) *report.Report {
	rep := &report.Report{}
	seen := make(map[string]bool)
	for _, file := range files {
		p, dir, ok := ResolveSample(w.root, w.platforms, file)
		if !ok || seen[dir] {
			continue
		}
		seen[dir] = true

		w.logger.Info("syncing sample", zap.String("platform", p.Name), zap.String("sample", filepath.Base(dir)))
		sub, err := w.syncer.SyncSample(ctx, dir, p)
		if err != nil {
			rep.Fail(p.Name, filepath.Base(dir), err)
			w.logger.Warn("sync failed", zap.String("sample", filepath.Base(dir)), zap.Error(err))
			continue
		}
		rep.Merge(sub)
	}
	return rep
}

// ResolveSample maps a file inside a sample directory to its platform and
// sample directory. Files outside <samples>/<category>/<sample>/ are rejected.
func ResolveSample(root string, platforms []*platform.Platform, file string) (*platform.Platform, string, bool) {
	for _, p := range platforms {
		samples := p.SamplesDir(root)
		rel, err := filepath.Rel(samples, file)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 3 {
			continue
		}
		return p, filepath.Join(samples, parts[0], parts[1]), true
	}
	return nil, "", false
}
