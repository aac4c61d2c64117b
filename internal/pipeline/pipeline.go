// Package pipeline drives the readme to metadata synchronisation over a
// sample tree: parse each readme, write its JSON sidecar, regenerate the code
// annotation and rebuild the platform's table of contents.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/samplekit/samplekit/internal/attributes"
	"github.com/samplekit/samplekit/internal/metadata"
	"github.com/samplekit/samplekit/internal/platform"
	"github.com/samplekit/samplekit/internal/report"
	"github.com/samplekit/samplekit/internal/textio"
	"github.com/samplekit/samplekit/internal/toc"
)

// Op selects which outputs a run produces
type Op string

const (
	// OpTOC only rebuilds tables of contents
	OpTOC Op = "toc"
	// OpImprove rewrites JSON sidecars, keeping the ignore flag and redirects of the existing ones
	OpImprove Op = "improve"
	// OpAttributes regenerates code annotations
	OpAttributes Op = "attributes"
	// OpSync rewrites JSON sidecars and code annotations
	OpSync Op = "sync"
)

// Ops lists the valid operations
var Ops = []Op{OpTOC, OpImprove, OpAttributes, OpSync}

// ParseOp validates an operation keyword
func ParseOp(s string) (Op, error) {
	for _, op := range Ops {
		if string(op) == strings.ToLower(s) {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operation %q (expected one of toc, improve, attributes, sync)", s)
}

func (op Op) writesJSON() bool {
	return op == OpImprove || op == OpSync
}

func (op Op) writesAttributes() bool {
	return op == OpAttributes || op == OpSync
}

// ChangeFunc is called for every file whose content changes, before it is
// written (or instead of writing on a dry run)
type ChangeFunc func(path, before, after string)

// Runner processes sample trees
type Runner struct {
	Root   string
	Logger *zap.Logger
	// DryRun computes every output without writing it
	DryRun bool
	// OnChange, when set, observes changed files
	OnChange ChangeFunc
}

// Run processes every sample of each platform in turn. Per-sample failures are
// logged and recorded in the report; a failure to walk a platform's tree
// aborts the run.
func (r *Runner) Run(ctx context.Context, op Op, platforms []*platform.Platform) (*report.Report, error) {
	rep := &report.Report{}
	for _, p := range platforms {
		r.Logger.Info("processing platform", zap.String("platform", p.Name), zap.String("op", string(op)))

		categories := toc.Categories{}
		err := platform.Walk(r.Root, p, func(ref platform.SampleRef) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := r.processSample(op, ref, rep)
			if err != nil {
				return nil
			}
			categories.Add(s)
			return nil
		})
		if err != nil {
			return rep, err
		}

		if p.SkipTOC {
			continue
		}
		if err := r.writeTOC(p, categories); err != nil {
			r.Logger.Warn("failed to write table of contents", zap.String("platform", p.Name), zap.Error(err))
			rep.Fail(p.Name, "(table of contents)", err)
		}
	}
	return rep, nil
}

// processSample runs op over one sample. The returned error only signals that
// the sample should not be listed; it has already been logged and recorded.
func (r *Runner) processSample(op Op, ref platform.SampleRef, rep *report.Report) (*metadata.Sample, error) {
	log := r.Logger.With(zap.String("platform", ref.Platform.Name), zap.String("sample", ref.Name))

	s, err := metadata.FromReadme(filepath.Join(ref.Dir, metadata.ReadmeFile), ref.Platform)
	if err != nil {
		if errors.Is(err, metadata.ErrReadmeNotFound) {
			log.Info("skipping sample without readme")
			rep.Add(ref.Platform.Name, ref.Name, report.StatusSkipped, "readme missing")
		} else {
			log.Warn("failed to read readme", zap.Error(err))
			rep.Fail(ref.Platform.Name, ref.Name, err)
		}
		return nil, err
	}

	changed := false
	if op.writesJSON() {
		c, err := r.flushJSON(op, s, ref)
		if err != nil {
			log.Warn("failed to write metadata", zap.Error(err))
			rep.Fail(ref.Platform.Name, ref.Name, err)
			return s, nil
		}
		changed = changed || c
	}

	if op.writesAttributes() {
		c, err := r.rewriteAttributes(s, ref)
		if err != nil {
			log.Warn("failed to update sample attributes", zap.String("dir", ref.Dir), zap.Error(err))
			rep.Fail(ref.Platform.Name, ref.Name, err)
			return s, nil
		}
		changed = changed || c
	}

	status := report.StatusOK
	if changed {
		status = report.StatusChanged
	}
	rep.Add(ref.Platform.Name, ref.Name, status, "")
	return s, nil
}

func (r *Runner) flushJSON(op Op, s *metadata.Sample, ref platform.SampleRef) (bool, error) {
	files, err := metadata.CollectSnippets(ref.Dir)
	if err != nil {
		return false, err
	}
	s.SourceFiles = files

	path := filepath.Join(ref.Dir, metadata.JSONFile)
	if op == OpImprove {
		existing, err := metadata.FromJSON(path)
		switch {
		case err == nil:
			s.ImportFrom(existing)
		case !errors.Is(err, os.ErrNotExist):
			r.Logger.Warn("ignoring unreadable metadata", zap.String("path", path), zap.Error(err))
		}
	}

	data, err := s.JSON()
	if err != nil {
		return false, err
	}
	return r.writeIfChanged(path, string(data))
}

func (r *Runner) rewriteAttributes(s *metadata.Sample, ref platform.SampleRef) (bool, error) {
	res, err := attributes.Prepare(s, ref.Dir, ref.Platform)
	if err != nil {
		return false, err
	}
	if !res.Changed {
		return false, nil
	}
	r.Logger.Debug("annotation updated", zap.String("path", res.Path), zap.String("old", res.Old), zap.String("new", res.New))
	if r.OnChange != nil {
		r.OnChange(res.Path, res.Old, res.New)
	}
	if r.DryRun {
		return true, nil
	}
	return true, res.Write()
}

func (r *Runner) writeTOC(p *platform.Platform, categories toc.Categories) error {
	_, err := r.writeIfChanged(toc.Path(r.Root, p), toc.Render(categories, p.TOCPath))
	return err
}

// writeIfChanged writes content as UTF-8. A file holding the same text in
// another encoding is rewritten.
func (r *Runner) writeIfChanged(path, content string) (bool, error) {
	before, codec, err := textio.ReadText(path)
	if err == nil && before == content && codec.Name == textio.UTF8.Name {
		return false, nil
	}
	if r.OnChange != nil {
		r.OnChange(path, before, content)
	}
	if r.DryRun {
		return true, nil
	}
	if err := textio.WriteText(path, content, textio.UTF8); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// SyncSample runs the full sync over the single sample in dir and rebuilds
// the table of contents of its platform
func (r *Runner) SyncSample(ctx context.Context, dir string, p *platform.Platform) (*report.Report, error) {
	rep := &report.Report{}
	ref := platform.SampleRef{
		Platform: p,
		Category: filepath.Base(filepath.Dir(dir)),
		Name:     filepath.Base(dir),
		Dir:      dir,
	}
	if _, err := r.processSample(OpSync, ref, rep); err != nil {
		return rep, nil
	}
	if p.SkipTOC {
		return rep, nil
	}

	tocRep, err := r.Run(ctx, OpTOC, []*platform.Platform{p})
	if err != nil {
		return rep, err
	}
	for _, e := range tocRep.Failed() {
		rep.Add(e.Platform, e.Sample, e.Status, e.Reason)
	}
	return rep, nil
}
