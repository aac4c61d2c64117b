// Package screenshots checks that sample screenshots exist, decode and fit
// within the viewer's size limits.
package screenshots

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/samplekit/samplekit/internal/metadata"
	"github.com/samplekit/samplekit/internal/platform"
)

// Problem classifies a screenshot violation
type Problem string

const (
	ProblemMissing     Problem = "missing"
	ProblemUndecodable Problem = "undecodable"
	ProblemTooLarge    Problem = "too large"
)

// Defaults for Options
const (
	DefaultMaxWidth  = 800
	DefaultMaxHeight = 600
)

// Options configures a check run
type Options struct {
	MaxWidth  int
	MaxHeight int
	// Ignore holds doublestar globs matched against the image path relative
	// to the sample root, with forward slashes
	Ignore []string
	Logger *zap.Logger
}

// Finding is one screenshot violation
type Finding struct {
	Platform string
	Sample   string
	// Path is relative to the sample root
	Path    string
	Problem Problem
	Width   int
	Height  int
	Detail  string
}

func (f Finding) String() string {
	switch f.Problem {
	case ProblemTooLarge:
		return fmt.Sprintf("%s: %dx%d exceeds limit", f.Path, f.Width, f.Height)
	case ProblemUndecodable:
		return fmt.Sprintf("%s: cannot decode image: %s", f.Path, f.Detail)
	}
	return fmt.Sprintf("%s: %s", f.Path, f.Problem)
}

// Checker walks platform sample trees and inspects every screenshot
type Checker struct {
	Root string
	opts Options
}

// NewChecker creates a checker for the sample tree at root
func NewChecker(root string, opts Options) (*Checker, error) {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = DefaultMaxWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = DefaultMaxHeight
	}
	for _, pattern := range opts.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Checker{Root: root, opts: opts}, nil
}

// Check inspects the screenshots of every sample on the given platforms.
// Platforms whose sample directory does not exist are skipped.
func (c *Checker) Check(platforms []*platform.Platform) ([]Finding, error) {
	var findings []Finding
	for _, p := range platforms {
		if _, err := os.Stat(p.SamplesDir(c.Root)); errors.Is(err, fs.ErrNotExist) {
			c.opts.Logger.Debug("platform not present", zap.String("platform", p.Name))
			continue
		}
		err := platform.Walk(c.Root, p, func(ref platform.SampleRef) error {
			findings = append(findings, c.CheckSample(ref)...)
			return nil
		})
		if err != nil {
			return findings, err
		}
	}
	return findings, nil
}

// CheckSample inspects the screenshots of one sample
func (c *Checker) CheckSample(ref platform.SampleRef) []Finding {
	var findings []Finding
	for _, img := range Images(ref.Dir, ref.Name) {
		path := filepath.Join(ref.Dir, filepath.FromSlash(img))
		rel := c.relative(path)
		if c.ignored(rel) {
			continue
		}

		f := Finding{Platform: ref.Platform.Name, Sample: ref.Name, Path: rel}
		cfg, err := decodeConfig(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			f.Problem = ProblemMissing
		case err != nil:
			f.Problem = ProblemUndecodable
			f.Detail = err.Error()
		case cfg.Width > c.opts.MaxWidth || cfg.Height > c.opts.MaxHeight:
			f.Problem = ProblemTooLarge
			f.Width, f.Height = cfg.Width, cfg.Height
		default:
			continue
		}
		c.opts.Logger.Debug("screenshot violation",
			zap.String("sample", ref.Name), zap.String("path", rel), zap.String("problem", string(f.Problem)))
		findings = append(findings, f)
	}
	return findings
}

// Images lists the screenshots a sample declares in its metadata, falling
// back to <name>.jpg or <name>.png
func Images(dir, name string) []string {
	if s, err := metadata.FromJSON(filepath.Join(dir, metadata.JSONFile)); err == nil && len(s.Images) > 0 {
		return s.Images
	}
	for _, ext := range []string{".jpg", ".png"} {
		if _, err := os.Stat(filepath.Join(dir, name+ext)); err == nil {
			return []string{name + ext}
		}
	}
	return []string{name + ".jpg"}
}

func decodeConfig(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	return cfg, err
}

func (c *Checker) relative(path string) string {
	rel, err := filepath.Rel(c.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (c *Checker) ignored(rel string) bool {
	for _, pattern := range c.opts.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
