// Package propagate copies the canonical platform's readmes to the other
// platforms, adapting links and wording for each.
package propagate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/samplekit/samplekit/internal/metadata"
	"github.com/samplekit/samplekit/internal/platform"
	"github.com/samplekit/samplekit/internal/report"
	"github.com/samplekit/samplekit/internal/textio"
)

// Propagator copies readmes from the canonical platform
type Propagator struct {
	Root   string
	Rules  *Rules
	Logger *zap.Logger
	// DryRun reports what would change without writing
	DryRun bool
}

// Run copies every canonical readme to each target platform. Targets equal to
// the canonical platform are ignored. Only a failure to walk the canonical
// tree is returned as an error.
func (p *Propagator) Run(ctx context.Context, targets []*platform.Platform) (*report.Report, error) {
	canonical, err := platform.Lookup(p.Rules.Canonical)
	if err != nil {
		return nil, fmt.Errorf("canonical platform: %w", err)
	}

	rep := &report.Report{}
	err = platform.Walk(p.Root, canonical, func(ref platform.SampleRef) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		readmePath := filepath.Join(ref.Dir, metadata.ReadmeFile)
		text, _, err := textio.ReadText(readmePath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				p.Logger.Debug("no canonical readme", zap.String("sample", ref.Name))
				return nil
			}
			p.Logger.Warn("failed to read canonical readme", zap.String("sample", ref.Name), zap.Error(err))
			rep.Fail(canonical.Name, ref.Name, err)
			return nil
		}

		category := metadata.CategoryFor(ref.Dir, canonical)
		for _, target := range targets {
			if target.Name == canonical.Name {
				continue
			}
			p.copyTo(rep, ref, category, text, canonical, target)
		}
		return nil
	})
	return rep, err
}

func (p *Propagator) copyTo(rep *report.Report, ref platform.SampleRef, category, text string, canonical, target *platform.Platform) {
	if p.Rules.Excluded(ref.Name, target.Name) {
		rep.Add(target.Name, ref.Name, report.StatusSkipped, "excluded")
		return
	}
	if p.Rules.IsDesktopOnly(category) && !target.Desktop {
		rep.Add(target.Name, ref.Name, report.StatusSkipped, "category not available on platform")
		return
	}

	destDir := target.SampleDir(p.Root, ref.Category, ref.Name)
	if info, err := os.Stat(destDir); err != nil || !info.IsDir() {
		rep.Add(target.Name, ref.Name, report.StatusSkipped, "sample not present on platform")
		return
	}

	destPath := filepath.Join(destDir, metadata.ReadmeFile)
	updated := Transform(text, canonical, target, p.Rules)

	existing, codec, err := textio.ReadText(destPath)
	if err == nil && existing == updated {
		rep.Add(target.Name, ref.Name, report.StatusOK, "")
		return
	}

	if !p.DryRun {
		if err := textio.WriteText(destPath, updated, codec); err != nil {
			p.Logger.Warn("failed to write readme", zap.String("sample", ref.Name), zap.String("platform", target.Name), zap.Error(err))
			rep.Fail(target.Name, ref.Name, err)
			return
		}
	}
	p.Logger.Debug("readme copied", zap.String("sample", ref.Name), zap.String("platform", target.Name))
	rep.Add(target.Name, ref.Name, report.StatusChanged, "")
}

// Transform adapts canonical readme text for target
func Transform(text string, canonical, target *platform.Platform, rules *Rules) string {
	if canonical.DocSegment != target.DocSegment {
		text = strings.ReplaceAll(text, "/"+canonical.DocSegment+"/", "/"+target.DocSegment+"/")
	}
	if target.Touch {
		text = TouchWording(text)
	}
	if target.LowercaseImages {
		text = LowercaseImages(text)
	}
	if rules != nil {
		for _, r := range rules.Replacements[target.Name] {
			text = strings.ReplaceAll(text, r.From, r.To)
		}
	}
	return text
}

var clickPattern = regexp.MustCompile(`(?i)\bclick(s|ed|ing)?\b`)

var tapForms = map[string]string{
	"":    "tap",
	"s":   "taps",
	"ed":  "tapped",
	"ing": "tapping",
}

// TouchWording replaces the click family with the tap family, keeping case
func TouchWording(text string) string {
	return clickPattern.ReplaceAllStringFunc(text, func(word string) string {
		suffix := strings.ToLower(word[len("click"):])
		return matchCase(word, tapForms[suffix])
	})
}

func matchCase(original, replacement string) string {
	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if unicode.IsUpper(rune(original[0])) {
		return strings.ToUpper(replacement[:1]) + replacement[1:]
	}
	return replacement
}

var (
	markdownImagePattern = regexp.MustCompile(`(!\[[^\]]*\]\()([^)\s]+)(\))`)
	htmlImagePattern     = regexp.MustCompile(`(<img[^>]*\ssrc=")([^"]+)(")`)
)

// LowercaseImages lower-cases the file name of every image reference
func LowercaseImages(text string) string {
	lower := func(m []string) string {
		dir, file := path.Split(m[2])
		return m[1] + dir + strings.ToLower(file) + m[3]
	}
	text = markdownImagePattern.ReplaceAllStringFunc(text, func(s string) string {
		return lower(markdownImagePattern.FindStringSubmatch(s))
	})
	return htmlImagePattern.ReplaceAllStringFunc(text, func(s string) string {
		return lower(htmlImagePattern.FindStringSubmatch(s))
	})
}
