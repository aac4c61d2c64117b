// Package readmelint checks sample readmes for the structure the metadata
// pipeline expects.
package readmelint

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/samplekit/samplekit/internal/metadata"
	"github.com/samplekit/samplekit/internal/platform"
	"github.com/samplekit/samplekit/internal/textio"
)

// Rule identifies a lint check
type Rule string

const (
	RuleMissingTitle   Rule = "missing-title"
	RuleImagePosition  Rule = "image-position"
	RuleUnknownHeading Rule = "unknown-heading"
	RuleEmptySection   Rule = "empty-section"
)

// imageWindow is how many leading blocks may hold the screenshot
const imageWindow = 3

// Issue is one lint finding
type Issue struct {
	// Path is empty when linting a source buffer directly
	Path    string
	Line    int
	Rule    Rule
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return fmt.Sprintf("%d: %s: %s", i.Line, i.Rule, i.Message)
	}
	return fmt.Sprintf("%s:%d: %s: %s", i.Path, i.Line, i.Rule, i.Message)
}

// Linter parses readmes with goldmark
type Linter struct {
	md goldmark.Markdown
}

// New creates a linter
func New() *Linter {
	return &Linter{md: goldmark.New()}
}

// Lint checks one readme
func (l *Linter) Lint(source []byte) []Issue {
	doc := l.md.Parser().Parse(text.NewReader(source))

	var blocks []ast.Node
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		blocks = append(blocks, n)
	}

	var issues []Issue
	add := func(n ast.Node, rule Rule, format string, args ...any) {
		issues = append(issues, Issue{Line: lineOf(n, source), Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	if len(blocks) == 0 {
		return []Issue{{Line: 1, Rule: RuleMissingTitle, Message: "readme is empty"}}
	}
	if h, ok := blocks[0].(*ast.Heading); !ok || h.Level != 1 {
		add(blocks[0], RuleMissingTitle, "readme must start with a level-1 title")
	}

	if !hasImage(blocks[:min(imageWindow, len(blocks))], source) {
		if img := firstImage(doc, source); img != nil {
			add(img, RuleImagePosition, "screenshot must appear within the first %d blocks", imageWindow)
		} else {
			add(blocks[0], RuleImagePosition, "readme has no screenshot")
		}
	}

	for i, b := range blocks {
		h, ok := b.(*ast.Heading)
		if !ok || h.Level != 2 {
			continue
		}
		title := headingText(h, source)
		if metadata.SectionFor(title) == "" {
			add(h, RuleUnknownHeading, "unrecognised section %q", title)
		}
		if i+1 == len(blocks) {
			add(h, RuleEmptySection, "section %q has no content", title)
			continue
		}
		if next, ok := blocks[i+1].(*ast.Heading); ok && next.Level <= 2 {
			add(h, RuleEmptySection, "section %q has no content", title)
		}
	}
	return issues
}

// LintFile checks the readme at path
func (l *Linter) LintFile(path string) ([]Issue, error) {
	content, _, err := textio.ReadText(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	issues := l.Lint([]byte(content))
	for i := range issues {
		issues[i].Path = path
	}
	return issues, nil
}

// LintTree checks the readme of every sample on the given platforms. Samples
// without a readme are skipped.
func (l *Linter) LintTree(root string, platforms []*platform.Platform) ([]Issue, error) {
	var issues []Issue
	for _, p := range platforms {
		err := platform.Walk(root, p, func(ref platform.SampleRef) error {
			path := filepath.Join(ref.Dir, metadata.ReadmeFile)
			found, err := l.LintFile(path)
			if err != nil {
				return nil
			}
			for _, is := range found {
				if rel, err := filepath.Rel(root, is.Path); err == nil {
					is.Path = filepath.ToSlash(rel)
				}
				issues = append(issues, is)
			}
			return nil
		})
		if err != nil {
			return issues, err
		}
	}
	return issues, nil
}

func hasImage(blocks []ast.Node, source []byte) bool {
	for _, b := range blocks {
		if firstImage(b, source) != nil {
			return true
		}
	}
	return false
}

// firstImage finds the first markdown image or HTML <img> tag under root
func firstImage(root ast.Node, source []byte) ast.Node {
	var found ast.Node
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Image:
			found = n
		case *ast.RawHTML:
			if bytes.Contains(segmentsText(v.Segments, source), []byte("<img")) {
				found = n
			}
		case *ast.HTMLBlock:
			if bytes.Contains(segmentsText(v.Lines(), source), []byte("<img")) {
				found = n
			}
		}
		if found != nil {
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}

func segmentsText(segs *text.Segments, source []byte) []byte {
	var buf bytes.Buffer
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.Bytes()
}

func headingText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

// lineOf returns the 1-based source line of n, using the nearest block that
// records its lines
func lineOf(n ast.Node, source []byte) int {
	line := func(b ast.Node) int {
		if b.Type() != ast.TypeBlock || b.Lines().Len() == 0 {
			return 0
		}
		return bytes.Count(source[:b.Lines().At(0).Start], []byte("\n")) + 1
	}
	for b := n; b != nil; b = b.Parent() {
		if l := line(b); l > 0 {
			return l
		}
	}
	for c := n.FirstChild(); c != nil; c = c.FirstChild() {
		if l := line(c); l > 0 {
			return l
		}
	}
	return 1
}
