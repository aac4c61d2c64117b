// Package attributes regenerates the Sample annotation on a sample's code file
// from its metadata record.
package attributes

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/samplekit/samplekit/internal/metadata"
	"github.com/samplekit/samplekit/internal/platform"
	"github.com/samplekit/samplekit/internal/textio"
)

var (
	// ErrSourceNotFound is returned when the sample's code file does not exist
	ErrSourceNotFound = errors.New("sample source file not found")
	// ErrNoAnnotation is returned when the code file has no Sample annotation
	ErrNoAnnotation = errors.New("sample annotation not found")
)

const (
	attributeNamespace = "ArcGISRuntime.Samples.Shared.Attributes"
	startToken         = ".Sample("
)

// sourceRenames maps sample directories to code files with a different name
var sourceRenames = strings.NewReplacer(
	"NavigateAR", "RoutePlanner",
	"ViewHiddenInfrastructureAR", "PipePlacer",
)

// SourcePath returns the code file holding the annotation of the sample in dir
func SourcePath(dir string, p *platform.Platform) string {
	name := sourceRenames.Replace(filepath.Base(dir))
	return filepath.Join(dir, name+p.CodeExt)
}

// Span is an inclusive range of line indexes
type Span struct {
	Start int
	End   int
}

// FindSpan locates the annotation block: it starts at the first line holding
// both ".Sample(" and "[" and ends at the first line from there holding "]".
func FindSpan(lines []string) (Span, bool) {
	const (
		searching = iota
		inside
	)

	state := searching
	span := Span{}
	for i, line := range lines {
		if state == searching {
			if !strings.Contains(line, startToken) || !strings.Contains(line, "[") {
				continue
			}
			span.Start = i
			state = inside
		}
		if strings.Contains(line, "]") {
			span.End = i
			return span, true
		}
	}
	return Span{}, false
}

// Block renders the annotation for s, each line terminated by eol
func Block(s *metadata.Sample, eol string) string {
	var b strings.Builder
	b.WriteString("    [" + attributeNamespace + ".Sample(" + eol)
	b.WriteString(`        name: "` + s.FriendlyName + `",` + eol)
	b.WriteString(`        category: "` + s.Category + `",` + eol)
	b.WriteString(`        description: "` + escapeQuotes(s.Description) + `",` + eol)
	b.WriteString(`        instructions: "` + escapeQuotes(firstLine(s.HowToUse)) + `"`)
	if len(s.Keywords) > 0 {
		quoted := make([]string, len(s.Keywords))
		for i, tag := range s.Keywords {
			quoted[i] = `"` + tag + `"`
		}
		b.WriteString("," + eol + "        tags: new[] { " + strings.Join(quoted, ", ") + " }")
	}
	b.WriteString(")]" + eol)
	return b.String()
}

// OfflineDataAttribute renders the annotation listing a sample's offline items
func OfflineDataAttribute(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = `"` + id + `"`
	}
	return "[" + attributeNamespace + ".OfflineData(" + strings.Join(quoted, ", ") + ")]"
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r")
}

// Result describes one rewrite
type Result struct {
	Path string
	// Old is the annotation block found in the file
	Old string
	// New is the regenerated block
	New string
	// Changed reports whether the file content differs after the rewrite
	Changed bool

	content string
	codec   textio.Codec
}

// Content is the full rewritten file
func (r *Result) Content() string {
	return r.content
}

// Write saves the rewritten file in its original encoding
func (r *Result) Write() error {
	if err := textio.WriteText(r.Path, r.content, r.codec); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.Path, err)
	}
	return nil
}

// Prepare generates the annotation for the sample in dir from s without
// writing. The annotation keeps the line ending of the line it replaces.
func Prepare(s *metadata.Sample, dir string, p *platform.Platform) (*Result, error) {
	path := SourcePath(dir, p)
	res := &Result{Path: path}

	text, codec, err := textio.ReadText(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return res, err
	}
	res.codec = codec
	res.content = text

	lines := strings.SplitAfter(text, "\n")
	span, ok := FindSpan(lines)
	if !ok {
		return res, fmt.Errorf("%w: %s", ErrNoAnnotation, path)
	}

	eol := "\n"
	if strings.HasSuffix(lines[span.Start], "\r\n") {
		eol = "\r\n"
	}

	res.Old = strings.Join(lines[span.Start:span.End+1], "")
	res.New = Block(s, eol)
	if res.Old == res.New {
		return res, nil
	}

	res.content = strings.Join(lines[:span.Start], "") + res.New + strings.Join(lines[span.End+1:], "")
	res.Changed = true
	return res, nil
}

// Rewrite replaces the annotation in the code file of the sample in dir with
// one generated from s. The file keeps its encoding; unchanged files are not
// written.
func Rewrite(s *metadata.Sample, dir string, p *platform.Platform) (*Result, error) {
	res, err := Prepare(s, dir, p)
	if err != nil {
		return res, err
	}
	if res.Changed {
		if err := res.Write(); err != nil {
			return res, err
		}
	}
	return res, nil
}
