// Package toc renders the per-platform table of contents readme.
package toc

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/samplekit/samplekit/internal/metadata"
	"github.com/samplekit/samplekit/internal/platform"
	"github.com/samplekit/samplekit/internal/textio"
)

const header = "# Table of contents\n\n"

// Categories groups sample records by display category
type Categories map[string][]*metadata.Sample

// Add files s under its category
func (c Categories) Add(s *metadata.Sample) {
	c[s.Category] = append(c[s.Category], s)
}

// Render builds the table of contents. Categories are sorted by name and
// samples by friendly name. Ignored samples are left out, and so are
// categories holding nothing else. Links are relative to the directory
// holding the platform readme.
func Render(categories Categories, relative string) string {
	var b strings.Builder
	b.WriteString(header)

	names := make([]string, 0, len(categories))
	for name, samples := range categories {
		if listed(samples) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, category := range names {
		fmt.Fprintf(&b, "## %s\n\n", category)

		samples := make([]*metadata.Sample, 0, len(categories[category]))
		for _, s := range categories[category] {
			if !s.Ignore {
				samples = append(samples, s)
			}
		}
		sort.SliceStable(samples, func(i, j int) bool {
			return samples[i].FriendlyName < samples[j].FriendlyName
		})

		folder := FormalCategory(category)
		for _, s := range samples {
			link := Quote(relative + "/" + folder + "/" + s.FormalName)
			fmt.Fprintf(&b, "* [%s](%s) - %s\n", s.FriendlyName, link, s.Description)
		}
		b.WriteString("\n")
	}

	out := b.String()
	return out[:len(out)-1]
}

func listed(samples []*metadata.Sample) bool {
	for _, s := range samples {
		if !s.Ignore {
			return true
		}
	}
	return false
}

// FormalCategory turns a display category back into its folder name. Only
// categories containing a space are changed.
func FormalCategory(category string) string {
	if !strings.Contains(category, " ") {
		return category
	}
	title := cases.Title(language.Und).String(category)
	return strings.ReplaceAll(title, " ", "")
}

// Path is where the table of contents of p is written
func Path(root string, p *platform.Platform) string {
	return filepath.Join(p.SamplesDir(root), "..", "..", metadata.ReadmeFile)
}

// Write renders the table of contents of p and writes it to Path
func Write(root string, p *platform.Platform, categories Categories) error {
	if err := textio.WriteText(Path(root, p), Render(categories, p.TOCPath), textio.UTF8); err != nil {
		return fmt.Errorf("failed to write table of contents for %s: %w", p.Name, err)
	}
	return nil
}

const upperHex = "0123456789ABCDEF"

// Quote percent-encodes a URL path. Letters, digits, "_.-~" and "/" are kept.
func Quote(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || c == '/' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '_', c == '.', c == '-', c == '~':
		return true
	}
	return false
}
