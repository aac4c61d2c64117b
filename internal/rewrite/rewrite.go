// Package rewrite applies text-level source fixes to the C# files of a
// sample tree.
package rewrite

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/samplekit/samplekit/internal/format"
	"github.com/samplekit/samplekit/internal/textio"
)

// Func rewrites the content of one source file
type Func func(source string) string

// skipDirs are build output and VCS directories never rewritten
var skipDirs = map[string]bool{
	".git": true,
	".vs":  true,
	"bin":  true,
	"obj":  true,
}

// Change is a pending rewrite of one file
type Change struct {
	Path   string
	Before string
	After  string
	codec  textio.Codec
}

// Diff returns the line diff of the change, labelled relative to root
func (c *Change) Diff(root string) *format.DiffResult {
	label := c.Path
	if rel, err := filepath.Rel(root, c.Path); err == nil {
		label = filepath.ToSlash(rel)
	}
	return format.Diff(label, c.Before, c.After)
}

// Write stores the rewritten content in its original encoding
func (c *Change) Write() error {
	if err := textio.WriteText(c.Path, c.After, c.codec); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Path, err)
	}
	return nil
}

// Tree runs fn over every .cs file under dir and returns the files it
// changed, sorted by path. Nothing is written. Paths matching an ignore glob
// (relative to dir, forward slashes) are skipped.
func Tree(dir string, fn Func, ignore []string) ([]*Change, error) {
	var changes []*Change
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".cs") {
			return nil
		}
		if rel, err := filepath.Rel(dir, path); err == nil && matchAny(ignore, filepath.ToSlash(rel)) {
			return nil
		}

		before, codec, err := textio.ReadText(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if after := fn(before); after != before {
			changes = append(changes, &Change{Path: path, Before: before, After: after, codec: codec})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

// WriteAll writes every change, stopping at the first error
func WriteAll(changes []*Change) error {
	for _, c := range changes {
		if err := c.Write(); err != nil {
			return err
		}
	}
	return nil
}
