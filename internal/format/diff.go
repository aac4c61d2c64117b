// Package format renders line diffs of rewritten files for dry runs.
package format

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffResult represents the difference between the original and rewritten
// content of one file
type DiffResult struct {
	Path     string
	Original string
	Updated  string
	Changed  bool
}

// Diff compares original and updated content of the file at path
func Diff(path, original, updated string) *DiffResult {
	return &DiffResult{
		Path:     path,
		Original: original,
		Updated:  updated,
		Changed:  original != updated,
	}
}

type opKind int

const (
	opEqual opKind = iota
	opDelete
	opInsert
)

type lineOp struct {
	kind opKind
	text string
	// 1-based line numbers in the original and updated content
	oldLine, newLine int
}

// lineOps computes a line-level diff
func (d *DiffResult) lineOps() []lineOp {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(d.Original, d.Updated)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var ops []lineOp
	oldLine, newLine := 1, 1
	for _, diff := range diffs {
		for _, text := range splitLines(diff.Text) {
			op := lineOp{text: text, oldLine: oldLine, newLine: newLine}
			switch diff.Type {
			case diffmatchpatch.DiffEqual:
				op.kind = opEqual
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				op.kind = opDelete
				oldLine++
			case diffmatchpatch.DiffInsert:
				op.kind = opInsert
				newLine++
			}
			ops = append(ops, op)
		}
	}
	return ops
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// String returns a human-readable diff with color highlighting
func (d *DiffResult) String() string {
	if !d.Changed {
		return color.GreenString("No changes needed")
	}

	var buf bytes.Buffer
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	if d.Path != "" {
		color.New(color.Bold).Fprintf(&buf, "%s\n", d.Path)
	}
	prevEqual := true
	for _, op := range d.lineOps() {
		switch op.kind {
		case opEqual:
			prevEqual = true
			continue
		case opDelete:
			if prevEqual {
				cyan.Fprintf(&buf, "@@ Line %d @@\n", op.oldLine)
			}
			red.Fprintf(&buf, "- %s\n", op.text)
		case opInsert:
			if prevEqual {
				cyan.Fprintf(&buf, "@@ Line %d @@\n", op.newLine)
			}
			green.Fprintf(&buf, "+ %s\n", op.text)
		}
		prevEqual = false
	}
	return buf.String()
}

// UnifiedDiff returns the diff in unified format with no context lines
func (d *DiffResult) UnifiedDiff() string {
	if !d.Changed {
		return ""
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- a/%s\n", d.Path)
	fmt.Fprintf(&buf, "+++ b/%s\n", d.Path)

	ops := d.lineOps()
	for i := 0; i < len(ops); {
		if ops[i].kind == opEqual {
			i++
			continue
		}
		j := i
		var removed, added []string
		for ; j < len(ops) && ops[j].kind != opEqual; j++ {
			if ops[j].kind == opDelete {
				removed = append(removed, ops[j].text)
			} else {
				added = append(added, ops[j].text)
			}
		}
		fmt.Fprintf(&buf, "@@ -%s +%s @@\n", hunkRange(ops[i].oldLine, len(removed)), hunkRange(ops[i].newLine, len(added)))
		for _, l := range removed {
			fmt.Fprintf(&buf, "-%s\n", l)
		}
		for _, l := range added {
			fmt.Fprintf(&buf, "+%s\n", l)
		}
		i = j
	}
	return buf.String()
}

// hunkRange renders a unified diff range; empty ranges point at the line
// before the change
func hunkRange(start, count int) string {
	switch count {
	case 0:
		return fmt.Sprintf("%d,0", start-1)
	case 1:
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d,%d", start, count)
}

// Stats returns statistics about the changes
func (d *DiffResult) Stats() string {
	if !d.Changed {
		return "No changes"
	}
	added, removed := 0, 0
	for _, op := range d.lineOps() {
		switch op.kind {
		case opInsert:
			added++
		case opDelete:
			removed++
		}
	}
	return fmt.Sprintf("%d lines added, %d removed", added, removed)
}
