package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Table renders findings and report rows in aligned columns
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// TableOptions configures table behavior
type TableOptions struct {
	NoColor bool
}

// NewTable creates a table with the given headers
func NewTable(w io.Writer, headers []string, opts *TableOptions) *Table {
	t := &Table{writer: w, headers: headers}
	if opts != nil {
		t.noColor = opts.NoColor
	}
	return t
}

// AddRow appends a row; cells beyond the header count are dropped
func (t *Table) AddRow(cells ...string) {
	if len(cells) > len(t.headers) {
		cells = cells[:len(t.headers)]
	}
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows added
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the header, a rule and every row. Nothing is written for a
// table without headers.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	bold := paint(t.noColor, color.Bold, color.FgCyan)
	gray := paint(t.noColor, color.FgHiBlack)

	last := len(t.headers) - 1
	for i, h := range t.headers {
		if i == last {
			bold.Fprint(t.writer, h)
		} else {
			bold.Fprint(t.writer, padRight(h, widths[i])+"  ")
		}
	}
	fmt.Fprintln(t.writer)

	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("─", w)
	}
	gray.Fprintln(t.writer, strings.Join(rules, "  "))

	for _, row := range t.rows {
		var line strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				line.WriteString(cell)
			} else {
				line.WriteString(padRight(cell, widths[i]) + "  ")
			}
		}
		fmt.Fprintln(t.writer, line.String())
	}
}

// padRight pads s with spaces to width runes
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// Summary renders aligned "key: value" lines, used for run totals
type Summary struct {
	writer  io.Writer
	keys    []string
	values  []string
	noColor bool
}

// NewSummary creates an empty summary
func NewSummary(w io.Writer, noColor bool) *Summary {
	return &Summary{writer: w, noColor: noColor}
}

// Add appends a key and value
func (s *Summary) Add(key string, value any) {
	s.keys = append(s.keys, key)
	s.values = append(s.values, fmt.Sprint(value))
}

// Render writes the lines
func (s *Summary) Render() {
	width := 0
	for _, k := range s.keys {
		width = max(width, utf8.RuneCountInString(k)+1)
	}
	cyan := paint(s.noColor, color.FgCyan)
	for i, k := range s.keys {
		cyan.Fprint(s.writer, padRight(k+":", width))
		fmt.Fprintf(s.writer, " %s\n", s.values[i])
	}
}

// Header writes a bold title underlined to its width, e.g. a platform name
// before that platform's findings
func Header(w io.Writer, title string, noColor bool) {
	paint(noColor, color.Bold, color.FgCyan).Fprintln(w, title)
	paint(noColor, color.FgHiBlack).Fprintln(w, strings.Repeat("─", utf8.RuneCountInString(title)))
}
