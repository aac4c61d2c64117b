package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of a terminal message
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// Message is a diagnostic printed to the terminal. Context is a short heading
// such as "UNKNOWN PLATFORM"; Hints are follow-up commands.
type Message struct {
	Level       Level
	Context     string
	Problem     string
	Detail      string
	Suggestions []string
	Hints       []string
	NoColor     bool
}

// paint returns a color that honours noColor
func paint(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

func (l Level) style(noColor bool) (head, body *color.Color, symbol string) {
	switch l {
	case LevelWarning:
		return paint(noColor, color.FgYellow, color.Bold), paint(noColor, color.FgYellow), "⚠️"
	case LevelInfo:
		return paint(noColor, color.FgCyan, color.Bold), paint(noColor, color.FgCyan), "ℹ️"
	default:
		return paint(noColor, color.FgRed, color.Bold), paint(noColor, color.FgRed), "❌"
	}
}

// Format renders the message.
//
// Example output:
//
//	❌ UNKNOWN PLATFORM: WFP
//	   No platform is named 'WFP'.
//
//	   Did you mean: WPF?
//
//	   → List platforms: samplekit metadata --help
func (m Message) Format() string {
	var b strings.Builder
	head, body, symbol := m.Level.style(m.NoColor)

	if m.Context != "" {
		head.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(m.Context), m.Problem)
	} else {
		head.Fprintf(&b, "%s %s\n", symbol, m.Problem)
	}
	if m.Detail != "" {
		body.Fprintf(&b, "   %s\n", m.Detail)
	}

	if len(m.Suggestions) > 0 {
		b.WriteString("\n")
		paint(m.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(m.Suggestions, ", "))
	}

	if len(m.Hints) > 0 {
		b.WriteString("\n")
		cyan := paint(m.NoColor, color.FgCyan)
		for _, hint := range m.Hints {
			cyan.Fprintf(&b, "   → %s\n", hint)
		}
	}
	return b.String()
}

// Write prints the message to w
func (m Message) Write(w io.Writer) {
	fmt.Fprint(w, m.Format())
}

// FormatSuccess renders a green check line
func FormatSuccess(message string, noColor bool) string {
	return paint(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess prints a success line to w
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// UnknownPlatformError reports a platform name that matched nothing
func UnknownPlatformError(name string, suggestions []string, noColor bool) string {
	return Message{
		Context:     "unknown platform",
		Problem:     name,
		Detail:      fmt.Sprintf("No platform is named '%s'.", name),
		Suggestions: suggestions,
		Hints:       []string{"Configure platforms: samplekit.yaml (platforms)"},
		NoColor:     noColor,
	}.Format()
}

// SampleNotFoundError reports a sample missing from every selected platform
func SampleNotFoundError(category, name string, noColor bool) string {
	return Message{
		Context: "sample not found",
		Problem: category + "/" + name,
		Detail:  fmt.Sprintf("No platform has a sample '%s' in category '%s'.", name, category),
		Hints:   []string{"Check the sample root: samplekit --root <dir> ..."},
		NoColor: noColor,
	}.Format()
}

// ConfigError reports an invalid configuration
func ConfigError(message string, noColor bool) string {
	return Message{
		Context: "configuration error",
		Problem: message,
		Hints: []string{
			"View config: cat samplekit.yaml",
			"Get help: samplekit --help",
		},
		NoColor: noColor,
	}.Format()
}

// FindingsError summarises a failed check
func FindingsError(check string, count int, hint string, noColor bool) string {
	noun := "findings"
	if count == 1 {
		noun = "finding"
	}
	m := Message{
		Context: check + " failed",
		Problem: fmt.Sprintf("%d %s", count, noun),
		NoColor: noColor,
	}
	if hint != "" {
		m.Hints = []string{hint}
	}
	return m.Format()
}

// Warning renders a warning with optional suggestions
func Warning(message string, suggestions []string, noColor bool) string {
	return Message{Level: LevelWarning, Problem: message, Suggestions: suggestions, NoColor: noColor}.Format()
}

// Info renders an informational line
func Info(message string, noColor bool) string {
	return Message{Level: LevelInfo, Problem: message, NoColor: noColor}.Format()
}
