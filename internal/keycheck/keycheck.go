// Package keycheck finds API keys added by commits or staged diffs.
package keycheck

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// Pattern is a named secret matcher. When Regex has a capture group the
// first group is the secret, otherwise the whole match is.
type Pattern struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Regex string `mapstructure:"regex" yaml:"regex"`
}

// DefaultPatterns match ArcGIS API keys and string literals assigned to
// ApiKey-like members
var DefaultPatterns = []Pattern{
	{Name: "arcgis-api-key", Regex: `\bAAP[KT][A-Za-z0-9_\-]{20,}`},
	{Name: "api-key-assignment", Regex: `(?i)\bapi_?key\s*[:=]\s*@?"([^"\s]{20,})"`},
}

// Finding is one suspected key on an added line
type Finding struct {
	// Commit is empty for findings from a unified diff
	Commit   string
	File     string
	Line     int
	Pattern  string
	Redacted string
}

func (f Finding) String() string {
	loc := fmt.Sprintf("%s:%d", f.File, f.Line)
	if f.Commit != "" {
		loc = shortHash(f.Commit) + " " + loc
	}
	return fmt.Sprintf("%s: %s %s", loc, f.Pattern, f.Redacted)
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}

type compiledPattern struct {
	name string
	re   *regexp.Regexp
}

// Scanner matches added lines against the configured patterns
type Scanner struct {
	patterns []compiledPattern
	ignore   []string
	logger   *zap.Logger
	onCommit func(hash string, scanned int)
}

// Options configures a Scanner
type Options struct {
	// Patterns defaults to DefaultPatterns when empty
	Patterns []Pattern
	// Ignore holds doublestar globs matched against repository-relative paths
	Ignore []string
	Logger *zap.Logger
	// OnCommit is called after each commit of a range scan
	OnCommit func(hash string, scanned int)
}

// NewScanner compiles opts into a scanner
func NewScanner(opts Options) (*Scanner, error) {
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	s := &Scanner{ignore: opts.Ignore, logger: opts.Logger, onCommit: opts.OnCommit}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	for _, p := range patterns {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", p.Name, err)
		}
		s.patterns = append(s.patterns, compiledPattern{name: p.Name, re: re})
	}
	for _, g := range opts.Ignore {
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("invalid ignore pattern %q", g)
		}
	}
	return s, nil
}

// Ignored reports whether path is excluded from scanning
func (s *Scanner) Ignored(path string) bool {
	for _, g := range s.ignore {
		if ok, _ := doublestar.Match(g, path); ok {
			return true
		}
	}
	return false
}

// ScanLine checks one added line
func (s *Scanner) ScanLine(file string, line int, text string) []Finding {
	var findings []Finding
	for _, p := range s.patterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			secret := m[0]
			if len(m) > 1 && m[1] != "" {
				secret = m[1]
			}
			findings = append(findings, Finding{
				File:     file,
				Line:     line,
				Pattern:  p.name,
				Redacted: Redact(secret),
			})
		}
	}
	return findings
}

// Redact keeps the first four characters of secret and replaces the rest
// with a short sha256 fingerprint
func Redact(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	prefix := secret
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return prefix + "…sha256:" + hex.EncodeToString(sum[:])[:12]
}

func (s *Scanner) scanHunkLine(file string, line int, text string) []Finding {
	text = strings.TrimSuffix(text, "\r")
	return s.ScanLine(file, line, text)
}
