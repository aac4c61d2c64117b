package keycheck

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var hunkHeader = regexp.MustCompile(`^@@ -\d+(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// ScanUnifiedDiff scans the added lines of a unified diff such as the output
// of git diff --cached
func (s *Scanner) ScanUnifiedDiff(r io.Reader) ([]Finding, error) {
	var (
		findings []Finding
		file     string
		line     int
		// lines of the current hunk still expected on each side
		oldLeft, newLeft int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		text := sc.Text()
		inHunk := oldLeft > 0 || newLeft > 0
		switch {
		case inHunk && strings.HasPrefix(text, "+"):
			if file != "" && !s.Ignored(file) {
				findings = append(findings, s.scanHunkLine(file, line, text[1:])...)
			}
			line++
			newLeft--
		case inHunk && strings.HasPrefix(text, "-"):
			oldLeft--
		case inHunk && (strings.HasPrefix(text, " ") || text == ""):
			line++
			oldLeft--
			newLeft--
		case inHunk:
			// "\ No newline at end of file"
		case strings.HasPrefix(text, "diff "):
			file = ""
		case strings.HasPrefix(text, "+++ "):
			file = diffPath(strings.TrimPrefix(text, "+++ "))
		case strings.HasPrefix(text, "@@"):
			m := hunkHeader.FindStringSubmatch(text)
			if m == nil {
				return findings, fmt.Errorf("malformed hunk header %q", text)
			}
			line, _ = strconv.Atoi(m[2])
			oldLeft, newLeft = hunkCount(m[1]), hunkCount(m[3])
		}
	}
	if err := sc.Err(); err != nil {
		return findings, fmt.Errorf("failed to read diff: %w", err)
	}
	return findings, nil
}

func hunkCount(s string) int {
	if s == "" {
		return 1
	}
	n, _ := strconv.Atoi(s)
	return n
}

// diffPath strips the b/ prefix git adds to new paths; /dev/null means the
// file was deleted
func diffPath(p string) string {
	p, _, _ = strings.Cut(p, "\t")
	if p == "/dev/null" {
		return ""
	}
	return strings.TrimPrefix(p, "b/")
}
