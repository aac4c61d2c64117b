package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/samplekit/samplekit/internal/platform"
	"github.com/samplekit/samplekit/internal/textio"
)

// SubBulletPrefix marks how-it-works entries that are sub-bullets of the
// preceding step
const SubBulletPrefix = "***"

// paragraphSep is the paragraph boundary of a readme
const paragraphSep = "\n\n"

// FromReadme builds the record for the sample whose readme is at path. The
// formal name is the readme's directory and the category its grandparent.
func FromReadme(path string, p *platform.Platform) (*Sample, error) {
	text, _, err := textio.ReadText(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrReadmeNotFound, path)
		}
		return nil, err
	}

	sampleDir := filepath.Dir(path)
	s := ParseReadme(text, filepath.Base(sampleDir), CategoryFor(sampleDir, p))
	s.RedirectFrom = Redirects(s.FormalName, p)
	return s, nil
}

// ParseReadme populates a record from readme text. Readmes with fewer than
// three paragraphs keep whatever was parsed before they ran out.
func ParseReadme(text, formalName, category string) *Sample {
	s := &Sample{FormalName: formalName, Category: category}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, paragraphSep)

	s.FriendlyName = parseTitle(parts[0])
	if len(parts) < 2 {
		return s
	}
	s.Description = parts[1]
	if len(parts) < 3 {
		return s
	}
	s.Images = []string{ExtractImage(parts[2])}

	heading := ""
	var body []string
	for _, part := range parts[2:] {
		if !strings.HasPrefix(part, "#") {
			body = append(body, part)
			continue
		}
		if len(body) > 0 {
			s.applySection(heading, body)
		}
		heading = part
		body = nil
	}
	// a heading with no paragraph after it is dropped
	if heading != "" && len(body) > 0 {
		s.applySection(heading, body)
	}
	return s
}

func parseTitle(part string) string {
	part = strings.TrimSpace(part)
	if !strings.HasPrefix(part, "#") {
		idx := strings.Index(part, "#")
		if idx == -1 {
			return part
		}
		part = part[idx:]
	}
	return strings.TrimSpace(strings.TrimLeft(part, "#"))
}

// section routes a heading's paragraphs into the record
type section struct {
	name  string
	match func(words map[string]bool) bool
	apply func(s *Sample, body []string)
}

func allWords(required ...string) func(map[string]bool) bool {
	return func(words map[string]bool) bool {
		for _, w := range required {
			if !words[w] {
				return false
			}
		}
		return true
	}
}

func anyWord(options ...string) func(map[string]bool) bool {
	return func(words map[string]bool) bool {
		for _, w := range options {
			if words[w] {
				return true
			}
		}
		return false
	}
}

// sections is evaluated in order; the first match wins
var sections = []section{
	{"use case", allWords("use", "case"), func(s *Sample, body []string) { s.UseCase = joinBody(body) }},
	{"how to use", allWords("use", "how"), func(s *Sample, body []string) { s.HowToUse = joinBody(body) }},
	{"how it works", allWords("works", "how"), func(s *Sample, body []string) { s.HowItWorks = parseSteps(joinBody(body)) }},
	{"relevant api", anyWord("api", "apis"), func(s *Sample, body []string) { s.RelevantAPI = parseAPIs(joinBody(body)) }},
	{"offline data", allWords("offline"), func(s *Sample, body []string) { s.OfflineData = ParseItemIDs(joinBody(body)) }},
	{"about the data", allWords("data", "about"), func(s *Sample, body []string) { s.DataStatement = joinBody(body) }},
	{"additional information", allWords("additional"), func(s *Sample, body []string) { s.AdditionalInfo = joinBody(body) }},
	{"tags", allWords("tags"), func(s *Sample, body []string) { s.Keywords = parseTags(joinBody(body)) }},
}

// headingWords normalizes a heading paragraph into its lower-case words
func headingWords(heading string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(strings.Trim(heading, "#"))) {
		words[w] = true
	}
	return words
}

// SectionFor returns the name of the section a heading is routed to, or ""
func SectionFor(heading string) string {
	words := headingWords(heading)
	for _, sec := range sections {
		if sec.match(words) {
			return sec.name
		}
	}
	return ""
}

func (s *Sample) applySection(heading string, body []string) {
	words := headingWords(heading)
	for _, sec := range sections {
		if sec.match(words) {
			sec.apply(s, body)
			return
		}
	}
}

func joinBody(body []string) string {
	return strings.Join(body, "\n")
}

// parseSteps keeps the text after the step number of each numbered line and
// marks bulleted lines as sub-bullets
func parseSteps(text string) []string {
	var steps []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "*") {
			steps = append(steps, SubBulletPrefix+strings.TrimSpace(strings.TrimLeft(line, "*")))
			continue
		}
		if _, after, ok := strings.Cut(line, "."); ok {
			line = strings.TrimSpace(after)
		}
		steps = append(steps, line)
	}
	return steps
}

func parseAPIs(text string) []string {
	var apis []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		api := strings.Trim(line, " \t*-`")
		api = strings.ReplaceAll(api, "::", ".")
		if api == "" || seen[api] {
			continue
		}
		seen[api] = true
		apis = append(apis, api)
	}
	sort.Strings(apis)
	return apis
}

var itemIDPattern = regexp.MustCompile(`(?i)[0-9a-f]{8}-?[0-9a-f]{4}-?[1-5][0-9a-f]{3}-?[89ab][0-9a-f]{3}-?[0-9a-f]{12}`)

// ParseItemIDs extracts UUID-shaped item IDs in order of first appearance
func ParseItemIDs(text string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, id := range itemIDPattern.FindAllString(text, -1) {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func parseTags(text string) []string {
	var tags []string
	for _, tag := range strings.Split(text, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}
