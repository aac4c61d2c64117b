package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf16"

	"github.com/samplekit/samplekit/internal/textio"
)

// jsonRecord is the on-disk sidecar. Fields are declared in key order so the
// encoder emits sorted keys.
type jsonRecord struct {
	Category     string   `json:"category"`
	Description  string   `json:"description"`
	FormalName   string   `json:"formal_name"`
	Ignore       bool     `json:"ignore"`
	Images       []string `json:"images"`
	Keywords     []string `json:"keywords"`
	OfflineData  []string `json:"offline_data"`
	RedirectFrom []string `json:"redirect_from"`
	RelevantAPIs []string `json:"relevant_apis"`
	Snippets     []string `json:"snippets"`
	Title        string   `json:"title"`
}

// FromJSON reads the sidecar at path. Keys absent from the file, or holding a
// value of the wrong type, leave the field at its zero value. The formal name
// is always the sidecar's directory.
func FromJSON(path string) (*Sample, error) {
	text, _, err := textio.ReadText(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	s := &Sample{FormalName: filepath.Base(filepath.Dir(path))}
	copyKey(raw, "title", &s.FriendlyName)
	copyKey(raw, "category", &s.Category)
	copyKey(raw, "description", &s.Description)
	copyKey(raw, "ignore", &s.Ignore)
	copyKey(raw, "images", &s.Images)
	copyKey(raw, "keywords", &s.Keywords)
	copyKey(raw, "offline_data", &s.OfflineData)
	copyKey(raw, "redirect_from", &s.RedirectFrom)
	copyKey(raw, "relevant_apis", &s.RelevantAPI)
	copyKey(raw, "snippets", &s.SourceFiles)
	return s, nil
}

func copyKey[T any](raw map[string]json.RawMessage, key string, dst *T) {
	value, ok := raw[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(value, &v); err == nil {
		*dst = v
	}
}

// JSON renders the sidecar: every key present, keys sorted, four-space
// indent, non-ASCII escaped and no trailing newline
func (s *Sample) JSON() ([]byte, error) {
	rec := jsonRecord{
		Category:     s.Category,
		Description:  s.Description,
		FormalName:   s.FormalName,
		Ignore:       s.Ignore,
		Images:       nonNil(s.Images),
		Keywords:     nonNil(s.Keywords),
		OfflineData:  nonNil(s.OfflineData),
		RedirectFrom: nonNil(s.RedirectFrom),
		RelevantAPIs: nonNil(s.RelevantAPI),
		Snippets:     nonNil(s.SourceFiles),
		Title:        s.FriendlyName,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return []byte(asciiEscape(strings.TrimSuffix(buf.String(), "\n"))), nil
}

// FlushJSON writes the sidecar to path
func (s *Sample) FlushJSON(path string) error {
	data, err := s.JSON()
	if err != nil {
		return fmt.Errorf("failed to encode metadata for %s: %w", s.FormalName, err)
	}
	return textio.WriteText(path, string(data), textio.UTF8)
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// asciiEscape replaces every non-ASCII rune with its \uXXXX escape, using
// surrogate pairs outside the basic plane. Non-ASCII only occurs inside
// string literals of encoder output, so the result stays valid JSON.
func asciiEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&b, `\u%04x\u%04x`, hi, lo)
			continue
		}
		fmt.Fprintf(&b, `\u%04x`, r)
	}
	return b.String()
}
