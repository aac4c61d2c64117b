package metadata

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/samplekit/samplekit/internal/textio"
)

var snippetExtensions = map[string]bool{
	".cs":   true,
	".xaml": true,
	".axml": true,
}

// classFilePattern matches helper files declared on a sample class, e.g.
// [ClassFile("Converters/HeadingConverter.cs")]
var classFilePattern = regexp.MustCompile(`ClassFile\(\s*((?:"[^"]*"\s*,?\s*)+)\)`)

var quotedPattern = regexp.MustCompile(`"([^"]*)"`)

// CollectSnippets lists the code and markup files of a sample. Files directly
// in dir are sorted descending so the code-behind file comes first; helper
// files declared with ClassFile annotations follow, sorted.
func CollectSnippets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list snippets: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if snippetExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))

	listed := make(map[string]bool, len(files))
	for _, f := range files {
		listed[f] = true
	}

	var extra []string
	for _, f := range files {
		if filepath.Ext(f) != ".cs" {
			continue
		}
		text, _, err := textio.ReadText(filepath.Join(dir, f))
		if err != nil {
			return nil, err
		}
		for _, ref := range ClassFiles(text) {
			if !listed[ref] {
				listed[ref] = true
				extra = append(extra, ref)
			}
		}
	}
	sort.Strings(extra)

	return append(files, extra...), nil
}

// ClassFiles returns the helper file paths declared in source, with forward
// slashes
func ClassFiles(source string) []string {
	var refs []string
	for _, m := range classFilePattern.FindAllStringSubmatch(source, -1) {
		for _, q := range quotedPattern.FindAllStringSubmatch(m[1], -1) {
			ref := strings.ReplaceAll(q[1], `\`, "/")
			if ref != "" {
				refs = append(refs, path.Clean(ref))
			}
		}
	}
	return refs
}
