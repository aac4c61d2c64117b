// Package metadata holds the per-sample metadata record and its three
// representations: the readme, the JSON sidecar and the generated readme.
package metadata

import (
	"errors"
	"path/filepath"

	"github.com/samplekit/samplekit/internal/platform"
)

const (
	// ReadmeFile is the readme name inside a sample directory
	ReadmeFile = "readme.md"
	// JSONFile is the metadata sidecar name inside a sample directory
	JSONFile = "readme.metadata.json"
)

// ErrReadmeNotFound is returned when a sample directory has no readme
var ErrReadmeNotFound = errors.New("readme not found")

// Sample is the metadata record of one sample. It is built fresh per run from
// either a readme or a JSON sidecar and discarded once flushed.
type Sample struct {
	// FormalName is the sample's directory name
	FormalName string
	// FriendlyName is the display title
	FriendlyName string
	// Category is the display category
	Category string
	// Keywords are the tags, sorted
	Keywords []string
	// RelevantAPI is de-duplicated and sorted
	RelevantAPI []string
	Images      []string
	SourceFiles []string
	// RedirectFrom always starts with the canonical documentation URL
	RedirectFrom []string
	// OfflineData lists item IDs hosted on the portal
	OfflineData []string
	Description string
	HowToUse    string
	// HowItWorks is one entry per step; sub-bullets carry SubBulletPrefix
	HowItWorks     []string
	UseCase        string
	DataStatement  string
	AdditionalInfo string
	Ignore         bool
}

// categoryRenames maps category directory names to display categories
var categoryRenames = map[string]string{
	"LocalServer":     "Local Server",
	"NetworkAnalysis": "Network analysis",
	"UtilityNetwork":  "Utility network",
	"GraphicsOverlay": "Graphics overlay",
	"DynamicEntities": "Dynamic entities",
}

// DisplayCategory returns the display category for a category directory name
func DisplayCategory(dirName string) string {
	if renamed, ok := categoryRenames[dirName]; ok {
		return renamed
	}
	return dirName
}

// CategoryFor derives the category of the sample in sampleDir on p
func CategoryFor(sampleDir string, p *platform.Platform) string {
	if p != nil && p.ForcedCategory != "" {
		return p.ForcedCategory
	}
	return DisplayCategory(filepath.Base(filepath.Dir(filepath.Clean(sampleDir))))
}

// ImportFrom copies the fields that survive a rebuild from an existing JSON
// record: the ignore flag and any extra redirects
func (s *Sample) ImportFrom(existing *Sample) {
	if existing == nil {
		return
	}
	s.Ignore = existing.Ignore
	s.RedirectFrom = appendUnique(s.RedirectFrom, existing.RedirectFrom...)
}

func appendUnique(list []string, values ...string) []string {
	seen := make(map[string]bool, len(list))
	for _, v := range list {
		seen[v] = true
	}
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			list = append(list, v)
		}
	}
	return list
}
