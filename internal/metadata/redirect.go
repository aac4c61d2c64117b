package metadata

import (
	"fmt"

	"github.com/samplekit/samplekit/internal/platform"
	utilstrings "github.com/samplekit/samplekit/internal/util/strings"
)

const defaultDocSegment = "wpf"

// legacyNames lists previous formal names of renamed samples
var legacyNames = map[string][]string{
	"NavigateAR":                 {"RoutePlanner"},
	"ViewHiddenInfrastructureAR": {"PipePlacer"},
}

// DocURL is the documentation path of a sample on p
func DocURL(formalName string, p *platform.Platform) string {
	seg := defaultDocSegment
	if p != nil {
		seg = p.DocSegment
	}
	return fmt.Sprintf("/net/latest/%s/sample-code/%s.htm", seg, utilstrings.ToKebabCase(formalName))
}

// Redirects returns the canonical documentation URL followed by aliases for
// the sample's previous names
func Redirects(formalName string, p *platform.Platform) []string {
	urls := []string{DocURL(formalName, p)}
	for _, old := range legacyNames[formalName] {
		urls = appendUnique(urls, DocURL(old, p))
	}
	return urls
}
