package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeDescriber map[string]Item

func (f fakeDescriber) DescribeItem(_ context.Context, id string) (Item, error) {
	item, ok := f[id]
	if !ok {
		return Item{}, errors.New("not found")
	}
	return item, nil
}

func TestRenderReadmeRoundTrip(t *testing.T) {
	parsed := ParseReadme(fullReadme, "DisplayMap", "Map")
	rendered := RenderReadme(context.Background(), parsed, nil)
	reparsed := ParseReadme(rendered, "DisplayMap", "Map")

	assert.Equal(t, parsed, reparsed)
}

func TestRenderReadmeOmitsEmptySections(t *testing.T) {
	s := &Sample{
		FormalName:   "DisplayMap",
		FriendlyName: "Display map",
		Description:  "Display a map.",
		Keywords:     []string{"basemap", "map"},
	}

	want := "# Display map\n\nDisplay a map.\n\n![Display map](DisplayMap.jpg)\n\n## Tags\n\nbasemap, map\n"
	assert.Equal(t, want, RenderReadme(context.Background(), s, nil))
}

func TestRenderReadmeSteps(t *testing.T) {
	s := &Sample{HowItWorks: []string{"First.", "***detail", "Second."}}
	out := RenderReadme(context.Background(), s, nil)
	assert.Contains(t, out, "## How it works\n\n1. First.\n    * detail\n2. Second.\n")
}

func TestRenderReadmeOfflineItems(t *testing.T) {
	s := &Sample{OfflineData: []string{"aaaaaaaabbbb4cccdddd111111111111", "aaaaaaaabbbb4cccdddd222222222222"}}
	describer := fakeDescriber{
		"aaaaaaaabbbb4cccdddd111111111111": {Title: "San Diego", Snippet: "Mobile map package"},
	}

	out := RenderReadme(context.Background(), s, describer)
	assert.Contains(t, out, "* [San Diego](https://www.arcgis.com/home/item.html?id=aaaaaaaabbbb4cccdddd111111111111) - Mobile map package")
	assert.Contains(t, out, "* [aaaaaaaabbbb4cccdddd222222222222](https://www.arcgis.com/home/item.html?id=aaaaaaaabbbb4cccdddd222222222222)")
}
