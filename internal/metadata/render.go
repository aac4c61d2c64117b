package metadata

import (
	"context"
	"fmt"
	"strings"

	"github.com/samplekit/samplekit/internal/textio"
)

// ItemURL is the public page of a portal item
const ItemURL = "https://www.arcgis.com/home/item.html?id="

// Item is the portal description of an offline data item
type Item struct {
	ID      string
	Title   string
	Snippet string
}

// ItemDescriber looks up offline data items on the portal
type ItemDescriber interface {
	DescribeItem(ctx context.Context, id string) (Item, error)
}

// Section headings written by RenderReadme
const (
	HeadingUseCase    = "Use case"
	HeadingHowToUse   = "How to use the sample"
	HeadingHowItWorks = "How it works"
	HeadingAPI        = "Relevant API"
	HeadingOffline    = "Offline data"
	HeadingAboutData  = "About the data"
	HeadingAdditional = "Additional information"
	HeadingTags       = "Tags"
)

// RenderReadme writes a record back out as readme markdown. Empty sections are
// omitted. Offline items are titled through describer when it is non-nil; a
// failed lookup falls back to a bare item link.
func RenderReadme(ctx context.Context, s *Sample, describer ItemDescriber) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", s.FriendlyName)
	b.WriteString(s.Description)
	b.WriteString(paragraphSep)

	image := s.FormalName + ".jpg"
	if len(s.Images) > 0 {
		image = s.Images[0]
	}
	fmt.Fprintf(&b, "![%s](%s)\n\n", s.FriendlyName, image)

	writeSection(&b, HeadingUseCase, s.UseCase)
	writeSection(&b, HeadingHowToUse, s.HowToUse)
	writeSection(&b, HeadingHowItWorks, renderSteps(s.HowItWorks))
	writeSection(&b, HeadingAPI, bulletList(s.RelevantAPI))
	writeSection(&b, HeadingOffline, renderOffline(ctx, s.OfflineData, describer))
	writeSection(&b, HeadingAboutData, s.DataStatement)
	writeSection(&b, HeadingAdditional, s.AdditionalInfo)
	writeSection(&b, HeadingTags, strings.Join(s.Keywords, ", "))

	return strings.TrimSuffix(b.String(), "\n")
}

// FlushReadme renders the record to path
func (s *Sample) FlushReadme(ctx context.Context, path string, describer ItemDescriber) error {
	return textio.WriteText(path, RenderReadme(ctx, s, describer), textio.UTF8)
}

func writeSection(b *strings.Builder, heading, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	fmt.Fprintf(b, "## %s\n\n%s\n\n", heading, body)
}

func renderSteps(steps []string) string {
	var lines []string
	n := 0
	for _, step := range steps {
		if sub, ok := strings.CutPrefix(step, SubBulletPrefix); ok {
			lines = append(lines, "    * "+sub)
			continue
		}
		n++
		lines = append(lines, fmt.Sprintf("%d. %s", n, step))
	}
	return strings.Join(lines, "\n")
}

func bulletList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "* "+item)
	}
	return strings.Join(lines, "\n")
}

func renderOffline(ctx context.Context, ids []string, describer ItemDescriber) string {
	if len(ids) == 0 {
		return ""
	}
	lines := []string{"This sample downloads the following items from ArcGIS Online automatically:", ""}
	for _, id := range ids {
		title := id
		line := ""
		if describer != nil {
			if item, err := describer.DescribeItem(ctx, id); err == nil && item.Title != "" {
				title = item.Title
				if item.Snippet != "" {
					line = " - " + item.Snippet
				}
			}
		}
		lines = append(lines, fmt.Sprintf("* [%s](%s%s)%s", title, ItemURL, id, line))
	}
	return strings.Join(lines, "\n")
}
