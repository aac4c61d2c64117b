// Package projfile edits the MSBuild project files that enumerate sample
// screenshots, markup and code.
package projfile

import (
	"fmt"
	"strings"

	"github.com/samplekit/samplekit/internal/platform"
	"github.com/samplekit/samplekit/internal/textio"
)

// Kind is the kind of sample file a project entry references
type Kind string

const (
	KindScreenshot Kind = "screenshot"
	KindCode       Kind = "code"
	KindXAML       Kind = "xaml"
)

// markers are the comments new entries are inserted after
var markers = []struct {
	comment string
	kind    Kind
}{
	{"<!-- Screenshots -->", KindScreenshot},
	{"<!-- Sample XAML -->", KindXAML},
	{"<!-- Sample Code -->", KindCode},
}

// entryIndent prefixes every inserted entry
const entryIndent = "    "

// Supported reports whether new samples are registered in p's project file
func Supported(p *platform.Platform) bool {
	switch p.Name {
	case "UWP", "WPF", "Android", "iOS", "Forms":
		return p.ProjectFile != ""
	}
	return false
}

// ProjectPath returns the backslash-separated path of a sample file as the
// project file references it, e.g. Samples\Map\DisplayMap\DisplayMap.jpg
func ProjectPath(category, sample, file string) string {
	return strings.Join([]string{"Samples", category, sample, file}, `\`)
}

func fileName(p *platform.Platform, sample string, kind Kind) string {
	switch kind {
	case KindScreenshot:
		return sample + ".jpg"
	case KindCode:
		return sample + p.CodeExt
	case KindXAML:
		return sample + ".xaml"
	}
	return ""
}

// EntryLine renders the project entry for one sample file. Platforms without
// such an entry for kind return "".
func EntryLine(p *platform.Platform, category, sample string, kind Kind) string {
	path := ProjectPath(category, sample, fileName(p, sample, kind))
	dependent := "      <DependentUpon>" + sample + ".xaml</DependentUpon>\n"

	var start, end string
	switch p.Name {
	case "UWP":
		switch kind {
		case KindScreenshot:
			start, end = `<Content Include="`, `" />`
		case KindXAML:
			start, end = `<Page Include="`, "\">\n      <Generator>MSBuild:Compile</Generator>\n      <SubType>Designer</SubType>\n    </Page>"
		case KindCode:
			start, end = `<Compile Include="`, "\">\n"+dependent+"    </Compile>"
		}
	case "WPF":
		switch kind {
		case KindScreenshot:
			start, end = `<Content Include="`, "\">\n      <CopyToOutputDirectory>PreserveNewest</CopyToOutputDirectory>\n    </Content>"
		case KindXAML:
			start, end = `<Page Include="`, "\">\n      <Generator>MSBuild:Compile</Generator>\n      <SubType>Designer</SubType>\n    </Page>"
		case KindCode:
			start, end = `<Compile Include="`, "\">\n"+dependent+"    </Compile>"
		}
	case "iOS", "Android":
		switch kind {
		case KindScreenshot:
			start, end = `<None Include="`, `" />`
		case KindCode:
			start, end = `<Compile Include="`, `" />`
		}
	case "Forms":
		const dir = "$(MSBuildThisFileDirectory)"
		switch kind {
		case KindScreenshot:
			start, end = `<None Include="`+dir, `" />`
		case KindCode:
			start, end = `<Compile Include="`+dir, "\">\n"+dependent+"      <SubType>Code</SubType>\n    </Compile>"
		case KindXAML:
			start, end = `<EmbeddedResource Include="`+dir, "\">\n      <Generator>MSBuild:UpdateDesignTimeXaml</Generator>\n    </EmbeddedResource>"
		}
	}
	if start == "" {
		return ""
	}
	return start + path + end
}

// InsertEntries adds the entries of a new sample after each marker comment.
// Lines are right-trimmed and joined with "\n".
func InsertEntries(content string, p *platform.Platform, category, sample string) string {
	var out []string
	for _, line := range splitLines(content) {
		out = append(out, strings.TrimRight(line, " \t\r"))
		for _, m := range markers {
			if !strings.Contains(line, m.comment) {
				continue
			}
			if entry := EntryLine(p, category, sample, m.kind); entry != "" {
				out = append(out, entryIndent+entry)
			}
			break
		}
	}
	return strings.Join(out, "\n")
}

// MoveEntries rewrites the entries of a renamed or recategorised sample. On
// each line mentioning oldName the name is replaced everywhere and the
// category only once, so names containing the category survive.
func MoveEntries(content, oldCategory, newCategory, oldName, newName string) string {
	var out []string
	for _, line := range splitLines(content) {
		if strings.Contains(line, oldName) {
			line = strings.ReplaceAll(line, oldName, newName)
			line = strings.Replace(line, oldCategory, newCategory, 1)
		}
		out = append(out, strings.TrimRight(line, " \t\r"))
	}
	return strings.Join(out, "\n")
}

func splitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// Register inserts a new sample into p's project file under root
func Register(root string, p *platform.Platform, category, sample string) error {
	if !Supported(p) {
		return nil
	}
	return edit(p.ProjectPath(root), func(content string) string {
		return InsertEntries(content, p, category, sample)
	})
}

// Move updates p's project file under root for a renamed sample
func Move(root string, p *platform.Platform, oldCategory, newCategory, oldName, newName string) error {
	if !Supported(p) {
		return nil
	}
	return edit(p.ProjectPath(root), func(content string) string {
		return MoveEntries(content, oldCategory, newCategory, oldName, newName)
	})
}

func edit(path string, fn func(string) string) error {
	content, codec, err := textio.ReadText(path)
	if err != nil {
		return fmt.Errorf("failed to read project file: %w", err)
	}
	if err := textio.WriteText(path, fn(content), codec); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}
