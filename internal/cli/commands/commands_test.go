package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samplekit/samplekit/internal/metadata"
	"github.com/samplekit/samplekit/internal/platform"
)

const displayMapReadme = `# Display map

Display a map with an imagery basemap.

![Image of display map](DisplayMap.jpg)

## How to use the sample

Pan and zoom to explore the map.

## Tags

basemap, map
`

const displayMapCode = `namespace ArcGISRuntime.WPF.Samples.DisplayMap
{
    [ArcGISRuntime.Samples.Shared.Attributes.Sample(
        "Old title",
        "Map",
        "",
        "")]
    public partial class DisplayMap
    {
    }
}
`

const wpfProject = "<Project>\n" +
	"  <ItemGroup>\n" +
	"    <!-- Screenshots -->\n" +
	"  </ItemGroup>\n" +
	"  <ItemGroup>\n" +
	"    <!-- Sample XAML -->\n" +
	"  </ItemGroup>\n" +
	"  <ItemGroup>\n" +
	"    <!-- Sample Code -->\n" +
	"  </ItemGroup>\n" +
	"</Project>"

// execute runs the root command in a directory without a config file
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("SAMPLEKIT_LOG_LEVEL", "error")

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--no-color"}, args...))

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWd) })
}

func lookup(t *testing.T, name string) *platform.Platform {
	t.Helper()
	p, err := platform.Lookup(name)
	require.NoError(t, err)
	return p
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// sampleTree creates a WPF tree holding Map/DisplayMap and the WPF project file
func sampleTree(t *testing.T) (root, dir string) {
	t.Helper()
	root = t.TempDir()
	wpf := lookup(t, "WPF")
	dir = wpf.SampleDir(root, "Map", "DisplayMap")
	writeFile(t, filepath.Join(dir, metadata.ReadmeFile), displayMapReadme)
	writeFile(t, filepath.Join(dir, "DisplayMap.xaml.cs"), displayMapCode)
	writeFile(t, filepath.Join(dir, "DisplayMap.xaml"), "<UserControl />\n")
	writeFile(t, wpf.ProjectPath(root), wpfProject)
	return root, dir
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "samplekit", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	expected := []string{"version", "metadata", "toc", "readme", "new", "rename", "move",
		"projfile", "screenshots", "keycheck", "rewrite", "lint", "watch"}
	registered := map[string]bool{}
	for _, sub := range cmd.Commands() {
		registered[sub.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "expected command %s to be registered", name)
	}

	for _, flag := range []string{"root", "config", "platforms", "verbose", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "expected persistent flag %s", flag)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.2.3-test"
	defer func() { Version = "dev" }()

	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "samplekit version: 1.2.3-test")
	assert.Contains(t, out, "Go version: ")
}

func TestMetadataSync(t *testing.T) {
	root, dir := sampleTree(t)

	out, _, err := execute(t, "", "metadata", "sync", root, "-p", "WPF")
	require.NoError(t, err)
	assert.Contains(t, out, "1 processed, 1 changed")

	sample, err := metadata.FromJSON(filepath.Join(dir, metadata.JSONFile))
	require.NoError(t, err)
	assert.Equal(t, "Display map", sample.FriendlyName)
	assert.Equal(t, []string{"basemap", "map"}, sample.Keywords)

	code := readFile(t, filepath.Join(dir, "DisplayMap.xaml.cs"))
	assert.Contains(t, code, `name: "Display map",`)
	assert.Contains(t, code, `instructions: "Pan and zoom to explore the map."`)

	contents := readFile(t, filepath.Join(root, "WPF", metadata.ReadmeFile))
	assert.Contains(t, contents, "# Table of contents")
	assert.Contains(t, contents, "* [Display map](ArcGISRuntime.WPF.Viewer/Samples/Map/DisplayMap) - Display a map with an imagery basemap.")
}

func TestMetadataDryRunWritesNothing(t *testing.T) {
	root, dir := sampleTree(t)

	out, _, err := execute(t, "", "metadata", "attributes", "--root", root, "-p", "WPF", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "DisplayMap.xaml.cs")
	assert.Contains(t, out, `+         name: "Display map",`)
	assert.Contains(t, out, "Dry run")

	assert.Equal(t, displayMapCode, readFile(t, filepath.Join(dir, "DisplayMap.xaml.cs")))
	assert.NoFileExists(t, filepath.Join(root, "WPF", metadata.ReadmeFile))
}

func TestMetadataArguments(t *testing.T) {
	root, _ := sampleTree(t)

	out, _, err := execute(t, "", "metadata")
	require.NoError(t, err)
	assert.Contains(t, out, "Operations:")

	_, errOut, err := execute(t, "", "metadata", "rebuild", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operation")
	assert.Contains(t, errOut, "Usage:")
}

func TestTOCCommand(t *testing.T) {
	root, dir := sampleTree(t)

	_, _, err := execute(t, "", "toc", root, "-p", "WPF")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "WPF", metadata.ReadmeFile))
	assert.NoFileExists(t, filepath.Join(dir, metadata.JSONFile))
}

func TestUnknownPlatform(t *testing.T) {
	root, _ := sampleTree(t)

	_, errOut, err := execute(t, "", "toc", root, "-p", "WFP")
	require.Error(t, err)
	assert.Contains(t, errOut, "UNKNOWN PLATFORM: WFP")
	assert.Contains(t, errOut, "Did you mean:")
}

func TestMissingRoot(t *testing.T) {
	_, _, err := execute(t, "", "toc", filepath.Join(t.TempDir(), "missing"), "-p", "WPF")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample root")
}

func TestReadmeCopy(t *testing.T) {
	root, _ := sampleTree(t)
	winui := lookup(t, "WinUI")
	target := winui.SampleDir(root, "Map", "DisplayMap")
	require.NoError(t, os.MkdirAll(target, 0755))

	out, _, err := execute(t, "", "readme", "copy", "--root", root, "-p", "WPF,WinUI")
	require.NoError(t, err)
	assert.Contains(t, out, "1 changed")
	assert.Equal(t, displayMapReadme, readFile(t, filepath.Join(target, metadata.ReadmeFile)))
}

func TestReadmeRender(t *testing.T) {
	_, dir := sampleTree(t)
	sample := metadata.ParseReadme(displayMapReadme, "DisplayMap", "Map")
	require.NoError(t, sample.FlushJSON(filepath.Join(dir, metadata.JSONFile)))
	require.NoError(t, os.Remove(filepath.Join(dir, metadata.ReadmeFile)))

	_, _, err := execute(t, "", "readme", "render", dir)
	require.NoError(t, err)

	rendered := readFile(t, filepath.Join(dir, metadata.ReadmeFile))
	assert.True(t, strings.HasPrefix(rendered, "# Display map\n\nDisplay a map with an imagery basemap."))
	assert.Contains(t, rendered, "## Tags\n\nbasemap, map")
}

func TestNewAndMove(t *testing.T) {
	root := t.TempDir()
	wpf := lookup(t, "WPF")
	writeFile(t, wpf.ProjectPath(root), wpfProject)

	out, _, err := execute(t, "", "new", "Display map", "-c", "Map", "-d", "Display a map.", "--root", root, "-p", "WPF")
	require.NoError(t, err)
	assert.Contains(t, out, "Created sample DisplayMap on 1 platforms")
	assert.Contains(t, out, "Category: Map\nView:     MapView\nFiles:    ")

	dir := wpf.SampleDir(root, "Map", "DisplayMap")
	assert.FileExists(t, filepath.Join(dir, "DisplayMap.xaml.cs"))
	assert.FileExists(t, filepath.Join(dir, "DisplayMap.jpg"))
	assert.Contains(t, readFile(t, wpf.ProjectPath(root)), `Samples\Map\DisplayMap\DisplayMap.xaml.cs`)

	out, _, err = execute(t, "", "move", "Map,DisplayMap-Maps,ShowMap", "--root", root, "-p", "WPF")
	require.NoError(t, err)
	assert.Contains(t, out, "Moved Map/DisplayMap to Maps/ShowMap on 1 platforms")

	moved := wpf.SampleDir(root, "Maps", "ShowMap")
	assert.FileExists(t, filepath.Join(moved, "ShowMap.xaml.cs"))
	assert.NoDirExists(t, dir)
	assert.Contains(t, readFile(t, wpf.ProjectPath(root)), `Samples\Maps\ShowMap\ShowMap.xaml.cs`)
}

func TestNewRequiresCategory(t *testing.T) {
	_, _, err := execute(t, "", "new", "Display map")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--category")
}

func TestRenameMissingSample(t *testing.T) {
	root, _ := sampleTree(t)

	_, errOut, err := execute(t, "", "rename", "Map", "Nope", "Map", "StillNope", "--root", root, "-p", "WPF")
	require.Error(t, err)
	assert.Contains(t, errOut, "SAMPLE NOT FOUND: Map/Nope")
	assert.NotContains(t, errOut, "Did you mean")

	_, errOut, err = execute(t, "", "rename", "Map", "DisplayMapp", "Map", "ShowMap", "--root", root, "-p", "WPF")
	require.Error(t, err)
	assert.Contains(t, errOut, "Similar sample in Map")
	assert.Contains(t, errOut, "Did you mean: DisplayMap?")

	_, _, err = execute(t, "", "rename", "Map", "DisplayMap")
	require.Error(t, err)
}

func TestProjfileCommand(t *testing.T) {
	root, _ := sampleTree(t)
	wpf := lookup(t, "WPF")

	out, _, err := execute(t, "", "projfile", "Map", "DisplayMap", "--root", root, "-p", "WPF,WinUI", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, `DisplayMap.xaml.cs`)
	assert.Equal(t, wpfProject, readFile(t, wpf.ProjectPath(root)))

	out, _, err = execute(t, "", "projfile", "Map", "DisplayMap", "--root", root, "-p", "WPF,WinUI")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered DisplayMap in 1 project files")
	assert.Contains(t, readFile(t, wpf.ProjectPath(root)), `<Page Include="Samples\Map\DisplayMap\DisplayMap.xaml">`)

	out, _, err = execute(t, "", "projfile", "Map", "DisplayMap", "--root", root, "-p", "WPF")
	require.NoError(t, err)
	assert.Contains(t, out, "0 changed")
}
