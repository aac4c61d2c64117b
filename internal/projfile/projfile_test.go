package projfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samplekit/samplekit/internal/platform"
)

func mustPlatform(t *testing.T, name string) *platform.Platform {
	t.Helper()
	p, err := platform.Lookup(name)
	require.NoError(t, err)
	return p
}

func TestProjectPath(t *testing.T) {
	assert.Equal(t, `Samples\Data\EditAndSyncFeatures\EditAndSyncFeatures.jpg`, ProjectPath("Data", "EditAndSyncFeatures", "EditAndSyncFeatures.jpg"))
}

func TestEntryLine(t *testing.T) {
	tests := []struct {
		platform string
		kind     Kind
		want     string
	}{
		{"UWP", KindScreenshot, `<Content Include="Samples\Map\DisplayMap\DisplayMap.jpg" />`},
		{"UWP", KindXAML, "<Page Include=\"Samples\\Map\\DisplayMap\\DisplayMap.xaml\">\n      <Generator>MSBuild:Compile</Generator>\n      <SubType>Designer</SubType>\n    </Page>"},
		{"UWP", KindCode, "<Compile Include=\"Samples\\Map\\DisplayMap\\DisplayMap.xaml.cs\">\n      <DependentUpon>DisplayMap.xaml</DependentUpon>\n    </Compile>"},
		{"WPF", KindScreenshot, "<Content Include=\"Samples\\Map\\DisplayMap\\DisplayMap.jpg\">\n      <CopyToOutputDirectory>PreserveNewest</CopyToOutputDirectory>\n    </Content>"},
		{"iOS", KindScreenshot, `<None Include="Samples\Map\DisplayMap\DisplayMap.jpg" />`},
		{"Android", KindCode, `<Compile Include="Samples\Map\DisplayMap\DisplayMap.cs" />`},
		{"Android", KindXAML, ""},
		{"Forms", KindScreenshot, `<None Include="$(MSBuildThisFileDirectory)Samples\Map\DisplayMap\DisplayMap.jpg" />`},
		{"Forms", KindCode, "<Compile Include=\"$(MSBuildThisFileDirectory)Samples\\Map\\DisplayMap\\DisplayMap.xaml.cs\">\n      <DependentUpon>DisplayMap.xaml</DependentUpon>\n      <SubType>Code</SubType>\n    </Compile>"},
		{"Forms", KindXAML, "<EmbeddedResource Include=\"$(MSBuildThisFileDirectory)Samples\\Map\\DisplayMap\\DisplayMap.xaml\">\n      <Generator>MSBuild:UpdateDesignTimeXaml</Generator>\n    </EmbeddedResource>"},
		{"WinUI", KindCode, ""},
	}

	for _, tt := range tests {
		t.Run(tt.platform+"/"+string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, EntryLine(mustPlatform(t, tt.platform), "Map", "DisplayMap", tt.kind))
		})
	}
}

const project = "<Project>  \r\n" +
	"  <ItemGroup>\r\n" +
	"    <!-- Screenshots -->\r\n" +
	"    <None Include=\"Samples\\Layers\\AddLayer\\AddLayer.jpg\" />\r\n" +
	"  </ItemGroup>\r\n" +
	"  <ItemGroup>\r\n" +
	"    <!-- Sample Code -->\r\n" +
	"  </ItemGroup>\r\n" +
	"</Project>\r\n"

func TestInsertEntries(t *testing.T) {
	got := InsertEntries(project, mustPlatform(t, "iOS"), "Map", "DisplayMap")
	want := "<Project>\n" +
		"  <ItemGroup>\n" +
		"    <!-- Screenshots -->\n" +
		"    <None Include=\"Samples\\Map\\DisplayMap\\DisplayMap.jpg\" />\n" +
		"    <None Include=\"Samples\\Layers\\AddLayer\\AddLayer.jpg\" />\n" +
		"  </ItemGroup>\n" +
		"  <ItemGroup>\n" +
		"    <!-- Sample Code -->\n" +
		"    <Compile Include=\"Samples\\Map\\DisplayMap\\DisplayMap.cs\" />\n" +
		"  </ItemGroup>\n" +
		"</Project>"
	assert.Equal(t, want, got)
}

func TestMoveEntries(t *testing.T) {
	content := "<None Include=\"Samples\\Map\\MapLoaded\\MapLoaded.jpg\" />\n" +
		"<None Include=\"Samples\\Map\\DisplayMap\\DisplayMap.jpg\" />\n"

	got := MoveEntries(content, "Map", "Layers", "MapLoaded", "LayerLoaded")
	want := "<None Include=\"Samples\\Layers\\LayerLoaded\\LayerLoaded.jpg\" />\n" +
		"<None Include=\"Samples\\Map\\DisplayMap\\DisplayMap.jpg\" />"
	assert.Equal(t, want, got)
}

func TestSupported(t *testing.T) {
	for _, name := range []string{"UWP", "WPF", "Android", "iOS", "Forms"} {
		assert.True(t, Supported(mustPlatform(t, name)), name)
	}
	for _, name := range []string{"WinUI", "MAUI", "FormsAR"} {
		assert.False(t, Supported(mustPlatform(t, name)), name)
	}
}

func TestRegisterAndMove(t *testing.T) {
	root := t.TempDir()
	android := mustPlatform(t, "Android")
	path := android.ProjectPath(root)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("<!-- Screenshots -->\n<!-- Sample Code -->\n"), 0644))

	require.NoError(t, Register(root, android, "Map", "DisplayMap"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<Compile Include="Samples\Map\DisplayMap\DisplayMap.cs" />`)

	require.NoError(t, Move(root, android, "Map", "Maps", "DisplayMap", "ShowMap"))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<Compile Include="Samples\Maps\ShowMap\ShowMap.cs" />`)
	assert.NotContains(t, string(data), "DisplayMap")

	// platforms without a project file are left alone
	require.NoError(t, Register(root, mustPlatform(t, "WinUI"), "Map", "DisplayMap"))
}

func TestRegisterMissingProject(t *testing.T) {
	assert.Error(t, Register(t.TempDir(), mustPlatform(t, "WPF"), "Map", "DisplayMap"))
}
