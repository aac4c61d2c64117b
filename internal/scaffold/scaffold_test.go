package scaffold

import (
	"bytes"
	"image"
	_ "image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samplekit/samplekit/internal/metadata"
	"github.com/samplekit/samplekit/internal/platform"
)

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

func platforms(t *testing.T, names ...string) []*platform.Platform {
	t.Helper()
	ps, err := platform.Resolve(names)
	require.NoError(t, err)
	return ps
}

func setupRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	wpf, err := platform.Lookup("WPF")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(wpf.RootDir(root), 0755))
	require.NoError(t, os.WriteFile(wpf.ProjectPath(root), []byte(wpfProject), 0644))
	return root
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestUnfriendlyName(t *testing.T) {
	assert.Equal(t, "DisplayAMapOffline", UnfriendlyName("Display a map (offline)"))
}

func TestNormalizeItemIDs(t *testing.T) {
	ids, err := NormalizeItemIDs([]string{
		"E1F3A7254CB74F2A9A8D8D9FCA1B2C3D",
		" e1f3a725-4cb7-4f2a-9a8d-8d9fca1b2c3d ",
		"",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1f3a7254cb74f2a9a8d8d9fca1b2c3d", "e1f3a7254cb74f2a9a8d8d9fca1b2c3d"}, ids)

	_, err = NormalizeItemIDs([]string{"not-an-id"})
	assert.ErrorIs(t, err, ErrInvalidItemID)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{"missing friendly name", Options{Category: "Map"}, "friendly name is required"},
		{"missing category", Options{FriendlyName: "Display map"}, "category is required"},
		{"bad sample name", Options{FriendlyName: "Display map", Category: "Map", SampleName: "1Display"}, "not a valid type name"},
		{"no platforms", Options{FriendlyName: "Display map", Category: "Map"}, "no platforms selected"},
		{"no template", Options{FriendlyName: "Display map", Category: "Map", Platforms: platforms(t, "MAUI")}, "no sample template"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	opts := Options{FriendlyName: " Display a map ", Category: "Map", Platforms: platforms(t, "WPF")}
	require.NoError(t, opts.Validate())
	assert.Equal(t, "DisplayAMap", opts.SampleName)
	assert.Equal(t, "Display a map", opts.FriendlyName)
	assert.NotZero(t, opts.Year)
}

func TestNew(t *testing.T) {
	root := setupRoot(t)
	opts := Options{
		Root:         root,
		Platforms:    platforms(t, "WPF", "WinUI"),
		FriendlyName: "Display a scene",
		Category:     "Scene",
		Description:  "Show a 3D scene.",
		Scene:        true,
		ItemIDs:      []string{"e1f3a725-4cb7-4f2a-9a8d-8d9fca1b2c3d"},
		Year:         2024,
	}

	res, err := New(opts)
	require.NoError(t, err)
	assert.Equal(t, "DisplayAScene", res.SampleName)
	require.Len(t, res.Dirs, 2)

	wpf := opts.Platforms[0]
	dir := wpf.SampleDir(root, "Scene", "DisplayAScene")

	code := readFile(t, filepath.Join(dir, "DisplayAScene.xaml.cs"))
	assert.Contains(t, code, "// Copyright 2024 Esri.")
	assert.Contains(t, code, "namespace ArcGISRuntime.WPF.Samples.DisplayAScene")
	assert.Contains(t, code, `name: "Display a scene",`)
	assert.Contains(t, code, `category: "Scene",`)
	assert.Contains(t, code, `[ArcGISRuntime.Samples.Shared.Attributes.OfflineData("e1f3a7254cb74f2a9a8d8d9fca1b2c3d")]`)
	assert.NotContains(t, code, "sample_name")

	xaml := readFile(t, filepath.Join(dir, "DisplayAScene.xaml"))
	assert.Contains(t, xaml, "SceneView")
	assert.NotContains(t, xaml, "Geo_View")

	readme := readFile(t, filepath.Join(dir, metadata.ReadmeFile))
	assert.Contains(t, readme, "# Display a scene\n\nShow a 3D scene.")
	assert.Contains(t, readme, "![Image of Display a scene](DisplayAScene.jpg)")

	s, err := metadata.FromJSON(filepath.Join(dir, metadata.JSONFile))
	require.NoError(t, err)
	assert.Equal(t, "DisplayAScene", s.FormalName)
	assert.Equal(t, "Display a scene", s.FriendlyName)
	assert.Equal(t, []string{"DisplayAScene.jpg"}, s.Images)
	assert.Equal(t, []string{"e1f3a7254cb74f2a9a8d8d9fca1b2c3d"}, s.OfflineData)
	assert.Contains(t, s.SourceFiles, "DisplayAScene.xaml.cs")

	cfg, format, err := image.DecodeConfig(bytes.NewReader([]byte(readFile(t, filepath.Join(dir, "DisplayAScene.jpg")))))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)

	project := readFile(t, wpf.ProjectPath(root))
	assert.Contains(t, project, `<Content Include="Samples\Scene\DisplayAScene\DisplayAScene.jpg">`)
	assert.Contains(t, project, `<Page Include="Samples\Scene\DisplayAScene\DisplayAScene.xaml">`)
	assert.Contains(t, project, `<Compile Include="Samples\Scene\DisplayAScene\DisplayAScene.xaml.cs">`)

	winui := opts.Platforms[1]
	assert.FileExists(t, filepath.Join(winui.SampleDir(root, "Scene", "DisplayAScene"), "DisplayAScene.xaml.cs"))
}

func TestNewRefusesExistingSample(t *testing.T) {
	root := setupRoot(t)
	opts := Options{Root: root, Platforms: platforms(t, "WinUI"), FriendlyName: "Display map", Category: "Map"}
	_, err := New(opts)
	require.NoError(t, err)

	_, err = New(opts)
	assert.ErrorIs(t, err, ErrSampleExists)
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		input   string
		want    [4]string
		wantErr bool
	}{
		{"Map,DisplayMap-Layers,ShowMap", [4]string{"Map", "DisplayMap", "Layers", "ShowMap"}, false},
		{" Map , DisplayMap - Map , DisplayMap2 ", [4]string{"Map", "DisplayMap", "Map", "DisplayMap2"}, false},
		{"Map,DisplayMap", [4]string{}, true},
		{"Map-Layers,ShowMap", [4]string{}, true},
		{",DisplayMap-Layers,ShowMap", [4]string{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			oc, on, nc, nn, err := ParseMove(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, [4]string{oc, on, nc, nn})
		})
	}
}

func TestRename(t *testing.T) {
	root := setupRoot(t)
	ps := platforms(t, "WPF", "WinUI")
	_, err := New(Options{Root: root, Platforms: ps, FriendlyName: "Display map", Category: "Map"})
	require.NoError(t, err)

	wpf := ps[0]
	oldDir := wpf.SampleDir(root, "Map", "DisplayMap")
	require.NoError(t, os.WriteFile(filepath.Join(oldDir, "notes.md"), []byte("scratch"), 0644))
	screenshot := readFile(t, filepath.Join(oldDir, "DisplayMap.jpg"))

	moved, err := Rename(RenameOptions{
		Root:        root,
		Platforms:   ps,
		OldCategory: "Map",
		OldName:     "DisplayMap",
		NewCategory: "Layers",
		NewName:     "ShowMap",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	newDir := wpf.SampleDir(root, "Layers", "ShowMap")
	code := readFile(t, filepath.Join(newDir, "ShowMap.xaml.cs"))
	assert.Contains(t, code, "public partial class ShowMap")
	assert.NotContains(t, code, "DisplayMap")
	assert.Equal(t, screenshot, readFile(t, filepath.Join(newDir, "ShowMap.jpg")))

	s, err := metadata.FromJSON(filepath.Join(newDir, metadata.JSONFile))
	require.NoError(t, err)
	assert.Equal(t, "ShowMap", s.FormalName)

	assert.NoDirExists(t, oldDir)
	assert.NoDirExists(t, filepath.Dir(oldDir))

	project := readFile(t, wpf.ProjectPath(root))
	assert.Contains(t, project, `Samples\Layers\ShowMap\ShowMap.jpg`)
	assert.NotContains(t, project, "DisplayMap")
}

func TestRenameKeepsUnknownFiles(t *testing.T) {
	root := setupRoot(t)
	ps := platforms(t, "WinUI")
	_, err := New(Options{Root: root, Platforms: ps, FriendlyName: "Display map", Category: "Map"})
	require.NoError(t, err)

	oldDir := ps[0].SampleDir(root, "Map", "DisplayMap")
	require.NoError(t, os.WriteFile(filepath.Join(oldDir, "Helper.cs"), []byte("class Helper {}"), 0644))

	_, err = Rename(RenameOptions{Root: root, Platforms: ps, OldCategory: "Map", OldName: "DisplayMap", NewCategory: "Map", NewName: "ShowMap"})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(oldDir, "Helper.cs"))
	assert.NoFileExists(t, filepath.Join(oldDir, metadata.ReadmeFile))
}

func TestRenameMissingSample(t *testing.T) {
	root := setupRoot(t)
	_, err := Rename(RenameOptions{Root: root, Platforms: platforms(t, "WinUI"), OldCategory: "Map", OldName: "Nope", NewCategory: "Map", NewName: "Other"})
	assert.ErrorIs(t, err, ErrSampleNotFound)
}
