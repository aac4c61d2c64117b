package propagate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samplekit/samplekit/internal/logging"
	"github.com/samplekit/samplekit/internal/metadata"
	"github.com/samplekit/samplekit/internal/platform"
	"github.com/samplekit/samplekit/internal/report"
)

func mustPlatform(t *testing.T, name string) *platform.Platform {
	t.Helper()
	p, err := platform.Lookup(name)
	require.NoError(t, err)
	return p
}

func TestTouchWording(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Click the map.", "Tap the map."},
		{"click and clicks", "tap and taps"},
		{"Once clicked, keep clicking.", "Once tapped, keep tapping."},
		{"CLICK HERE", "TAP HERE"},
		{"double-click to zoom", "double-tap to zoom"},
		{"clickable areas", "clickable areas"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TouchWording(tt.in))
	}
}

func TestLowercaseImages(t *testing.T) {
	in := "![Display Map](images/DisplayMap.JPG)\n<img src=\"Screens/OpenMap.png\" width=\"350\"/>\n[Link](Other.md)"
	want := "![Display Map](images/displaymap.jpg)\n<img src=\"Screens/openmap.png\" width=\"350\"/>\n[Link](Other.md)"
	assert.Equal(t, want, LowercaseImages(in))
}

func TestTransform(t *testing.T) {
	wpf := mustPlatform(t, "WPF")
	android := mustPlatform(t, "Android")
	uwp := mustPlatform(t, "UWP")

	text := "Click the map.\n\n![Map](DisplayMap.jpg)\n\nSee [docs](https://developers.arcgis.com/net/wpf/guide/)."
	rules := &Rules{Replacements: map[string][]Replacement{"Android": {{From: "docs", To: "guide"}}}}

	got := Transform(text, wpf, android, rules)
	assert.Equal(t, "Tap the map.\n\n![Map](displaymap.jpg)\n\nSee [guide](https://developers.arcgis.com/net/android/guide/).", got)

	got = Transform(text, wpf, uwp, rules)
	assert.Equal(t, "Click the map.\n\n![Map](DisplayMap.jpg)\n\nSee [docs](https://developers.arcgis.com/net/uwp/guide/).", got)
}

func writeReadme(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	if content != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, metadata.ReadmeFile), []byte(content), 0644))
	}
}

func TestPropagatorRun(t *testing.T) {
	root := t.TempDir()
	wpf := mustPlatform(t, "WPF")
	ios := mustPlatform(t, "iOS")
	winui := mustPlatform(t, "WinUI")

	writeReadme(t, wpf.SampleDir(root, "Map", "DisplayMap"), "# Display map\n\nClick it.")
	writeReadme(t, wpf.SampleDir(root, "Map", "Excluded"), "# Excluded\n\nClick it.")
	writeReadme(t, wpf.SampleDir(root, "LocalServer", "StartServer"), "# Start\n\nClick it.")
	writeReadme(t, wpf.SampleDir(root, "Map", "WpfOnly"), "# Only\n\nClick it.")

	writeReadme(t, ios.SampleDir(root, "Map", "DisplayMap"), "old")
	writeReadme(t, ios.SampleDir(root, "Map", "Excluded"), "keep me")
	writeReadme(t, ios.SampleDir(root, "LocalServer", "StartServer"), "")
	writeReadme(t, winui.SampleDir(root, "LocalServer", "StartServer"), "")
	writeReadme(t, winui.SampleDir(root, "Map", "DisplayMap"), "# Display map\n\nClick it.")

	rules := DefaultRules()
	rules.Exclusions = []Exclusion{{Sample: "Excluded", Platforms: []string{"iOS"}}}

	prop := &Propagator{Root: root, Rules: rules, Logger: logging.Nop()}
	rep, err := prop.Run(context.Background(), []*platform.Platform{wpf, ios, winui})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(ios.SampleDir(root, "Map", "DisplayMap"), metadata.ReadmeFile))
	require.NoError(t, err)
	assert.Equal(t, "# Display map\n\nTap it.", string(data))

	data, err = os.ReadFile(filepath.Join(ios.SampleDir(root, "Map", "Excluded"), metadata.ReadmeFile))
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))

	_, err = os.Stat(filepath.Join(ios.SampleDir(root, "LocalServer", "StartServer"), metadata.ReadmeFile))
	assert.True(t, os.IsNotExist(err))

	data, err = os.ReadFile(filepath.Join(winui.SampleDir(root, "LocalServer", "StartServer"), metadata.ReadmeFile))
	require.NoError(t, err)
	assert.Equal(t, "# Start\n\nClick it.", string(data))

	statuses := map[string]report.Status{}
	for _, e := range rep.Entries {
		statuses[e.Platform+"/"+e.Sample] = e.Status
	}
	assert.Equal(t, report.StatusChanged, statuses["iOS/DisplayMap"])
	assert.Equal(t, report.StatusSkipped, statuses["iOS/Excluded"])
	assert.Equal(t, report.StatusSkipped, statuses["iOS/StartServer"])
	assert.Equal(t, report.StatusSkipped, statuses["iOS/WpfOnly"])
	assert.Equal(t, report.StatusChanged, statuses["WinUI/StartServer"])
	assert.Equal(t, report.StatusOK, statuses["WinUI/DisplayMap"])
	assert.Equal(t, 0, rep.Count(report.StatusFailed))
}

func TestPropagatorDryRun(t *testing.T) {
	root := t.TempDir()
	wpf := mustPlatform(t, "WPF")
	ios := mustPlatform(t, "iOS")

	writeReadme(t, wpf.SampleDir(root, "Map", "DisplayMap"), "# Display map\n\nClick it.")
	writeReadme(t, ios.SampleDir(root, "Map", "DisplayMap"), "old")

	prop := &Propagator{Root: root, Rules: DefaultRules(), Logger: logging.Nop(), DryRun: true}
	rep, err := prop.Run(context.Background(), []*platform.Platform{ios})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Count(report.StatusChanged))

	data, err := os.ReadFile(filepath.Join(ios.SampleDir(root, "Map", "DisplayMap"), metadata.ReadmeFile))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestPropagatorMissingCanonicalTree(t *testing.T) {
	prop := &Propagator{Root: t.TempDir(), Rules: DefaultRules(), Logger: logging.Nop()}
	_, err := prop.Run(context.Background(), nil)
	assert.Error(t, err)
}
