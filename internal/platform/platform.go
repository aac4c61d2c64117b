// Package platform describes where each client platform keeps its samples
// inside the sample tree and how its files are named.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samplekit/samplekit/internal/cli/ui"
)

// Platform is one client platform of the sample tree
type Platform struct {
	// Name is the canonical platform name, e.g. "WPF"
	Name string
	// Aliases are alternative names accepted by Lookup
	Aliases []string
	// Root is the platform project directory relative to the sample root
	Root string
	// Samples is the samples directory relative to the sample root
	Samples string
	// TOCPath is the samples directory relative to the directory holding the platform readme
	TOCPath string
	// ProjectFile is the project file inside Root that lists sample files; empty when
	// the platform does not enumerate samples in a project file
	ProjectFile string
	// CodeExt is the extension of the primary code file
	CodeExt string
	// XAML reports whether samples carry a markup file next to the code file
	XAML bool
	// DocSegment is the platform's path segment in documentation URLs
	DocSegment string
	// Touch platforms use tap instead of click in instructions
	Touch bool
	// Desktop platforms can host server-only categories
	Desktop bool
	// LowercaseImages platforms require lower-case image resource names
	LowercaseImages bool
	// ForcedCategory overrides the directory-derived category
	ForcedCategory string
	// SkipTOC platforms do not get a generated table of contents
	SkipTOC bool
}

var platforms = []*Platform{
	{
		Name:        "UWP",
		Root:        "UWP/ArcGISRuntime.UWP.Viewer",
		Samples:     "UWP/ArcGISRuntime.UWP.Viewer/Samples",
		TOCPath:     "ArcGISRuntime.UWP.Viewer/Samples",
		ProjectFile: "ArcGISRuntime.UWP.Viewer.csproj",
		CodeExt:     ".xaml.cs",
		XAML:        true,
		DocSegment:  "uwp",
	},
	{
		Name:        "WPF",
		Root:        "WPF/ArcGISRuntime.WPF.Viewer",
		Samples:     "WPF/ArcGISRuntime.WPF.Viewer/Samples",
		TOCPath:     "ArcGISRuntime.WPF.Viewer/Samples",
		ProjectFile: "ArcGISRuntime.WPF.Viewer.NetFramework.csproj",
		CodeExt:     ".xaml.cs",
		XAML:        true,
		DocSegment:  "wpf",
		Desktop:     true,
	},
	{
		Name:            "Android",
		Root:            "Android/Xamarin.Android",
		Samples:         "Android/Xamarin.Android/Samples",
		TOCPath:         "Xamarin.Android/Samples",
		ProjectFile:     "ArcGISRuntime.Xamarin.Samples.Android.csproj",
		CodeExt:         ".cs",
		DocSegment:      "android",
		Touch:           true,
		LowercaseImages: true,
	},
	{
		Name:        "Forms",
		Aliases:     []string{"XFA", "XFI", "XFU"},
		Root:        "Forms/Shared",
		Samples:     "Forms/Shared/Samples",
		TOCPath:     "Shared/Samples",
		ProjectFile: "Forms.projitems",
		CodeExt:     ".xaml.cs",
		XAML:        true,
		DocSegment:  "forms",
		Touch:       true,
	},
	{
		Name:        "iOS",
		Root:        "iOS/Xamarin.iOS",
		Samples:     "iOS/Xamarin.iOS/Samples",
		TOCPath:     "Xamarin.iOS/Samples",
		ProjectFile: "ArcGISRuntime.Xamarin.Samples.iOS.csproj",
		CodeExt:     ".cs",
		DocSegment:  "ios",
		Touch:       true,
	},
	{
		Name:           "FormsAR",
		Root:           "Forms/AugmentedReality",
		Samples:        "Forms/AugmentedReality",
		TOCPath:        "AugmentedReality",
		CodeExt:        ".xaml.cs",
		XAML:           true,
		DocSegment:     "forms",
		Touch:          true,
		ForcedCategory: "Augmented reality",
		SkipTOC:        true,
	},
	{
		Name:       "WinUI",
		Root:       "WinUI/ArcGISRuntime.WinUI.Viewer",
		Samples:    "WinUI/ArcGISRuntime.WinUI.Viewer/Samples",
		TOCPath:    "ArcGISRuntime.WinUI.Viewer/Samples",
		CodeExt:    ".xaml.cs",
		XAML:       true,
		DocSegment: "winui",
		Desktop:    true,
	},
	{
		Name:       "MAUI",
		Root:       "MAUI/Maui.Samples",
		Samples:    "MAUI/Maui.Samples/Samples",
		TOCPath:    "Maui.Samples/Samples",
		CodeExt:    ".xaml.cs",
		XAML:       true,
		DocSegment: "maui",
		Touch:      true,
	},
}

// All returns every known platform in processing order
func All() []*Platform {
	out := make([]*Platform, len(platforms))
	copy(out, platforms)
	return out
}

// Names returns the canonical platform names in processing order
func Names() []string {
	names := make([]string, 0, len(platforms))
	for _, p := range platforms {
		names = append(names, p.Name)
	}
	return names
}

// UnknownError is returned by Lookup for names that match no platform
type UnknownError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unknown platform %q", e.Name)
	}
	return fmt.Sprintf("unknown platform %q (did you mean %s?)", e.Name, strings.Join(e.Suggestions, ", "))
}

// Lookup resolves a platform by name or alias, case-insensitively
func Lookup(name string) (*Platform, error) {
	for _, p := range platforms {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
		for _, alias := range p.Aliases {
			if strings.EqualFold(alias, name) {
				return p, nil
			}
		}
	}

	var candidates []string
	for _, p := range platforms {
		candidates = append(candidates, p.Name)
		candidates = append(candidates, p.Aliases...)
	}
	return nil, &UnknownError{Name: name, Suggestions: ui.FindSimilar(name, candidates, nil)}
}

// Resolve looks up every name, returning the first failure
func Resolve(names []string) ([]*Platform, error) {
	out := make([]*Platform, 0, len(names))
	for _, name := range names {
		p, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// RootDir returns the platform project directory under root
func (p *Platform) RootDir(root string) string {
	return filepath.Join(root, filepath.FromSlash(p.Root))
}

// SamplesDir returns the samples directory under root
func (p *Platform) SamplesDir(root string) string {
	return filepath.Join(root, filepath.FromSlash(p.Samples))
}

// SampleDir returns the directory of one sample under root
func (p *Platform) SampleDir(root, category, name string) string {
	return filepath.Join(p.SamplesDir(root), category, name)
}

// ProjectPath returns the project file path under root, or "" when the
// platform has none
func (p *Platform) ProjectPath(root string) string {
	if p.ProjectFile == "" {
		return ""
	}
	return filepath.Join(p.RootDir(root), p.ProjectFile)
}

func (p *Platform) String() string {
	return p.Name
}

// SampleRef identifies one sample directory found by Walk
type SampleRef struct {
	Platform *Platform
	Category string
	Name     string
	Dir      string
}

// Walk calls fn for every <category>/<sample> directory under the platform's
// samples directory, both levels in sorted order. Files at either level are
// ignored. An error from fn stops the walk and is returned.
func Walk(root string, p *Platform, fn func(SampleRef) error) error {
	samplesDir := p.SamplesDir(root)
	categories, err := readDirs(samplesDir)
	if err != nil {
		return fmt.Errorf("failed to read samples directory for %s: %w", p.Name, err)
	}

	for _, category := range categories {
		categoryDir := filepath.Join(samplesDir, category)
		samples, err := readDirs(categoryDir)
		if err != nil {
			return fmt.Errorf("failed to read category %s: %w", category, err)
		}
		for _, name := range samples {
			ref := SampleRef{Platform: p, Category: category, Name: name, Dir: filepath.Join(categoryDir, name)}
			if err := fn(ref); err != nil {
				return err
			}
		}
	}
	return nil
}

func readDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
