// Package scaffold creates new samples on every platform and renames or moves
// existing ones.
package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samplekit/samplekit/internal/attributes"
	"github.com/samplekit/samplekit/internal/metadata"
	"github.com/samplekit/samplekit/internal/platform"
	"github.com/samplekit/samplekit/internal/projfile"
	"github.com/samplekit/samplekit/internal/textio"
	utilstrings "github.com/samplekit/samplekit/internal/util/strings"
)

//go:embed templates/*
var templatesFS embed.FS

const templateDir = "templates/default"

var (
	// ErrSampleExists is returned when the target sample directory already has files
	ErrSampleExists = errors.New("sample already exists")
	// ErrInvalidItemID is returned for offline item IDs that are not UUIDs
	ErrInvalidItemID = errors.New("invalid item ID")
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DefaultPlatforms are the platforms new samples are created on
var DefaultPlatforms = []string{"UWP", "WPF", "Forms", "Android", "iOS", "WinUI"}

// Options describes a new sample
type Options struct {
	Root         string
	Platforms    []*platform.Platform
	FriendlyName string
	// SampleName is the type and directory name; derived from FriendlyName when empty
	SampleName  string
	Category    string
	Description string
	// Scene samples use a SceneView instead of a MapView
	Scene   bool
	ItemIDs []string
	// Year is stamped into copyright headers; the current year when zero
	Year int
}

// Validate checks opts and fills in derived values
func (o *Options) Validate() error {
	o.FriendlyName = strings.TrimSpace(o.FriendlyName)
	o.Category = strings.TrimSpace(o.Category)
	if o.FriendlyName == "" {
		return errors.New("friendly name is required")
	}
	if o.Category == "" {
		return errors.New("category is required")
	}
	if o.SampleName == "" {
		o.SampleName = UnfriendlyName(o.FriendlyName)
	}
	if !identifierPattern.MatchString(o.SampleName) {
		return fmt.Errorf("sample name %q is not a valid type name", o.SampleName)
	}
	if len(o.Platforms) == 0 {
		return errors.New("no platforms selected")
	}
	for _, p := range o.Platforms {
		if !HasTemplate(p) {
			return fmt.Errorf("no sample template for platform %s", p.Name)
		}
	}

	ids, err := NormalizeItemIDs(o.ItemIDs)
	if err != nil {
		return err
	}
	o.ItemIDs = ids

	if o.Year == 0 {
		o.Year = time.Now().Year()
	}
	return nil
}

// UnfriendlyName turns a display title into a sample type name
func UnfriendlyName(friendly string) string {
	return utilstrings.Unfriendly(friendly)
}

// NormalizeItemIDs validates item IDs and returns them as 32 lower-case hex digits
func NormalizeItemIDs(ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		u, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidItemID, id, err)
		}
		out = append(out, strings.ReplaceAll(u.String(), "-", ""))
	}
	return out, nil
}

// HasTemplate reports whether new samples can be generated for p
func HasTemplate(p *platform.Platform) bool {
	_, err := templatesFS.Open(templateDir + "/" + codeTemplate(p))
	return err == nil
}

func codeTemplate(p *platform.Platform) string {
	return p.Name + p.CodeExt
}

func (o *Options) replacer() *strings.Replacer {
	view := "MapView"
	if o.Scene {
		view = "SceneView"
	}
	return strings.NewReplacer(
		"sample_year", strconv.Itoa(o.Year),
		"friendly_name", o.FriendlyName,
		"sample_name", o.SampleName,
		"sample_category", o.Category,
		"sample_description", o.Description,
		"Geo_View", view,
		"[offline_data_attr]", attributes.OfflineDataAttribute(o.ItemIDs),
	)
}

// Result lists what New created
type Result struct {
	SampleName string
	Dirs       []string
	Files      []string
}

// New creates the sample on every platform in opts: project file entries,
// directories, code and markup from the templates, a placeholder screenshot,
// the readme and the metadata sidecar.
func New(opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	for _, p := range opts.Platforms {
		dir := p.SampleDir(opts.Root, opts.Category, opts.SampleName)
		if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrSampleExists, dir)
		}
	}

	for _, p := range opts.Platforms {
		if err := projfile.Register(opts.Root, p, opts.Category, opts.SampleName); err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
	}

	res := &Result{SampleName: opts.SampleName}
	screenshot, err := Placeholder(800, 600)
	if err != nil {
		return nil, err
	}
	rep := opts.replacer()

	for _, p := range opts.Platforms {
		dir := p.SampleDir(opts.Root, opts.Category, opts.SampleName)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create sample directory: %w", err)
		}
		res.Dirs = append(res.Dirs, dir)

		files := [][2]string{
			{codeTemplate(p), opts.SampleName + p.CodeExt},
			{"readme.md", metadata.ReadmeFile},
		}
		if p.XAML {
			files = append(files, [2]string{p.Name + ".xaml", opts.SampleName + ".xaml"})
		}
		for _, f := range files {
			dest := filepath.Join(dir, f[1])
			if err := renderTemplate(f[0], dest, rep); err != nil {
				return nil, err
			}
			res.Files = append(res.Files, dest)
		}

		imagePath := filepath.Join(dir, opts.SampleName+".jpg")
		if err := os.WriteFile(imagePath, screenshot, 0644); err != nil {
			return nil, fmt.Errorf("failed to write screenshot: %w", err)
		}
		res.Files = append(res.Files, imagePath)

		jsonPath := filepath.Join(dir, metadata.JSONFile)
		if err := newMetadata(opts, p, dir).FlushJSON(jsonPath); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, jsonPath)
	}
	return res, nil
}

func renderTemplate(name, dest string, rep *strings.Replacer) error {
	data, err := templatesFS.ReadFile(templateDir + "/" + name)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", name, err)
	}
	if err := textio.WriteText(dest, rep.Replace(string(data)), textio.UTF8); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}

func newMetadata(opts Options, p *platform.Platform, dir string) *metadata.Sample {
	s := &metadata.Sample{
		FormalName:   opts.SampleName,
		FriendlyName: opts.FriendlyName,
		Category:     opts.Category,
		Description:  opts.Description,
		Images:       []string{opts.SampleName + ".jpg"},
		OfflineData:  opts.ItemIDs,
		RedirectFrom: metadata.Redirects(opts.SampleName, p),
	}
	if files, err := metadata.CollectSnippets(dir); err == nil {
		s.SourceFiles = files
	}
	return s
}

// Placeholder renders a plain grey JPEG screenshot
func Placeholder(width, height int) ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0xC8
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("failed to encode placeholder screenshot: %w", err)
	}
	return buf.Bytes(), nil
}
