package scaffold

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/samplekit/samplekit/internal/metadata"
	"github.com/samplekit/samplekit/internal/platform"
	"github.com/samplekit/samplekit/internal/projfile"
	"github.com/samplekit/samplekit/internal/textio"
)

// ErrSampleNotFound is returned when a sample to rename exists on no platform
var ErrSampleNotFound = errors.New("sample not found")

// RenameOptions describes moving a sample to a new name and/or category
type RenameOptions struct {
	Root        string
	Platforms   []*platform.Platform
	OldCategory string
	OldName     string
	NewCategory string
	NewName     string
	Logger      *zap.Logger
}

// ParseMove parses the one-line form "old_cat,old_name-new_cat,new_name"
func ParseMove(s string) (oldCategory, oldName, newCategory, newName string, err error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return "", "", "", "", fmt.Errorf("invalid move %q: want old_cat,old_name-new_cat,new_name", s)
	}
	oldCategory, oldName, ok1 := strings.Cut(from, ",")
	newCategory, newName, ok2 := strings.Cut(to, ",")
	if !ok1 || !ok2 {
		return "", "", "", "", fmt.Errorf("invalid move %q: want old_cat,old_name-new_cat,new_name", s)
	}
	oldCategory, oldName = strings.TrimSpace(oldCategory), strings.TrimSpace(oldName)
	newCategory, newName = strings.TrimSpace(newCategory), strings.TrimSpace(newName)
	if oldCategory == "" || oldName == "" || newCategory == "" || newName == "" {
		return "", "", "", "", fmt.Errorf("invalid move %q: empty category or name", s)
	}
	return oldCategory, oldName, newCategory, newName, nil
}

func (o *RenameOptions) validate() error {
	if o.OldName == "" || o.NewName == "" || o.OldCategory == "" || o.NewCategory == "" {
		return errors.New("old and new category and name are required")
	}
	if !identifierPattern.MatchString(o.NewName) {
		return fmt.Errorf("sample name %q is not a valid type name", o.NewName)
	}
	if o.OldName == o.NewName && o.OldCategory == o.NewCategory {
		return errors.New("old and new sample are the same")
	}
	if len(o.Platforms) == 0 {
		return errors.New("no platforms selected")
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return nil
}

// renamedFiles lists the sample files carried over, relative to the sample directory
func renamedFiles(name string) []string {
	return []string{
		name + ".jpg",
		name + ".cs",
		name + ".xaml.cs",
		name + ".xaml",
		metadata.ReadmeFile,
		metadata.JSONFile,
	}
}

// Rename moves a sample on every platform it exists on. Text files have the
// old name replaced with the new one; images are copied unchanged. Leftover
// markdown in the old directory is removed, then the old sample and category
// directories if they are empty. Project files are updated last.
func Rename(opts RenameOptions) (int, error) {
	if err := opts.validate(); err != nil {
		return 0, err
	}

	moved := 0
	for _, p := range opts.Platforms {
		oldDir := p.SampleDir(opts.Root, opts.OldCategory, opts.OldName)
		if _, err := os.Stat(oldDir); err != nil {
			opts.Logger.Debug("sample missing on platform",
				zap.String("platform", p.Name), zap.String("dir", oldDir))
			continue
		}
		newDir := p.SampleDir(opts.Root, opts.NewCategory, opts.NewName)
		if err := os.MkdirAll(newDir, 0755); err != nil {
			return moved, fmt.Errorf("failed to create sample directory: %w", err)
		}

		for _, name := range renamedFiles(opts.OldName) {
			src := filepath.Join(oldDir, name)
			if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
				continue
			}
			dst := filepath.Join(newDir, strings.ReplaceAll(name, opts.OldName, opts.NewName))
			if err := moveFile(src, dst, opts.OldName, opts.NewName); err != nil {
				return moved, fmt.Errorf("%s: %w", p.Name, err)
			}
		}

		if err := removeLeftovers(oldDir); err != nil {
			return moved, fmt.Errorf("%s: %w", p.Name, err)
		}
		if err := projfile.Move(opts.Root, p, opts.OldCategory, opts.NewCategory, opts.OldName, opts.NewName); err != nil {
			return moved, fmt.Errorf("%s: %w", p.Name, err)
		}
		opts.Logger.Info("moved sample",
			zap.String("platform", p.Name),
			zap.String("from", opts.OldCategory+"/"+opts.OldName),
			zap.String("to", opts.NewCategory+"/"+opts.NewName))
		moved++
	}

	if moved == 0 {
		return 0, fmt.Errorf("%w: %s/%s", ErrSampleNotFound, opts.OldCategory, opts.OldName)
	}
	return moved, nil
}

func moveFile(src, dst, oldName, newName string) error {
	if isImage(src) {
		if err := copyFile(src, dst); err != nil {
			return err
		}
	} else {
		content, codec, err := textio.ReadText(src)
		if err != nil {
			return err
		}
		if err := textio.WriteText(dst, strings.ReplaceAll(content, oldName, newName), codec); err != nil {
			return err
		}
	}
	return os.Remove(src)
}

func isImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// removeLeftovers deletes markdown files from dir, then dir and its parent
// category if they are empty
func removeLeftovers(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	remaining := 0
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				return err
			}
			continue
		}
		remaining++
	}
	if remaining > 0 {
		return nil
	}
	if err := os.Remove(dir); err != nil {
		return err
	}

	category := filepath.Dir(dir)
	entries, err = os.ReadDir(category)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return os.Remove(category)
	}
	return nil
}
