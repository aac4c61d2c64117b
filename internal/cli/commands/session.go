package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samplekit/samplekit/internal/cli/config"
	"github.com/samplekit/samplekit/internal/cli/ui"
	"github.com/samplekit/samplekit/internal/format"
	"github.com/samplekit/samplekit/internal/logging"
	"github.com/samplekit/samplekit/internal/platform"
)

// session is what a subcommand needs after flag parsing: the loaded config,
// a logger and the selected platforms
type session struct {
	cfg       *config.Config
	root      string
	platforms []*platform.Platform
	logger    *zap.Logger
	noColor   bool
	out       io.Writer
	errOut    io.Writer
}

// newSession loads the config and builds the logger. Platforms come from
// --platforms when given, otherwise from defaults applied to the config (the
// platforms key when defaults is nil).
func newSession(cmd *cobra.Command, defaults func(*config.Config) []string) (*session, error) {
	s := &session{noColor: noColor, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprint(s.errOut, ui.ConfigError(err.Error(), s.noColor))
		return nil, err
	}
	s.cfg = cfg

	s.logger, err = logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Verbose: verbose})
	if err != nil {
		return nil, err
	}

	names := platformNames
	switch {
	case len(names) > 0:
	case defaults != nil:
		names = defaults(cfg)
	default:
		names = cfg.Platforms
	}
	s.platforms, err = platform.Resolve(names)
	if err != nil {
		var unknown *platform.UnknownError
		if errors.As(err, &unknown) {
			fmt.Fprint(s.errOut, ui.UnknownPlatformError(unknown.Name, unknown.Suggestions, s.noColor))
		}
		return nil, err
	}
	return s, nil
}

// resolveRoot picks the sample root: explicit (a positional argument), then
// --root, then sample_root from the config, then a search upward from the
// working directory
func (s *session) resolveRoot(explicit string) error {
	root := explicit
	if root == "" {
		root = rootDir
	}
	if root == "" {
		root = s.cfg.SampleRoot
	}
	if root == "" {
		found, err := config.GetSampleRoot()
		if err != nil {
			return fmt.Errorf("%w; pass --root or set sample_root", err)
		}
		root = found
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("sample root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("sample root %s is not a directory", abs)
	}
	s.root = abs
	s.logger.Debug("using sample root", zap.String("root", abs))
	return nil
}

// rel shortens path to be relative to the sample root for display
func (s *session) rel(path string) string {
	if rel, err := filepath.Rel(s.root, path); err == nil && !filepath.IsAbs(rel) {
		return filepath.ToSlash(rel)
	}
	return path
}

// printDiff writes a colored diff of one pending change
func (s *session) printDiff(path, before, after string) {
	diff := format.Diff(s.rel(path), before, after)
	if !diff.Changed {
		return
	}
	fmt.Fprintln(s.out, diff.String())
	fmt.Fprintln(s.out, diff.Stats())
}

// close flushes the logger
func (s *session) close() {
	_ = s.logger.Sync()
}
