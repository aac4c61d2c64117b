package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samplekit/samplekit/internal/cli/ui"
	"github.com/samplekit/samplekit/internal/metadata"
	"github.com/samplekit/samplekit/internal/platform"
	"github.com/samplekit/samplekit/internal/portal"
	"github.com/samplekit/samplekit/internal/propagate"
	"github.com/samplekit/samplekit/internal/report"
	"github.com/samplekit/samplekit/internal/textio"
)

// NewReadmeCommand creates the readme command group
func NewReadmeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readme",
		Short: "Copy and regenerate sample readmes",
	}

	cmd.AddCommand(newReadmeCopyCommand())
	cmd.AddCommand(newReadmeRenderCommand())

	return cmd
}

func newReadmeCopyCommand() *cobra.Command {
	var (
		from   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy the canonical platform's readmes to the other platforms",
		Long: `Copy every readme of the canonical platform to the same sample on the other
selected platforms, adapting documentation links, touch wording and image
names for each target.

Exclusions and desktop-only categories come from the rules file (rules_file
in samplekit.yaml). Samples missing on a target platform are skipped.

Examples:
  samplekit readme copy
  samplekit readme copy --from WPF -p WinUI,UWP --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, nil)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.resolveRoot(""); err != nil {
				return err
			}

			rules, err := propagate.LoadRules(s.cfg.RulesFile)
			if err != nil {
				return fmt.Errorf("failed to load rules: %w", err)
			}
			switch {
			case from != "":
				rules.Canonical = from
			case s.cfg.RulesFile == "":
				rules.Canonical = s.cfg.CanonicalPlatform
			}

			p := &propagate.Propagator{Root: s.root, Rules: rules, Logger: s.logger, DryRun: dryRun}
			rep, err := p.Run(cmd.Context(), s.platforms)
			if rep != nil {
				rep.Render(s.out, s.noColor)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Canonical platform to copy from (default from config)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would change without writing")

	return cmd
}

func newReadmeRenderCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "render [sample-dir...]",
		Short: "Regenerate readmes from readme.metadata.json",
		Long: `Write each sample's readme.md from its metadata sidecar. Offline data items
are titled from the portal when portal.enabled is set in samplekit.yaml;
otherwise they are listed as bare item links.

Without arguments every sample on the selected platforms is rendered.

Examples:
  samplekit readme render
  samplekit readme render src/WPF/ArcGISRuntime.WPF.Viewer/Samples/Map/DisplayMap --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, nil)
			if err != nil {
				return err
			}
			defer s.close()

			var targets []renderTarget
			if len(args) > 0 {
				for _, arg := range args {
					abs, err := filepath.Abs(arg)
					if err != nil {
						return err
					}
					targets = append(targets, renderTarget{platform: "-", dir: abs})
				}
				s.root = filepath.Dir(targets[0].dir)
			} else {
				if err := s.resolveRoot(""); err != nil {
					return err
				}
				for _, p := range s.platforms {
					err := platform.Walk(s.root, p, func(ref platform.SampleRef) error {
						targets = append(targets, renderTarget{platform: p.Name, dir: ref.Dir})
						return nil
					})
					if err != nil {
						return err
					}
				}
			}

			var describer metadata.ItemDescriber
			if s.cfg.Portal.Enabled {
				describer = portal.NewClient(portal.Options{
					URL:        s.cfg.Portal.URL,
					Timeout:    s.cfg.Portal.Timeout,
					MaxRetries: s.cfg.Portal.Retries,
					Logger:     s.logger,
				})
			}

			rep := renderReadmes(cmd.Context(), s, targets, describer, dryRun)
			rep.Render(s.out, s.noColor)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the changes as diffs without writing")

	return cmd
}

// renderTarget is one sample directory and the platform label it is
// reported under
type renderTarget struct {
	platform string
	dir      string
}

// renderReadmes renders every target with a metadata sidecar, showing a
// progress bar unless the diffs of a dry run are printed
func renderReadmes(ctx context.Context, s *session, targets []renderTarget, describer metadata.ItemDescriber, dryRun bool) *report.Report {
	rep := &report.Report{}
	var bar *ui.ProgressBar
	if !dryRun && len(targets) > 1 {
		bar = ui.NewProgressBar(s.out, ui.ProgressBarOptions{Total: len(targets), Message: "rendering readmes", NoColor: s.noColor})
	}

	for _, t := range targets {
		if ctx.Err() != nil {
			break
		}
		renderReadme(ctx, s, t, describer, dryRun, rep)
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish("")
	}
	return rep
}

func renderReadme(ctx context.Context, s *session, t renderTarget, describer metadata.ItemDescriber, dryRun bool, rep *report.Report) {
	name, plat := filepath.Base(t.dir), t.platform

	sample, err := metadata.FromJSON(filepath.Join(t.dir, metadata.JSONFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			rep.Add(plat, name, report.StatusSkipped, "metadata missing")
			return
		}
		s.logger.Warn("failed to read metadata", zap.String("sample", name), zap.Error(err))
		rep.Fail(plat, name, err)
		return
	}

	path := filepath.Join(t.dir, metadata.ReadmeFile)
	rendered := metadata.RenderReadme(ctx, sample, describer)
	before, codec, err := textio.ReadText(path)
	if err == nil && before == rendered {
		rep.Add(plat, name, report.StatusOK, "")
		return
	}
	if err != nil {
		codec = textio.UTF8
	}

	if dryRun {
		s.printDiff(path, before, rendered)
	} else if err := textio.WriteText(path, rendered, codec); err != nil {
		s.logger.Warn("failed to write readme", zap.String("sample", name), zap.Error(err))
		rep.Fail(plat, name, err)
		return
	}
	s.logger.Debug("readme rendered", zap.String("sample", name))
	rep.Add(plat, name, report.StatusChanged, "")
}
