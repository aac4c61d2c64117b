package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samplekit/samplekit/internal/cli/ui"
	"github.com/samplekit/samplekit/internal/screenshots"
)

// NewScreenshotsCommand creates the screenshots command
func NewScreenshotsCommand() *cobra.Command {
	var maxWidth, maxHeight int

	cmd := &cobra.Command{
		Use:   "screenshots [root]",
		Short: "Check that every sample screenshot exists and fits the size limit",
		Long: `Decode every screenshot listed in the samples' metadata (or <Sample>.jpg when
none is listed) and report missing, unreadable and oversized images. The
command fails when anything is found, so it can gate CI.

Limits default to screenshots.max_width and screenshots.max_height in
samplekit.yaml; screenshots.ignore holds globs of images to skip.

Examples:
  samplekit screenshots
  samplekit screenshots --max-width 1024 -p WinUI`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, nil)
			if err != nil {
				return err
			}
			defer s.close()
			explicit := ""
			if len(args) > 0 {
				explicit = args[0]
			}
			if err := s.resolveRoot(explicit); err != nil {
				return err
			}

			opts := screenshots.Options{
				MaxWidth:  s.cfg.Screenshots.MaxWidth,
				MaxHeight: s.cfg.Screenshots.MaxHeight,
				Ignore:    s.cfg.Screenshots.Ignore,
				Logger:    s.logger,
			}
			if cmd.Flags().Changed("max-width") {
				opts.MaxWidth = maxWidth
			}
			if cmd.Flags().Changed("max-height") {
				opts.MaxHeight = maxHeight
			}

			checker, err := screenshots.NewChecker(s.root, opts)
			if err != nil {
				return err
			}
			findings, err := checker.Check(s.platforms)
			if err != nil {
				return err
			}

			if len(findings) == 0 {
				ui.WriteSuccess(s.out, "All screenshots present and within limits", s.noColor)
				return nil
			}

			table := ui.NewTable(s.out, []string{"PLATFORM", "SAMPLE", "PROBLEM", "IMAGE", "DETAIL"}, &ui.TableOptions{NoColor: s.noColor})
			for _, f := range findings {
				detail := f.Detail
				if f.Problem == screenshots.ProblemTooLarge {
					detail = fmt.Sprintf("%dx%d > %dx%d", f.Width, f.Height, opts.MaxWidth, opts.MaxHeight)
				}
				table.AddRow(f.Platform, f.Sample, string(f.Problem), f.Path, detail)
			}
			table.Render()
			fmt.Fprintln(s.out)

			fmt.Fprint(s.errOut, ui.FindingsError("screenshots", len(findings), "Resize images to fit the limit or list them in screenshots.ignore", s.noColor))
			return fmt.Errorf("%d screenshot problems found", len(findings))
		},
	}

	cmd.Flags().IntVar(&maxWidth, "max-width", screenshots.DefaultMaxWidth, "Maximum screenshot width in pixels")
	cmd.Flags().IntVar(&maxHeight, "max-height", screenshots.DefaultMaxHeight, "Maximum screenshot height in pixels")

	return cmd
}
