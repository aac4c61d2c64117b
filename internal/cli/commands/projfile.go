package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samplekit/samplekit/internal/cli/ui"
	"github.com/samplekit/samplekit/internal/projfile"
	"github.com/samplekit/samplekit/internal/report"
	"github.com/samplekit/samplekit/internal/textio"
)

// NewProjfileCommand creates the projfile command
func NewProjfileCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "projfile <category> <sample>",
		Short: "Register an existing sample in the platform project files",
		Long: `Insert the screenshot, markup and code entries of a sample after the marker
comments of each platform's project file. Platforms whose project file
does not list samples are skipped, as are project files that already
reference the sample.

Examples:
  samplekit projfile Map DisplayMap
  samplekit projfile Map DisplayMap -p WPF --dry-run`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, sample := args[0], args[1]

			s, err := newSession(cmd, nil)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.resolveRoot(""); err != nil {
				return err
			}

			rep := &report.Report{}
			marker := projfile.ProjectPath(category, sample, "")
			for _, p := range s.platforms {
				if !projfile.Supported(p) {
					rep.Add(p.Name, sample, report.StatusSkipped, "no project file entries")
					continue
				}
				path := p.ProjectPath(s.root)
				content, _, err := textio.ReadText(path)
				if err != nil {
					s.logger.Warn("failed to read project file", zap.String("platform", p.Name), zap.Error(err))
					rep.Fail(p.Name, sample, err)
					continue
				}
				if strings.Contains(content, marker) {
					rep.Add(p.Name, sample, report.StatusOK, "already registered")
					continue
				}

				if dryRun {
					s.printDiff(path, content, projfile.InsertEntries(content, p, category, sample))
				} else if err := projfile.Register(s.root, p, category, sample); err != nil {
					rep.Fail(p.Name, sample, err)
					continue
				}
				rep.Add(p.Name, sample, report.StatusChanged, "")
			}

			rep.Render(s.out, s.noColor)
			if n := rep.Count(report.StatusChanged); n > 0 && !dryRun {
				ui.WriteSuccess(s.out, fmt.Sprintf("Registered %s in %d project files", sample, n), s.noColor)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the changes as diffs without writing")

	return cmd
}
