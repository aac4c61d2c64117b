package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samplekit/samplekit/internal/cli/ui"
	"github.com/samplekit/samplekit/internal/pipeline"
)

// NewMetadataCommand creates the metadata command
func NewMetadataCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "metadata <toc|improve|attributes|sync> [root]",
		Short: "Synchronise readmes with metadata, annotations and tables of contents",
		Long: `Parse every sample readme on the selected platforms and regenerate what is
derived from it.

Operations:
  toc         rebuild each platform's table of contents only
  improve     rewrite readme.metadata.json, keeping the ignore flag and
              redirects of the existing file
  attributes  rewrite the sample annotation in the code-behind file
  sync        rewrite readme.metadata.json and the annotation

Every operation also rebuilds the tables of contents. Samples that fail are
reported and skipped; they do not change the exit status.

Examples:
  samplekit metadata sync
  samplekit metadata toc ../arcgis-runtime-samples-dotnet/src
  samplekit metadata attributes -p WPF,WinUI --dry-run`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			op, err := pipeline.ParseOp(args[0])
			if err != nil {
				cmd.PrintErrln(cmd.UsageString())
				return err
			}
			explicit := ""
			if len(args) > 1 {
				explicit = args[1]
			}
			return runPipeline(cmd, op, explicit, dryRun)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the changes as diffs without writing")

	return cmd
}

// NewTOCCommand creates the toc command, a shorthand for "metadata toc"
func NewTOCCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "toc [root]",
		Short: "Rebuild the table of contents of each platform",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			explicit := ""
			if len(args) > 0 {
				explicit = args[0]
			}
			return runPipeline(cmd, pipeline.OpTOC, explicit, dryRun)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the changes as diffs without writing")

	return cmd
}

func runPipeline(cmd *cobra.Command, op pipeline.Op, explicitRoot string, dryRun bool) error {
	s, err := newSession(cmd, nil)
	if err != nil {
		return err
	}
	defer s.close()
	if err := s.resolveRoot(explicitRoot); err != nil {
		return err
	}

	runner := &pipeline.Runner{Root: s.root, Logger: s.logger, DryRun: dryRun}
	if dryRun {
		runner.OnChange = s.printDiff
	}

	rep, err := runner.Run(cmd.Context(), op, s.platforms)
	if rep != nil {
		rep.Render(s.out, s.noColor)
	}
	if err != nil {
		return err
	}

	s.logger.Debug("run complete", zap.String("op", string(op)), zap.String("summary", rep.Summary()))
	if dryRun {
		fmt.Fprint(s.out, ui.Info("Dry run: nothing was written", s.noColor))
	}
	return nil
}
