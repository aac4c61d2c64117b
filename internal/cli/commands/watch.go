package commands

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/samplekit/samplekit/internal/cli/ui"
	"github.com/samplekit/samplekit/internal/pipeline"
	"github.com/samplekit/samplekit/internal/report"
	"github.com/samplekit/samplekit/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Sync metadata whenever a sample readme is saved",
		Long: `Watch the sample trees of the selected platforms and, whenever a readme.md
is written, regenerate that sample's readme.metadata.json and code
annotation and rebuild its platform's table of contents.

Press Ctrl+C to stop.

Examples:
  samplekit watch
  samplekit watch -p WPF --debounce 1s`,
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

			runner := &pipeline.Runner{Root: s.root, Logger: s.logger}
			w := watch.NewSampleWatcher(s.root, s.platforms, runner, s.logger)
			w.Debounce = debounce

			fmt.Fprint(s.out, ui.Info(fmt.Sprintf("Watching %d platforms under %s", len(s.platforms), s.root), s.noColor))
			stamp := color.New(color.FgHiBlack)
			if s.noColor {
				stamp.DisableColor()
			}
			return w.Run(cmd.Context(), func(rep *report.Report) {
				if len(rep.Entries) == 0 {
					return
				}
				stamp.Fprintf(s.out, "[%s] ", time.Now().Format("15:04:05"))
				rep.Render(s.out, s.noColor)
			})
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Delay before syncing after the last write")

	return cmd
}
