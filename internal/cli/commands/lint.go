package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/samplekit/samplekit/internal/cli/ui"
	"github.com/samplekit/samplekit/internal/readmelint"
)

// NewLintCommand creates the lint command
func NewLintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [readme...]",
		Short: "Check readme structure",
		Long: `Check sample readmes for a level-1 title, a screenshot near the top, section
headings the metadata parser understands and sections with no content.

Without arguments every sample readme on the selected platforms is checked.
The command fails when any issue is found.

Examples:
  samplekit lint
  samplekit lint src/WPF/ArcGISRuntime.WPF.Viewer/Samples/Map/DisplayMap/readme.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, nil)
			if err != nil {
				return err
			}
			defer s.close()

			linter := readmelint.New()
			var issues []readmelint.Issue
			if len(args) > 0 {
				for _, path := range args {
					found, err := linter.LintFile(path)
					if err != nil {
						return err
					}
					issues = append(issues, found...)
				}
			} else {
				if err := s.resolveRoot(""); err != nil {
					return err
				}
				if issues, err = linter.LintTree(s.root, s.platforms); err != nil {
					return err
				}
			}

			if len(issues) == 0 {
				ui.WriteSuccess(s.out, "No readme issues found", s.noColor)
				return nil
			}

			table := ui.NewTable(s.out, []string{"FILE", "LINE", "RULE", "MESSAGE"}, &ui.TableOptions{NoColor: s.noColor})
			for _, issue := range issues {
				table.AddRow(filepath.ToSlash(issue.Path), fmt.Sprint(issue.Line), string(issue.Rule), issue.Message)
			}
			table.Render()
			fmt.Fprintln(s.out)

			fmt.Fprint(s.errOut, ui.FindingsError("lint", len(issues), "", s.noColor))
			return fmt.Errorf("%d readme issues found", len(issues))
		},
	}

	return cmd
}
