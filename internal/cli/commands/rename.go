package commands

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/samplekit/samplekit/internal/cli/ui"
	"github.com/samplekit/samplekit/internal/platform"
	"github.com/samplekit/samplekit/internal/scaffold"
)

// NewRenameCommand creates the rename command
func NewRenameCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "rename [old-category old-name new-category new-name]",
		Short: "Rename or recategorise a sample on every platform",
		Long: `Move a sample to a new name and/or category on every platform that has it.
Code, markup, readme and metadata are rewritten with the new name, the
screenshot is copied unchanged, project file entries are moved and emptied
sample and category directories are removed.

Examples:
  samplekit rename Map DisplayMap Maps ShowMap
  samplekit rename --interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts scaffold.RenameOptions
			switch {
			case len(args) == 4:
				opts.OldCategory, opts.OldName, opts.NewCategory, opts.NewName = args[0], args[1], args[2], args[3]
			case len(args) == 0 && interactive:
			default:
				return errors.New("expected old-category old-name new-category new-name (or --interactive)")
			}
			if interactive {
				if err := promptRename(&opts); err != nil {
					return err
				}
			}
			return runRename(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for the old and new sample")

	return cmd
}

// NewMoveCommand creates the move command, the one-line form of rename
func NewMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <old_cat,old_name-new_cat,new_name>",
		Short: "Rename a sample using the one-line move syntax",
		Long: `Rename a sample given as "old_category,old_name-new_category,new_name".

Example:
  samplekit move "Map,DisplayMap-Maps,ShowMap"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				opts scaffold.RenameOptions
				err  error
			)
			opts.OldCategory, opts.OldName, opts.NewCategory, opts.NewName, err = scaffold.ParseMove(args[0])
			if err != nil {
				return err
			}
			return runRename(cmd, opts)
		},
	}
}

func runRename(cmd *cobra.Command, opts scaffold.RenameOptions) error {
	s, err := newSession(cmd, nil)
	if err != nil {
		return err
	}
	defer s.close()
	if err := s.resolveRoot(""); err != nil {
		return err
	}

	opts.Root = s.root
	opts.Platforms = s.platforms
	opts.Logger = s.logger
	n, err := scaffold.Rename(opts)
	if errors.Is(err, scaffold.ErrSampleNotFound) {
		fmt.Fprint(s.errOut, ui.SampleNotFoundError(opts.OldCategory, opts.OldName, s.noColor))
		if match := ui.FindBestMatch(opts.OldName, categorySamples(s.root, s.platforms, opts.OldCategory), nil); match != "" {
			fmt.Fprint(s.errOut, ui.Warning("Similar sample in "+opts.OldCategory, []string{match}, s.noColor))
		}
	}
	if err != nil {
		return err
	}

	ui.WriteSuccess(s.out, fmt.Sprintf("Moved %s/%s to %s/%s on %d platforms",
		opts.OldCategory, opts.OldName, opts.NewCategory, opts.NewName, n), s.noColor)
	return nil
}

func promptRename(opts *scaffold.RenameOptions) error {
	questions := []*survey.Question{
		{Name: "OldCategory", Prompt: &survey.Input{Message: "Current category:", Default: opts.OldCategory}, Validate: survey.Required},
		{Name: "OldName", Prompt: &survey.Input{Message: "Current sample name:", Default: opts.OldName}, Validate: survey.Required},
		{Name: "NewCategory", Prompt: &survey.Input{Message: "New category:", Default: opts.OldCategory}, Validate: survey.Required},
		{Name: "NewName", Prompt: &survey.Input{Message: "New sample name:", Default: opts.OldName}, Validate: survey.Required},
	}
	answers := struct {
		OldCategory string
		OldName     string
		NewCategory string
		NewName     string
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	confirmed := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Move %s/%s to %s/%s?", answers.OldCategory, answers.OldName, answers.NewCategory, answers.NewName),
		Default: true,
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return err
	}
	if !confirmed {
		return errors.New("rename cancelled")
	}

	opts.OldCategory, opts.OldName = answers.OldCategory, answers.OldName
	opts.NewCategory, opts.NewName = answers.NewCategory, answers.NewName
	return nil
}

// categorySamples lists the sample names found in category on any of platforms
func categorySamples(root string, platforms []*platform.Platform, category string) []string {
	seen := map[string]bool{}
	var names []string
	for _, p := range platforms {
		_ = platform.Walk(root, p, func(ref platform.SampleRef) error {
			if ref.Category == category && !seen[ref.Name] {
				seen[ref.Name] = true
				names = append(names, ref.Name)
			}
			return nil
		})
	}
	return names
}
