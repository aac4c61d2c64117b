package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/samplekit/samplekit/internal/cli/config"
	"github.com/samplekit/samplekit/internal/cli/ui"
	"github.com/samplekit/samplekit/internal/scaffold"
)

// NewNewCommand creates the new command
func NewNewCommand() *cobra.Command {
	var (
		interactive bool
		opts        scaffold.Options
	)

	cmd := &cobra.Command{
		Use:   "new [friendly-name]",
		Short: "Create a sample on every platform",
		Long: `Create a new sample from the built-in templates on each scaffold platform
(scaffold.platforms in samplekit.yaml, or --platforms): code and markup,
a placeholder screenshot, readme.md, readme.metadata.json and the project
file entries.

The sample name is derived from the friendly name unless --name is given.
Offline data items are portal item IDs; they are validated and added to
the sample's OfflineData attribute.

Examples:
  samplekit new "Display map" --category Map --description "Display a map."
  samplekit new "Show scene" -c Scenes --scene --item-id 3424d442ebe54f3cbf34462382d3aebe
  samplekit new --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.FriendlyName = args[0]
			}
			if interactive {
				if err := promptNewSample(&opts); err != nil {
					return err
				}
			}
			if strings.TrimSpace(opts.FriendlyName) == "" || strings.TrimSpace(opts.Category) == "" {
				return errors.New("a friendly name and --category are required (or use --interactive)")
			}

			s, err := newSession(cmd, func(c *config.Config) []string { return c.Scaffold.Platforms })
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.resolveRoot(""); err != nil {
				return err
			}

			opts.Root = s.root
			opts.Platforms = s.platforms
			res, err := scaffold.New(opts)
			if err != nil {
				return err
			}

			ui.WriteSuccess(s.out, fmt.Sprintf("Created sample %s on %d platforms", res.SampleName, len(res.Dirs)), s.noColor)
			for _, dir := range res.Dirs {
				fmt.Fprintf(s.out, "  %s\n", s.rel(dir))
			}
			fmt.Fprintln(s.out)
			summary := ui.NewSummary(s.out, s.noColor)
			summary.Add("Category", opts.Category)
			if opts.Scene {
				summary.Add("View", "SceneView")
			} else {
				summary.Add("View", "MapView")
			}
			summary.Add("Files", len(res.Files))
			if len(opts.ItemIDs) > 0 {
				summary.Add("Offline data", strings.Join(opts.ItemIDs, ", "))
			}
			summary.Render()
			hint := color.New(color.FgYellow)
			if s.noColor {
				hint.DisableColor()
			}
			hint.Fprintln(s.out, "\nNext: write the readme, then run 'samplekit metadata sync'")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for the sample details")
	cmd.Flags().StringVar(&opts.SampleName, "name", "", "Sample type and directory name (default derived from the friendly name)")
	cmd.Flags().StringVarP(&opts.Category, "category", "c", "", "Sample category directory")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "One-sentence description")
	cmd.Flags().BoolVar(&opts.Scene, "scene", false, "Use a SceneView instead of a MapView")
	cmd.Flags().StringSliceVar(&opts.ItemIDs, "item-id", nil, "Offline data portal item ID (repeatable)")

	return cmd
}

// promptNewSample asks for the details not given as flags
func promptNewSample(opts *scaffold.Options) error {
	answers := struct {
		FriendlyName string
		Category     string
		Description  string
		View         string
		Items        string
	}{}

	view := "MapView"
	if opts.Scene {
		view = "SceneView"
	}
	questions := []*survey.Question{
		{
			Name:     "friendlyName",
			Prompt:   &survey.Input{Message: "Sample title:", Default: opts.FriendlyName},
			Validate: survey.Required,
		},
		{
			Name:     "category",
			Prompt:   &survey.Input{Message: "Category:", Default: opts.Category},
			Validate: survey.Required,
		},
		{
			Name:   "description",
			Prompt: &survey.Input{Message: "Description:", Default: opts.Description},
		},
		{
			Name: "view",
			Prompt: &survey.Select{
				Message: "Geo view:",
				Options: []string{"MapView", "SceneView"},
				Default: view,
			},
		},
		{
			Name: "items",
			Prompt: &survey.Input{
				Message: "Offline data item IDs (optional):",
				Default: strings.Join(opts.ItemIDs, ","),
				Help:    "Comma separated portal item IDs",
			},
			Validate: func(ans interface{}) error {
				_, err := scaffold.NormalizeItemIDs(splitList(ans.(string)))
				return err
			},
		},
	}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	opts.FriendlyName = answers.FriendlyName
	opts.Category = answers.Category
	opts.Description = answers.Description
	opts.Scene = answers.View == "SceneView"
	opts.ItemIDs = splitList(answers.Items)
	return nil
}

// splitList splits a comma separated answer, dropping empty entries
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
