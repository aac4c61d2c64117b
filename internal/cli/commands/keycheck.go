package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samplekit/samplekit/internal/cli/ui"
	"github.com/samplekit/samplekit/internal/keycheck"
)

// NewKeycheckCommand creates the keycheck command
func NewKeycheckCommand() *cobra.Command {
	var (
		repo     string
		commit   string
		revRange string
		staged   bool
	)

	cmd := &cobra.Command{
		Use:   "keycheck",
		Short: "Scan commits for API keys before they are pushed",
		Long: `Scan the lines added by commits for API keys and key-like string literals.
Only added lines are inspected and matches are printed redacted. The
command fails when anything is found, so it can run as a git hook.

Patterns and ignore globs come from keycheck.patterns and keycheck.ignore
in samplekit.yaml; the built-in patterns match ArcGIS API keys.

Examples:
  samplekit keycheck                          # scan HEAD
  samplekit keycheck --commit 4f2a9c1
  samplekit keycheck --range origin/main..HEAD
  git diff --cached | samplekit keycheck --staged`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if staged && (commit != "" || revRange != "") {
				return errors.New("--staged cannot be combined with --commit or --range")
			}
			if commit != "" && revRange != "" {
				return errors.New("--commit and --range are mutually exclusive")
			}

			s, err := newSession(cmd, nil)
			if err != nil {
				return err
			}
			defer s.close()

			opts := keycheck.Options{
				Patterns: s.cfg.Keycheck.Patterns,
				Ignore:   s.cfg.Keycheck.Ignore,
				Logger:   s.logger,
			}
			message := "Scanning " + revRange
			var spinner *ui.Spinner
			opts.OnCommit = func(hash string, scanned int) {
				spinner.UpdateMessage(fmt.Sprintf("%s (%d commits, at %.8s)", message, scanned, hash))
			}
			scanner, err := keycheck.NewScanner(opts)
			if err != nil {
				return err
			}

			var findings []keycheck.Finding
			switch {
			case staged:
				findings, err = scanner.ScanUnifiedDiff(cmd.InOrStdin())
			case revRange != "":
				from, to, ok := strings.Cut(revRange, "..")
				if !ok {
					return fmt.Errorf("invalid range %q: want FROM..TO", revRange)
				}
				err = ui.WithSpinner(s.errOut, message, s.noColor, func(sp *ui.Spinner) error {
					spinner = sp
					var scanErr error
					findings, scanErr = scanner.ScanRange(repo, from, to)
					return scanErr
				})
			default:
				findings, err = scanner.ScanCommit(repo, commit)
			}
			if err != nil {
				return err
			}

			if len(findings) == 0 {
				ui.WriteSuccess(s.out, "No API keys found", s.noColor)
				return nil
			}

			table := ui.NewTable(s.out, []string{"COMMIT", "FILE", "LINE", "PATTERN", "MATCH"}, &ui.TableOptions{NoColor: s.noColor})
			for _, f := range findings {
				short := f.Commit
				if len(short) > 8 {
					short = short[:8]
				}
				if short == "" {
					short = "-"
				}
				table.AddRow(short, f.File, strconv.Itoa(f.Line), f.Pattern, f.Redacted)
			}
			table.Render()
			fmt.Fprintln(s.out)

			fmt.Fprint(s.errOut, ui.FindingsError("keycheck", len(findings), "Remove the keys, rewrite the commits and revoke the exposed keys", s.noColor))
			return fmt.Errorf("%d possible API keys found", len(findings))
		},
	}

	cmd.Flags().StringVar(&repo, "repo", ".", "Path to the git repository")
	cmd.Flags().StringVar(&commit, "commit", "", "Commit to scan (default HEAD)")
	cmd.Flags().StringVar(&revRange, "range", "", "Scan every commit in FROM..TO")
	cmd.Flags().BoolVar(&staged, "staged", false, "Read a unified diff (git diff --cached) from stdin")

	return cmd
}
