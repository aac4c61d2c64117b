package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// Persistent flags shared by every subcommand
var (
	rootDir       string
	configPath    string
	platformNames []string
	verbose       bool
	noColor       bool
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "samplekit",
		Short: "Maintenance tooling for multi-platform sample repositories",
		Long: color.CyanString(`samplekit - sample repository maintenance

Keeps sample readmes, metadata sidecars, code annotations and tables of
contents in step across platforms, scaffolds and renames samples, and runs
the checks used by CI hooks.

Commands:
  • metadata, toc, readme    readme and metadata synchronisation
  • new, rename, move        sample scaffolding
  • screenshots, keycheck    CI checks
  • lint, rewrite, watch     authoring helpers`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootDir, "root", "", "Sample root (the directory holding the platform folders)")
	flags.StringVar(&configPath, "config", "", "Config file (default ./samplekit.yaml)")
	flags.StringSliceVarP(&platformNames, "platforms", "p", nil, "Platforms to process (default from config)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewMetadataCommand())
	rootCmd.AddCommand(NewTOCCommand())
	rootCmd.AddCommand(NewReadmeCommand())
	rootCmd.AddCommand(NewNewCommand())
	rootCmd.AddCommand(NewRenameCommand())
	rootCmd.AddCommand(NewMoveCommand())
	rootCmd.AddCommand(NewProjfileCommand())
	rootCmd.AddCommand(NewScreenshotsCommand())
	rootCmd.AddCommand(NewKeycheckCommand())
	rootCmd.AddCommand(NewRewriteCommand())
	rootCmd.AddCommand(NewLintCommand())
	rootCmd.AddCommand(NewWatchCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the samplekit version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()

			titleColor.Fprint(out, "samplekit version: ")
			fmt.Fprintln(out, Version)
			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)
			titleColor.Fprint(out, "Build date: ")
			fmt.Fprintln(out, BuildDate)
			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command; interrupts cancel the command context
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
