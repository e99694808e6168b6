package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GRAYgoose124/mdboy/internal/cli"
	"github.com/GRAYgoose124/mdboy/internal/cli/config"
)

var (
	// Set at build time using -ldflags.
	version = "dev"
	commit  = "none"
	date    = "unknown"

	cfgFile     string
	profileName string
	verbose     bool
	interactive bool
	scriptPath  string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mdboy",
	Short: "Batch-fixes Markdown collections through composable plugins.",
	Long: `mdboy discovers Markdown documents under configured scopes, applies
queued plugin commands, then runs each plugin's per-document pass over its
resolved file set, rewriting documents in place.

Built-in plugins:
  - title  rewrite or insert the document's top-level heading
  - tag    maintain a bracketed tag list under the title
  - toc    regenerate the table of contents from heading lines`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		opts, logger, err := config.LoadAndValidate(cfgFile, profileName, verbose, cmd.Flags())
		if err != nil {
			return err
		}
		opts.Interactive = interactive
		opts.ScriptPath = scriptPath

		return cli.Run(ctx, opts, logger)
	},
}

// Execute runs the root command.
func Execute() {
	rootCmd.SetVersionTemplate(`{{.Use}} version {{.Version}}` + "\n")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file path (default searches ., $HOME/.config/mdboy/)")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "Name of configuration profile to use")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging output")

	rootCmd.Flags().String("root", "", "Base directory for relative scope paths")
	rootCmd.Flags().String("extension", ".md", "Document extension matched by directory scopes")
	rootCmd.Flags().Bool("dryRun", false, "Report would-be modifications without writing files")
	rootCmd.Flags().Bool("diffOnly", false, "Only process files with uncommitted git changes")
	rootCmd.Flags().String("outputFormat", "text", "Final report format: text or json")
	rootCmd.Flags().String("defaultEncoding", "", "Fallback charset for documents whose encoding cannot be detected")

	rootCmd.Flags().StringVarP(&scriptPath, "script", "s", "", "YAML command script to queue before running")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Start the interactive shell")
}
