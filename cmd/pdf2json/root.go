package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yourorg/pdf2json/pkg/config"
	"github.com/yourorg/pdf2json/pkg/logging"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "pdf2json",
	Short: "Convert PDF documents to structured JSON",
	Long: `pdf2json extracts the text, per-page text and document metadata of a PDF
and renders them as JSON. It can run the HTTP conversion service, convert
files locally or through a running service, and browse results in a
terminal UI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (.json, .yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads --config (or the environment) and validates it after the
// flag overrides have been applied.
func loadConfig(overrides ...config.Override) (*config.Config, error) {
	if verbose {
		overrides = append(overrides, func(c *config.Config) { c.LogLevel = "debug" })
	}
	return config.Load(cfgFile, overrides...)
}

func newLogger(cfg *config.Config) logging.Logger {
	return logging.NewLoggerFromConfig(cfg.LogLevel, cfg.LogFormat)
}
