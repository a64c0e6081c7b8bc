package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/yourorg/pdf2json/pkg/convert"
	"github.com/yourorg/pdf2json/pkg/logging"
	"github.com/yourorg/pdf2json/pkg/session"
	"github.com/yourorg/pdf2json/pkg/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui [file.pdf]",
	Short: "Open the interactive terminal client",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUI,
}

func init() {
	uiCmd.Flags().StringVar(&convertRemote, "remote", "", "base URL of a pdf2json service (overrides REMOTE_URL)")
	uiCmd.Flags().StringVarP(&convertOutDir, "out", "o", "", "directory ctrl+s saves into (overrides OUTPUT_DIR)")
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadClientConfig()
	if err != nil {
		return err
	}

	// Log lines would draw over the alternate screen.
	logger := logging.Nop()
	decoder, err := convert.NewDecoder(cfg, logger)
	if err != nil {
		return err
	}

	opts := tui.Options{OutputDir: convertOutDir}
	if len(args) == 1 {
		opts.Path = args[0]
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := tui.NewApp(ctx, session.New(decoder, logger), opts)
	_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}
