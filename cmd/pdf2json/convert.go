package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yourorg/pdf2json/pkg/config"
	"github.com/yourorg/pdf2json/pkg/convert"
	"github.com/yourorg/pdf2json/pkg/jsonview"
	"github.com/yourorg/pdf2json/pkg/logging"
	"github.com/yourorg/pdf2json/pkg/session"
)

var (
	convertRemote string
	convertOutDir string
	convertPrint  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <file.pdf>",
	Short: "Convert a PDF and save or print the JSON",
	Long: `Convert a PDF in-process, or through a running service with --remote.
The result is written to <name>.json in the output directory unless --print is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertRemote, "remote", "", "base URL of a pdf2json service (overrides REMOTE_URL)")
	convertCmd.Flags().StringVarP(&convertOutDir, "out", "o", "", "output directory (overrides OUTPUT_DIR)")
	convertCmd.Flags().BoolVar(&convertPrint, "print", false, "print the highlighted JSON instead of saving it")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadClientConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logging.Sync(logger)

	decoder, err := convert.NewDecoder(cfg, logger)
	if err != nil {
		return err
	}

	file, err := convert.OpenFile(args[0])
	if err != nil {
		return err
	}

	sess := session.New(decoder, logger)
	if err := sess.SelectFile(file); err != nil {
		return err
	}
	printInfo("%s", sess.View().FileLabel())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := sess.Convert(ctx)
	if err != nil {
		return err
	}

	if failed := result.FailedPages(); failed > 0 {
		printWarn("%d of %d pages could not be extracted", failed, result.Pages)
	}

	if convertPrint {
		text, err := sess.Export()
		if err != nil {
			return err
		}
		if color.NoColor {
			fmt.Fprintln(stdout, text)
		} else {
			fmt.Fprintln(stdout, jsonview.HighlightANSI(text, jsonview.DefaultTheme()))
		}
		return nil
	}

	path, err := sess.Download(convertOutDir)
	if err != nil {
		return err
	}
	printSuccess("Converted %d pages to %s", result.Pages, path)
	return nil
}

// loadClientConfig applies the --remote and --out overrides shared by convert and ui.
func loadClientConfig() (*config.Config, error) {
	cfg, err := loadConfig(func(c *config.Config) {
		if convertRemote != "" {
			c.Decoder = "remote"
			c.RemoteURL = convertRemote
		}
	})
	if err != nil {
		return nil, err
	}
	if convertOutDir == "" {
		convertOutDir = cfg.OutputDir
	}
	return cfg, nil
}
