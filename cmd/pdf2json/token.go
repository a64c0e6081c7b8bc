package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yourorg/pdf2json/pkg/jwt"
	"github.com/yourorg/pdf2json/pkg/logging"
)

var tokenSubject string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for POST /convert",
	Long:  "Issue a token signed with JWT_SECRET carrying the convert scope. Use it as REMOTE_TOKEN or in an Authorization header.",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "cli", "token subject")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logging.Sync(logger)

	tokens, err := newTokenService(cfg, logger)
	if err != nil {
		return err
	}
	token, err := tokens.GenerateToken(tokenSubject, jwt.ScopeConvert)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	return nil
}
