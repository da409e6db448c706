package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	gsheet "billhub/internal/sheets/google"
)

var oauthInitCmd = &cobra.Command{
	Use:   "oauth-init",
	Short: "Authorize the ledger worker against Google Sheets",
	Long: `Run the one-time OAuth consent flow and save the token for the
ledger worker (GOOGLE_OAUTH_TOKEN_FILE).

Examples:
  billhubctl oauth-init --client-file credentials.json --token-file token.json`,
	RunE: runOAuthInit,
}

func init() {
	oauthInitCmd.Flags().String("client-file", os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"), "OAuth client JSON downloaded from the Google console")
	oauthInitCmd.Flags().String("token-file", envOr("GOOGLE_OAUTH_TOKEN_FILE", "token.json"), "where to save the token")
	oauthInitCmd.Flags().String("port", envOr("OAUTH_REDIRECT_PORT", "8085"), "local port for the redirect")
	oauthInitCmd.Flags().Duration("timeout", 5*time.Minute, "how long to wait for consent")
	rootCmd.AddCommand(oauthInitCmd)
}

func runOAuthInit(cmd *cobra.Command, args []string) error {
	clientFile, _ := cmd.Flags().GetString("client-file")
	tokenFile, _ := cmd.Flags().GetString("token-file")
	port, _ := cmd.Flags().GetString("port")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	clientJSON := []byte(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	if clientFile != "" {
		b, err := os.ReadFile(clientFile)
		if err != nil {
			return fmt.Errorf("read client file: %w", err)
		}
		clientJSON = b
	}
	if len(clientJSON) == 0 {
		return fmt.Errorf("provide --client-file or GOOGLE_OAUTH_CLIENT_JSON")
	}

	return gsheet.Authorize(context.Background(), gsheet.AuthorizeConfig{
		ClientJSON:   clientJSON,
		RedirectPort: port,
		TokenFile:    tokenFile,
		Timeout:      timeout,
	}, os.Stdout)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
