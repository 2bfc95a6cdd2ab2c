package main

import (
	"fmt"
	"os"

	"github.com/Veraticus/the-spice-must-tally/internal/cli"
	"github.com/Veraticus/the-spice-must-tally/internal/common"
	"github.com/Veraticus/the-spice-must-tally/internal/config"
	"github.com/Veraticus/the-spice-must-tally/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func sheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Google Sheets integration",
	}
	cmd.AddCommand(sheetsAuthCmd())
	return cmd
}

func sheetsAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize tally to write to Google Sheets",
		Long: `Run the OAuth2 browser flow for Google Sheets and cache the token.

Requires an OAuth2 client ID and secret for a desktop application, set as
sheets.client_id and sheets.client_secret in the config file or as
GOOGLE_SHEETS_CLIENT_ID and GOOGLE_SHEETS_CLIENT_SECRET. Once authorized,
'tally classify --sheets' uses the cached token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("callback")

			oauthCfg := sheets.OAuth2Config{
				ClientID:     viper.GetString("sheets.client_id"),
				ClientSecret: viper.GetString("sheets.client_secret"),
				TokenFile:    config.SheetsTokenFile(),
				CallbackAddr: addr,
			}
			if oauthCfg.ClientID == "" {
				oauthCfg.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
			}
			if oauthCfg.ClientSecret == "" {
				oauthCfg.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
			}
			if oauthCfg.ClientID == "" || oauthCfg.ClientSecret == "" {
				return fmt.Errorf("%w: sheets.client_id and sheets.client_secret are required", common.ErrMissingConfig)
			}

			token, err := sheets.GetOrCreateToken(cmd.Context(), oauthCfg)
			if err != nil {
				return fmt.Errorf("google sheets authorization failed: %w", err)
			}
			if token.RefreshToken == "" {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Google returned no refresh token; revoke access and run this command again"))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Authorized. Token cached at "+oauthCfg.TokenFile))
			return nil
		},
	}
	cmd.Flags().String("callback", sheets.DefaultCallbackAddr, "address the OAuth2 redirect is received on")
	return cmd
}
