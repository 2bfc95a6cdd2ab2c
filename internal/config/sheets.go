package config

import (
	"github.com/Veraticus/the-spice-must-tally/internal/sheets"
	"github.com/spf13/viper"
)

// Sheets configuration keys.
const (
	KeySheetsTokenFile = "sheets.token_file"
)

// DefaultSheetsTokenFile caches the OAuth2 token of `tally sheets auth`.
const DefaultSheetsTokenFile = "$HOME/.config/tally/sheets-token.json"

// LoadSheetsConfig loads Google Sheets configuration from the global viper instance.
func LoadSheetsConfig() (*sheets.Config, error) {
	return LoadSheetsConfigFrom(viper.GetViper())
}

// LoadSheetsConfigFrom loads Google Sheets configuration with this precedence:
//  1. viper (config file or TALLY_SHEETS_* env vars)
//  2. GOOGLE_SHEETS_* environment variables
//  3. the refresh token cached by `tally sheets auth`
//  4. defaults
func LoadSheetsConfigFrom(v *viper.Viper) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = ExpandPath(v.GetString("sheets.service_account_path"))
	config.ClientID = v.GetString("sheets.client_id")
	config.ClientSecret = v.GetString("sheets.client_secret")
	config.RefreshToken = v.GetString("sheets.refresh_token")
	config.SpreadsheetID = v.GetString("sheets.spreadsheet_id")
	if name := v.GetString("sheets.spreadsheet_name"); name != "" {
		config.SpreadsheetName = name
	}
	if title := v.GetString("sheets.transactions_tab"); title != "" {
		config.TransactionsTitle = title
	}
	if title := v.GetString("sheets.summary_tab"); title != "" {
		config.SummaryTitle = title
	}
	if v.IsSet("sheets.formatting") {
		config.EnableFormatting = v.GetBool("sheets.formatting")
	}

	if config.SpreadsheetName == sheets.DefaultSpreadsheetName {
		config.SpreadsheetName = ""
	}
	config.LoadFromEnv()
	if config.SpreadsheetName == "" {
		config.SpreadsheetName = sheets.DefaultSpreadsheetName
	}
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)

	if config.RefreshToken == "" && config.ServiceAccountPath == "" {
		if token, err := sheets.LoadToken(tokenFile(v)); err == nil {
			config.RefreshToken = token.RefreshToken
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SheetsTokenFile returns the expanded OAuth2 token cache path.
func SheetsTokenFile() string {
	return tokenFile(viper.GetViper())
}

func tokenFile(v *viper.Viper) string {
	path := v.GetString(KeySheetsTokenFile)
	if path == "" {
		path = DefaultSheetsTokenFile
	}
	return ExpandPath(path)
}
