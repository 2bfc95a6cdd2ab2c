// Package sheets publishes classified statements to Google Sheets.
package sheets

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/the-spice-must-tally/internal/common"
)

// Default tab titles.
const (
	DefaultTransactionsTitle = "Processed Transactions"
	DefaultSummaryTitle      = "Summary"
	DefaultSpreadsheetName   = "Classified Transactions"
)

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TransactionsTitle  string
	SummaryTitle       string
	TimeZone           string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableFormatting:  true,
		SpreadsheetName:   DefaultSpreadsheetName,
		TransactionsTitle: DefaultTransactionsTitle,
		SummaryTitle:      DefaultSummaryTitle,
		TimeZone:          "UTC",
		BatchSize:         1000,
		RetryAttempts:     3,
		RetryDelay:        time.Second,
	}
}

// LoadFromEnv fills unset fields from GOOGLE_SHEETS_* environment variables.
func (c *Config) LoadFromEnv() {
	set := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	set(&c.ClientID, "GOOGLE_SHEETS_CLIENT_ID")
	set(&c.ClientSecret, "GOOGLE_SHEETS_CLIENT_SECRET")
	set(&c.RefreshToken, "GOOGLE_SHEETS_REFRESH_TOKEN")
	set(&c.ServiceAccountPath, "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")
	set(&c.SpreadsheetID, "GOOGLE_SHEETS_SPREADSHEET_ID")
	set(&c.SpreadsheetName, "GOOGLE_SHEETS_SPREADSHEET_NAME")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	var err error
	switch {
	case !hasOAuth && !hasServiceAccount:
		err = errors.New("no authentication method configured")
	case hasOAuth && hasServiceAccount:
		err = errors.New("multiple authentication methods configured; use either OAuth2 or service account")
	case c.TransactionsTitle == "":
		err = errors.New("transactions tab title is required")
	case c.TransactionsTitle == c.SummaryTitle:
		err = errors.New("transactions and summary tabs must differ")
	case c.BatchSize <= 0:
		err = errors.New("batch size must be positive")
	case c.RetryAttempts < 0:
		err = errors.New("retry attempts cannot be negative")
	case c.RetryDelay < 0:
		err = errors.New("retry delay cannot be negative")
	}
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return nil
}
