package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/the-spice-must-tally/internal/common"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer publishes reports to Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriter(service, config, logger), nil
}

func newWriter(service *sheets.Service, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		config:  config,
		service: service,
		logger:  logger,
	}
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, token)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// Publish writes the annotated table to the transactions tab and the summary rows to
// the summary tab, replacing what those tabs held before. It returns the spreadsheet ID.
func (w *Writer) Publish(ctx context.Context, report Report) (string, error) {
	w.logger.Info("publishing statement",
		"title", report.Title,
		"rows", len(report.Table.Rows))

	titles := []string{w.config.TransactionsTitle}
	if report.SummaryRows != nil && w.config.SummaryTitle != "" {
		titles = append(titles, w.config.SummaryTitle)
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var spreadsheet *sheets.Spreadsheet
	err := common.WithRetry(ctx, func() error {
		var err error
		spreadsheet, err = w.getOrCreateSpreadsheet(ctx, titles)
		return err
	}, retryOpts)
	if err != nil {
		return "", fmt.Errorf("failed to get spreadsheet: %w", err)
	}
	spreadsheetID := spreadsheet.SpreadsheetId

	sheetIDs, err := w.ensureTabs(ctx, spreadsheet, titles)
	if err != nil {
		return "", fmt.Errorf("failed to prepare tabs: %w", err)
	}

	tabs := []struct {
		title  string
		values [][]any
	}{
		{w.config.TransactionsTitle, tableValues(report.Table)},
	}
	if len(titles) > 1 {
		tabs = append(tabs, struct {
			title  string
			values [][]any
		}{w.config.SummaryTitle, summaryValues(report)})
	}

	for _, tab := range tabs {
		err := common.WithRetry(ctx, func() error {
			if err := w.clearSheet(ctx, spreadsheetID, tab.title); err != nil {
				return err
			}
			return w.writeData(ctx, spreadsheetID, tab.title, tab.values)
		}, retryOpts)
		if err != nil {
			return "", fmt.Errorf("failed to write %s: %w", tab.title, err)
		}
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, spreadsheetID, sheetIDs[w.config.TransactionsTitle], len(report.Table.Columns))
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("statement published",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(report.Table.Rows))

	return spreadsheetID, nil
}

// getOrCreateSpreadsheet fetches the configured spreadsheet or creates a new one with
// the given tabs.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context, titles []string) (*sheets.Spreadsheet, error) {
	if w.config.SpreadsheetID != "" {
		spreadsheet, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, apiError(err))
		}
		return spreadsheet, nil
	}

	tabs := make([]*sheets.Sheet, 0, len(titles))
	for _, title := range titles {
		tabs = append(tabs, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: title}})
	}

	created, err := w.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: tabs,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to create spreadsheet: %w", apiError(err))
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	// Later publishes reuse the spreadsheet.
	w.config.SpreadsheetID = created.SpreadsheetId
	return created, nil
}

// ensureTabs returns the sheet ID of every title, adding the tabs that are missing.
func (w *Writer) ensureTabs(ctx context.Context, spreadsheet *sheets.Spreadsheet, titles []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}

	var requests []*sheets.Request
	var added []string
	for _, title := range titles {
		if _, ok := ids[title]; ok {
			continue
		}
		added = append(added, title)
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		})
	}
	if len(requests) == 0 {
		return ids, nil
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(spreadsheet.SpreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to add tabs %v: %w", added, err)
	}

	for i, reply := range resp.Replies {
		if i < len(added) && reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			ids[added[i]] = reply.AddSheet.Properties.SheetId
		}
	}
	return ids, nil
}

// clearSheet clears all data from the tab.
func (w *Writer) clearSheet(ctx context.Context, spreadsheetID, title string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, quoteTitle(title), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return apiError(err)
}

// writeData writes values to the tab in batches of BatchSize rows.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, title string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))
		batch := values[i:end]

		rangeStr := fmt.Sprintf("%s!A%d", quoteTitle(title), i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{Values: batch}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, apiError(err))
		}

		w.logger.Debug("wrote batch", "tab", title, "start_row", i+1, "rows", len(batch))
	}
	return nil
}

// apiError marks client errors other than rate limiting as not worth retrying.
func apiError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch {
	case gerr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case gerr.Code >= 400 && gerr.Code < 500:
		return &common.RetryableError{Err: err, Retryable: false}
	}
	return err
}

// applyFormatting bolds and freezes the header row of the transactions tab and
// resizes its columns.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, sheetID int64, columns int) error {
	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: formatRequests(sheetID, columns),
	}).Context(ctx).Do()
	return err
}

func formatRequests(sheetID int64, columns int) []*sheets.Request {
	return []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(columns),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(columns),
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}
}

// tableValues lays the table out as a header row followed by one row per table row.
func tableValues(table model.Table) [][]any {
	values := make([][]any, 0, len(table.Rows)+1)

	header := make([]any, len(table.Columns))
	for i, name := range table.Columns {
		header[i] = name
	}
	values = append(values, header)

	for _, row := range table.Rows {
		cells := make([]any, len(table.Columns))
		for i, name := range table.Columns {
			cells[i] = cellValue(row.Get(name))
		}
		values = append(values, cells)
	}
	return values
}

// summaryValues puts the report title above the summary rows.
func summaryValues(report Report) [][]any {
	values := make([][]any, 0, len(report.SummaryRows)+2)
	values = append(values, []any{report.Title}, []any{})
	return append(values, report.SummaryRows...)
}

// cellValue keeps user-entered parsing for numbers but stops remarks that start with
// '=' from being evaluated as formulas.
func cellValue(v model.Value) any {
	if !v.Present {
		return ""
	}
	if strings.HasPrefix(v.Text, "=") {
		return "'" + v.Text
	}
	return v.Text
}

func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
