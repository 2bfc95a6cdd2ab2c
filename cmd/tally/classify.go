package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/the-spice-must-tally/internal/batch"
	"github.com/Veraticus/the-spice-must-tally/internal/classification"
	"github.com/Veraticus/the-spice-must-tally/internal/cli"
	"github.com/Veraticus/the-spice-must-tally/internal/common"
	"github.com/Veraticus/the-spice-must-tally/internal/config"
	"github.com/Veraticus/the-spice-must-tally/internal/export"
	"github.com/Veraticus/the-spice-must-tally/internal/ingest"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/Veraticus/the-spice-must-tally/internal/report"
	"github.com/Veraticus/the-spice-must-tally/internal/sheets"
	"github.com/Veraticus/the-spice-must-tally/internal/tui"
	"github.com/spf13/cobra"
)

// newPublisher and pickColumns are swapped out in tests.
var (
	newPublisher = defaultNewPublisher
	pickColumns  = defaultPickColumns
)

func defaultNewPublisher(ctx context.Context) (sheets.Publisher, error) {
	cfg, err := config.LoadSheetsConfig()
	if err != nil {
		return nil, fmt.Errorf("google sheets is not configured: %w", err)
	}
	w, err := sheets.NewWriter(ctx, *cfg, slog.Default())
	if err != nil {
		return nil, err
	}
	return w, nil
}

func defaultPickColumns(ctx context.Context, path string, columns []string, guess classification.Fields) (classification.Fields, error) {
	return tui.PickColumns(ctx, columns, guess, tui.WithTitle("Map the columns of "+filepath.Base(path)))
}

// statementFlags maps the flags shared by classify, batch and columns to their keys.
var statementFlags = map[string]string{
	"header-row": config.KeyHeaderRow,
	"sheet":      config.KeySheet,
	"serial":     config.KeySerialColumn,
	"remarks":    config.KeyRemarksColumn,
	"withdrawal": config.KeyWithdrawalColumn,
	"deposit":    config.KeyDepositColumn,
	"taxonomy":   config.KeyTaxonomyFile,
}

func addStatementFlags(cmd *cobra.Command) {
	cmd.Flags().Int("header-row", 1, "1-based row holding the column names")
	cmd.Flags().String("sheet", "", "worksheet to read (default: first sheet)")
	cmd.Flags().String("serial", "", "serial number column")
	cmd.Flags().String("remarks", "", "transaction remarks column")
	cmd.Flags().String("withdrawal", "", "withdrawal amount column")
	cmd.Flags().String("deposit", "", "deposit amount column")
	cmd.Flags().String("taxonomy", "", "taxonomy file to use instead of the stored one (JSON or YAML)")
}

// bindStatementFlags binds only the flags the user set, so config values are not
// shadowed by empty flag defaults.
func bindStatementFlags(cmd *cobra.Command) error {
	keys := make(map[string]string, len(statementFlags))
	for flag, key := range statementFlags {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			keys[flag] = key
		}
	}
	return bindFlags(cmd, keys)
}

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <statement>",
		Short: "Classify the transactions of one statement",
		Long: `Read a bank statement, find its block of numbered transactions and label each
one as a business expense by matching taxonomy keywords in its remarks.

Expense type, category, subcategory and remarks columns are added to the statement.
Excel statements are annotated in place in a copy so formatting is kept; other formats
are written as a new workbook or CSV file.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindStatementFlags(cmd) },
		RunE:    runClassify,
	}

	addStatementFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "output file (default: <statement>.processed.<ext>)")
	cmd.Flags().BoolP("interactive", "i", false, "pick the statement columns interactively")
	cmd.Flags().Bool("sheets", false, "publish the result to Google Sheets")
	cmd.Flags().Bool("summary", true, "print a summary of the classification")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	interactive, _ := cmd.Flags().GetBool("interactive")
	publish, _ := cmd.Flags().GetBool("sheets")
	showSummary, _ := cmd.Flags().GetBool("summary")

	if output == "" {
		output = defaultOutput(path)
	}

	tax, err := loadTaxonomy(ctx, settings)
	if err != nil {
		return err
	}

	c := &classifier{
		settings:    settings,
		taxonomy:    tax,
		registry:    ingest.DefaultRegistry(),
		interactive: interactive,
	}
	result, err := c.classifyFile(ctx, batch.Job{Path: path, Output: output})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Classified %d transactions into %s", result.Summary.Rows, result.Job.Output)))

	if publish {
		if err := publishResult(ctx, out, result); err != nil {
			return err
		}
	}

	if showSummary {
		fmt.Fprintln(out, report.Render(filepath.Base(path), result.Summary))
	}
	return nil
}

func publishResult(ctx context.Context, out io.Writer, result classifyResult) error {
	publisher, err := newPublisher(ctx)
	if err != nil {
		return err
	}

	id, err := publisher.Publish(ctx, sheets.Report{
		Title:       filepath.Base(result.Job.Path),
		Table:       result.Table,
		SummaryRows: report.Rows(result.Summary),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to google sheets: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess("Published to https://docs.google.com/spreadsheets/d/"+id))
	return nil
}

// defaultOutput places the result next to path. OFX has no tabular form to keep,
// so it becomes a workbook.
func defaultOutput(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	switch strings.ToLower(ext) {
	case ".ofx", ".qfx":
		ext = ".xlsx"
	}
	return stem + batch.ProcessedSuffix + ext
}

// classifyResult is one classified statement.
type classifyResult struct {
	Table   model.Table
	Job     batch.Job
	Fields  classification.Fields
	Summary classification.Summary
}

// classifier runs the read, classify and write steps for statements.
type classifier struct {
	settings    *config.Settings
	taxonomy    model.Taxonomy
	registry    *ingest.Registry
	interactive bool
}

func (c *classifier) classifyFile(ctx context.Context, job batch.Job) (classifyResult, error) {
	reader, err := c.registry.ForPath(job.Path)
	if err != nil {
		return classifyResult{}, err
	}

	opts := ingest.Options{Sheet: c.settings.Sheet, HeaderRow: c.settings.HeaderRow}
	table, err := c.registry.ReadFile(ctx, job.Path, opts)
	if err != nil {
		return classifyResult{}, err
	}

	fields, err := c.resolveFields(ctx, job.Path, table)
	if err != nil {
		return classifyResult{}, err
	}

	classified := classification.ClassifyWith(table, fields, c.taxonomy, c.settings.Output)
	out := fields.Writable(c.settings.Output)

	if err := c.write(ctx, reader, job, classified, out); err != nil {
		return classifyResult{}, err
	}

	summary := classification.Summarize(classified, fields, out)
	slog.Info("Classified statement",
		"path", job.Path,
		"output", job.Output,
		"rows", summary.Rows,
		"business", summary.Business,
		"uncategorised", summary.Unmatched)

	return classifyResult{Job: job, Table: classified, Fields: fields, Summary: summary}, nil
}

// resolveFields returns the configured columns when the statement has them, then
// the OFX layout. In interactive mode the user confirms or corrects the mapping.
func (c *classifier) resolveFields(ctx context.Context, path string, table model.Table) (classification.Fields, error) {
	configured := c.settings.Columns
	if !c.interactive {
		if fields, ok := knownFields(table, configured); ok {
			return fields, nil
		}
		return classification.Fields{}, common.NewUserError(
			"statement columns do not match; set them with --serial, --remarks, --withdrawal and --deposit or use --interactive",
			ingest.RequireColumns(table, configured))
	}

	picked, err := pickColumns(ctx, path, table.Columns, ingest.GuessFields(table.Columns, configured, ingest.OFXFields()))
	if err != nil {
		return classification.Fields{}, err
	}
	if err := ingest.RequireColumns(table, picked); err != nil {
		return classification.Fields{}, err
	}
	slog.Debug("Using picked columns", "path", path, "fields", picked.Names())
	return picked, nil
}

// knownFields returns the first of the configured and OFX mappings that table has.
func knownFields(table model.Table, configured classification.Fields) (classification.Fields, bool) {
	for _, fields := range []classification.Fields{configured, ingest.OFXFields()} {
		if ingest.RequireColumns(table, fields) == nil {
			return fields, true
		}
	}
	return classification.Fields{}, false
}

func (c *classifier) write(ctx context.Context, reader ingest.Reader, job batch.Job, table model.Table, out model.OutputColumns) error {
	if reader.Format() == "xlsx" && isWorkbook(job.Output) {
		src, err := os.Open(job.Path) // #nosec G304
		if err != nil {
			return fmt.Errorf("failed to reopen statement: %w", err)
		}
		defer func() { _ = src.Close() }()

		w := &export.XLSXWriter{HeaderRow: c.settings.HeaderRow, Sheet: c.settings.Sheet}
		err = w.Annotate(ctx, src, job.Output, table, out)
		if !errors.Is(err, export.ErrNoColumns) {
			return err
		}
	}
	return export.WriteFile(table, job.Output)
}

func isWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}
