package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/the-spice-must-tally/internal/cli"
	"github.com/Veraticus/the-spice-must-tally/internal/config"
	"github.com/Veraticus/the-spice-must-tally/internal/ingest"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func columnsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns <statement>",
		Short: "Show the columns of a statement and how they map",
		Long: `List the header of a statement and the serial, remarks, withdrawal and deposit
columns tally would use for it. The mapping is printed as a config snippet that can be
pasted into config.yaml.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindStatementFlags(cmd) },
		RunE:    runColumns,
	}

	addStatementFlags(cmd)
	cmd.Flags().BoolP("interactive", "i", false, "pick the mapping interactively")

	return cmd
}

// columnsSnippet is the config section printed by `tally columns`.
type columnsSnippet struct {
	Columns struct {
		Serial     string `yaml:"serial"`
		Remarks    string `yaml:"remarks"`
		Withdrawal string `yaml:"withdrawal"`
		Deposit    string `yaml:"deposit"`
	} `yaml:"columns"`
	Statement struct {
		Sheet     string `yaml:"sheet,omitempty"`
		HeaderRow int    `yaml:"header_row"`
	} `yaml:"statement"`
}

func runColumns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	interactive, _ := cmd.Flags().GetBool("interactive")

	table, err := ingest.DefaultRegistry().ReadFile(ctx, path, ingest.Options{Sheet: settings.Sheet, HeaderRow: settings.HeaderRow})
	if err != nil {
		return err
	}

	fields, matched := knownFields(table, settings.Columns)
	if !matched {
		fields = ingest.GuessFields(table.Columns, settings.Columns, ingest.OFXFields())
	}
	if interactive {
		fields, err = pickColumns(ctx, path, table.Columns, fields)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	rows := make([][]string, len(table.Columns))
	for i, name := range table.Columns {
		role := ""
		switch name {
		case fields.Serial:
			role = "serial"
		case fields.Remarks:
			role = "remarks"
		case fields.Withdrawal:
			role = "withdrawal"
		case fields.Deposit:
			role = "deposit"
		}
		rows[i] = []string{fmt.Sprint(i + 1), name, cli.StyleSuccess(role)}
	}
	fmt.Fprintln(out, cli.RenderTable([]string{"#", "Column", "Maps to"}, rows))
	fmt.Fprintln(out)

	if !matched && !interactive {
		fmt.Fprintln(out, cli.FormatWarning("The configured columns are not in this statement; the mapping below is a guess. Run with --interactive to pick it."))
		fmt.Fprintln(out)
	}

	var snippet columnsSnippet
	snippet.Columns.Serial = fields.Serial
	snippet.Columns.Remarks = fields.Remarks
	snippet.Columns.Withdrawal = fields.Withdrawal
	snippet.Columns.Deposit = fields.Deposit
	snippet.Statement.Sheet = settings.Sheet
	snippet.Statement.HeaderRow = settings.HeaderRow

	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(snippet); err != nil {
		return fmt.Errorf("failed to encode mapping: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode mapping: %w", err)
	}

	fmt.Fprintln(out, cli.SubtleStyle.Render("# config.yaml"))
	fmt.Fprint(out, b.String())
	return nil
}
