package main

import (
	"fmt"
	"path/filepath"

	"github.com/Veraticus/the-spice-must-tally/internal/batch"
	"github.com/Veraticus/the-spice-must-tally/internal/cli"
	"github.com/Veraticus/the-spice-must-tally/internal/config"
	"github.com/Veraticus/the-spice-must-tally/internal/ingest"
	"github.com/spf13/cobra"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <directory>",
		Short: "Classify every statement in a directory",
		Long: `Classify all supported statements (xlsx, csv, ofx) in a directory in parallel.

Each statement is written next to the original with a .processed suffix, or into
--output-dir. Files that already carry the suffix are skipped, so the command can be
re-run on the same directory. A failing statement does not stop the others.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindStatementFlags(cmd); err != nil {
				return err
			}
			if f := cmd.Flags().Lookup("workers"); f.Changed {
				return bindFlags(cmd, map[string]string{"workers": config.KeyWorkers})
			}
			return nil
		},
		RunE: runBatch,
	}

	addStatementFlags(cmd)
	cmd.Flags().String("output-dir", "", "directory for results (default: next to each statement)")
	cmd.Flags().IntP("workers", "w", 0, "statements processed in parallel (default: number of CPUs)")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("output-dir")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	registry := ingest.DefaultRegistry()
	jobs, err := batch.Discover(args[0], outDir, registry.Supports)
	if err != nil {
		return err
	}
	// OFX results are written as workbooks
	for i := range jobs {
		jobs[i].Output = filepath.Join(filepath.Dir(jobs[i].Output), filepath.Base(defaultOutput(jobs[i].Path)))
	}
	jobs = batch.Deduplicate(jobs)

	out := cmd.OutOrStdout()
	if len(jobs) == 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render("No statements found in "+args[0]))
		return nil
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := handler.HandleInterrupts(cmd.Context(), "Finished statements have been written.")

	tax, err := loadTaxonomy(ctx, settings)
	if err != nil {
		return err
	}

	c := &classifier{settings: settings, taxonomy: tax, registry: registry}

	var progress func(batch.Result[classifyResult])
	if !noProgress {
		bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(jobs), "Classifying")
		defer func() { _ = bar.Finish() }()
		progress = func(batch.Result[classifyResult]) { _ = bar.Add(1) }
	}

	results, runErr := batch.Run(ctx, jobs, settings.Workers, c.classifyFile, progress)

	rows := make([][]string, 0, len(results))
	failed := 0
	for _, r := range results {
		name := filepath.Base(r.Job.Path)
		if r.Err != nil {
			failed++
			rows = append(rows, []string{name, "-", "-", "-", cli.StyleError(r.Err.Error())})
			continue
		}
		s := r.Value.Summary
		rows = append(rows, []string{
			name,
			fmt.Sprint(s.Rows),
			fmt.Sprint(s.Business),
			fmt.Sprint(s.Unmatched),
			cli.StyleSuccess(filepath.Base(r.Job.Output)),
		})
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTable([]string{"Statement", "Rows", "Business", "Uncategorised", "Result"}, rows))

	if runErr != nil {
		return fmt.Errorf("batch stopped early: %w", runErr)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d statements failed", failed, len(results))
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Classified %d statements", len(results))))
	return nil
}
