package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"expcat/internal/cli"
	"expcat/internal/core"
	"expcat/internal/csvfile"
)

func categorizeCmd() *cobra.Command {
	var (
		output string
		quiet  bool
	)
	cmd := &cobra.Command{
		Use:   "categorize <file.csv>",
		Short: "Categorize a CSV and print a spending summary",
		Long: `Read a transaction CSV, assign every row a category and print the totals
and the spending breakdown. With --output the categorized rows are written as
CSV ("-" writes to stdout).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategorize(cmd, args[0], output, quiet)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the categorized CSV to this path")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

func runCategorize(cmd *cobra.Command, path, output string, quiet bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	ds, err := csvfile.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	stderr := cmd.ErrOrStderr()
	txs := ds.Transactions()
	bar := cli.NewProgress(stderr, len(txs), quiet || output == "-")
	categorized := cli.CategorizeWithProgress(core.NewCategorizer(core.Rules()), txs, bar)

	cats := make([]core.Category, len(categorized))
	for i, t := range categorized {
		cats[i] = t.Category
	}

	if output == "-" {
		return csvfile.Export(cmd.OutOrStdout(), ds, cats)
	}
	if err := cli.RenderSummary(cmd.OutOrStdout(), filepath.Base(path), categorized, ds.Warnings); err != nil {
		return err
	}
	if output == "" {
		return nil
	}

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := csvfile.Export(out, ds, cats); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %d rows to %s", len(categorized), output)))
	return nil
}
