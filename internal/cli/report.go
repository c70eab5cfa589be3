package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"

	"expcat/internal/core"
	"expcat/internal/csvfile"
)

// NewProgress returns a bar counting categorized rows. quiet discards it.
func NewProgress(w io.Writer, total int, quiet bool) *progressbar.ProgressBar {
	if quiet {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Categorizing transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
}

// CategorizeWithProgress labels txs one by one, advancing bar.
func CategorizeWithProgress(c *core.Categorizer, txs []core.Transaction, bar *progressbar.ProgressBar) []core.CategorizedTransaction {
	out := make([]core.CategorizedTransaction, len(txs))
	for i, t := range txs {
		out[i] = core.CategorizedTransaction{Transaction: t, Category: c.Categorize(t.Description)}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return out
}

// RenderSummary writes the KPI box and the spending breakdown.
func RenderSummary(w io.Writer, name string, txs []core.CategorizedTransaction, warnings []csvfile.RowWarning) error {
	sum := core.Summarize(txs)
	kpis := strings.Join([]string{
		fmt.Sprintf("Transactions  %d", sum.Count),
		fmt.Sprintf("Spending      %s", ErrorStyle.Render(core.FormatMoney(sum.TotalExpense))),
		fmt.Sprintf("Income        %s", SuccessStyle.Render(core.FormatMoney(sum.TotalIncome))),
		fmt.Sprintf("Net           %s", BoldStyle.Render(core.FormatMoney(sum.Net))),
	}, "\n")
	if _, err := fmt.Fprintln(w, RenderBox(ChartIcon+" "+name, kpis)); err != nil {
		return err
	}

	for _, wn := range warnings {
		if _, err := fmt.Fprintln(w, FormatWarning(wn.String())); err != nil {
			return err
		}
	}

	breakdown := core.Breakdown(txs)
	if len(breakdown) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No expenses."))
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		TableHeaderStyle.Render("Category"),
		TableHeaderStyle.Render("Total"),
		TableHeaderStyle.Render("Count"),
		TableHeaderStyle.Render("Share"))
	for _, b := range breakdown {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f%%\n",
			categoryStyle(b.Category.Color()).Render(b.Category.Emoji()+" "+b.Category.String()),
			core.FormatMoney(b.Total), b.Count, b.Share*100)
	}
	return tw.Flush()
}

// RenderRules lists the rule table in precedence order.
func RenderRules(w io.Writer, rules []core.Rule) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n",
		TableHeaderStyle.Render("#"),
		TableHeaderStyle.Render("Category"),
		TableHeaderStyle.Render("Keywords"))
	for i, r := range rules {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1,
			categoryStyle(r.Category.Color()).Render(r.Category.Emoji()+" "+r.Category.String()),
			strings.Join(r.Keywords, ", "))
	}
	fmt.Fprintf(tw, "-\t%s\t%s\n",
		categoryStyle(core.Others.Color()).Render(core.Others.Emoji()+" "+core.Others.String()),
		SubtleStyle.Render("(no keyword matched)"))
	return tw.Flush()
}
