// Command expcat categorizes bank transaction CSVs by keyword and serves
// the spending dashboard.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"expcat/internal/cli"
	"expcat/internal/config"
)

var (
	version = "dev"
	envFile string
	v       = config.NewViper()
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "expcat",
		Short: "💰 Smart expense categorizer",
		Long: `expcat reads a CSV of transactions (Date, Description, Amount), assigns each
one a spending category by keyword, and shows where the money went.

Run "expcat serve" for the web dashboard or "expcat categorize" for a one-off
report in the terminal.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	bindFlags(root, map[string]string{
		config.KeyLogLevel:  "log-level",
		config.KeyLogFormat: "log-format",
	})

	root.AddCommand(serveCmd())
	root.AddCommand(categorizeCmd())
	root.AddCommand(categoriesCmd())
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if err := cli.LoadEnvFile(envFile); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// bindFlags binds each viper key to the named flag of cmd.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			f = cmd.PersistentFlags().Lookup(name)
		}
		_ = v.BindPFlag(key, f)
	}
}
