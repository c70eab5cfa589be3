package main

import (
	"github.com/spf13/cobra"

	"expcat/internal/cli"
	"expcat/internal/core"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categorization rules",
		Long: `Print the keyword rules in precedence order. A description gets the category
of the first rule with a keyword it contains (case-insensitive); otherwise it is
Others.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.RenderRules(cmd.OutOrStdout(), core.Rules())
		},
	}
}
