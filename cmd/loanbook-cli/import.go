package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"loanbook/internal/cli"
	"loanbook/internal/loanbook"
	"loanbook/internal/source/file"
)

func importCmd() *cobra.Command {
	var (
		from string
		key  string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the SQLite loan table with a JSON loans file",
		Long: `Read a JSON loans file and store its entries, uncleaned, in the SQLite
database so the server can run with LOAN_SOURCE=sqlite. The file is
checked with the same parser the server uses before anything is written.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			entries, err := file.New(from, key).ReadEntries(ctx)
			if err != nil {
				return err
			}
			// Fail before touching the database if the server could not load it.
			_, stats, err := loanbook.Build(ctx, entries)
			if err != nil {
				return fmt.Errorf("%s: %w", from, err)
			}

			repo, err := cli.InitSQLite(logger, viper.GetString("sqlite.path"))
			if err != nil {
				return err
			}
			defer repo.Close()

			n, err := repo.Import(ctx, entries)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
				"Imported %d entries into %s (%d would be kept, %d duplicates, %d bad date ranges)",
				n, viper.GetString("sqlite.path"), stats.Kept, stats.Duplicates, stats.InvalidRange)))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "loans_data.json", "JSON loans file to import")
	cmd.Flags().StringVar(&key, "key", file.DefaultKey, "top-level key holding the loan array")
	return cmd
}
