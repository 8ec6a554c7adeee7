package cmd

import (
	"context"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/reference"
	"github.com/Lumos-Labs-HQ/dotaseed/internal/seeder"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Load heroes and items from the reference API",
	Long: `
Fetch heroes, items, neutral items and neutral enchantments from the
reference API and insert them into the static tables. No synthetic rows
are generated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg, sink, err := connect(ctx)
		if err != nil {
			return err
		}
		defer sink.Close()

		client := reference.NewClient(cfg.Reference.BaseURL, cfg.Reference.Timeout)
		s, err := seeder.New(sink, client, seeder.DefaultOptions())
		if err != nil {
			return err
		}

		report, err := s.LoadReference(ctx)
		printReport(report)
		return err
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
