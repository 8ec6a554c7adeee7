package cmd

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/seeder"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show row counts of the dataset tables",
	Long:  `Show how many rows each dataset table holds, in dependency order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg, sink, err := connect(ctx)
		if err != nil {
			return err
		}
		defer sink.Close()

		opts := seeder.DefaultOptions()
		opts.Quiet = true
		s, err := seeder.New(sink, nil, opts)
		if err != nil {
			return err
		}

		counts, err := s.Status(ctx)
		if err != nil {
			return err
		}

		color.Cyan("📊 Dataset status (%s)", cfg.Database.Provider)
		var total int64
		for _, c := range counts {
			fmt.Printf("  %-30s %10d\n", c.Table, c.Rows)
			total += c.Rows
		}
		fmt.Printf("  %-30s %10d\n", "total", total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
