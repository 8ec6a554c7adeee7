package cmd

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/seeder"
	"github.com/Lumos-Labs-HQ/dotaseed/internal/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every dataset row",
	Long: `
Delete all rows from the dataset tables, children first.
The tables themselves are kept.

⚠️  WARNING: This will permanently delete all generated and reference data!

Use --force to skip the confirmation prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		input := utils.NewInputUtils()
		if !input.AskConfirmation("Delete every row of the dataset?", force) {
			color.Yellow("❌ Reset cancelled")
			return nil
		}

		ctx := context.Background()
		_, sink, err := connect(ctx)
		if err != nil {
			return err
		}
		defer sink.Close()

		s, err := seeder.New(sink, nil, seeder.DefaultOptions())
		if err != nil {
			return err
		}
		if err := s.Reset(ctx); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		color.Green("✅ Dataset cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
