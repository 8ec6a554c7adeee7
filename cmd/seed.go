package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/config"
	"github.com/Lumos-Labs-HQ/dotaseed/internal/database"
	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/memory"
	"github.com/Lumos-Labs-HQ/dotaseed/internal/reference"
	"github.com/Lumos-Labs-HQ/dotaseed/internal/seeder"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	seedAccounts      int
	seedPlayers       int
	seedMatches       int
	seedRandom        uint64
	seedSkipReference bool
	seedReport        string
	seedUTC           bool
	seedDryRun        bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate the dataset",
	Long: `
Generate and insert the full dataset in dependency order:

  heroes, items, neutral items, enchants
  → steam accounts → players → matches
  → player match stats → neutral item usage → item usage

Every batch is committed before the next table reads it back. Rows that
collide with existing unique keys are skipped, so seeding twice only adds
new accounts, players and matches.

Use --skip-reference when the static tables are already loaded, and
--dry-run to check generation without a database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkSeedFlags(seedDryRun, seedSkipReference); err != nil {
			return err
		}

		ctx := context.Background()
		var (
			cfg  *config.Config
			sink database.Sink
			opts seeder.Options
			err  error
		)
		if seedDryRun {
			if cfg, err = loadConfig(); err != nil {
				return err
			}
			opts = seedOptions(cmd, cfg)
			if opts.Seed == 0 {
				opts.Seed = uint64(time.Now().UnixNano())
			}
			sink = memory.NewSeeded(opts.Seed)
			color.Yellow("🧪 Dry run: rows are kept in memory and discarded")
		} else {
			if cfg, sink, err = connect(ctx); err != nil {
				return err
			}
			opts = seedOptions(cmd, cfg)
		}
		defer sink.Close()

		var provider reference.Provider
		if !seedSkipReference {
			provider = reference.NewClient(cfg.Reference.BaseURL, cfg.Reference.Timeout)
		}

		s, err := seeder.New(sink, provider, opts)
		if err != nil {
			return err
		}

		report, runErr := s.Run(ctx)
		printReport(report)
		if err := writeReport(report, cfg.Seed.ReportPath); err != nil {
			return err
		}
		if runErr != nil {
			color.Red("❌ Seeding stopped: %v", runErr)
			return runErr
		}
		return nil
	},
}

// checkSeedFlags rejects flag combinations that cannot produce a dataset.
func checkSeedFlags(dryRun, skipReference bool) error {
	if dryRun && skipReference {
		return fmt.Errorf("--dry-run starts from an empty in-memory store and needs the reference data; drop --skip-reference")
	}
	return nil
}

func seedOptions(cmd *cobra.Command, cfg *config.Config) seeder.Options {
	opts := seeder.Options{
		Accounts:      cfg.Seed.Accounts,
		Players:       cfg.Seed.Players,
		Matches:       cfg.Seed.Matches,
		Seed:          cfg.Seed.RandomSeed,
		RandomOffsets: cfg.Seed.RandomOffsets,
	}
	if cmd.Flags().Changed("accounts") {
		opts.Accounts = seedAccounts
	}
	if cmd.Flags().Changed("players") {
		opts.Players = seedPlayers
	}
	if cmd.Flags().Changed("matches") {
		opts.Matches = seedMatches
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = seedRandom
	}
	if seedUTC {
		opts.RandomOffsets = false
	}
	if cmd.Flags().Changed("report") {
		cfg.Seed.ReportPath = seedReport
	}
	return opts
}

func printReport(report *seeder.Report) {
	if report == nil || len(report.Stages) == 0 {
		return
	}
	fmt.Println()
	color.Cyan("📊 Seed %d", report.Seed)
	fmt.Printf("%-30s %10s %10s %10s %12s\n", "TABLE", "GENERATED", "INSERTED", "SKIPPED", "DURATION")
	for _, st := range report.Stages {
		fmt.Printf("%-30s %10d %10d %10d %12s\n", st.Table, st.Generated, st.Inserted, st.Skipped, st.Duration.Round(time.Millisecond))
	}
}

func writeReport(report *seeder.Report, path string) error {
	if report == nil || path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := report.WriteYAML(f); err != nil {
		return err
	}
	color.Green("📄 Report written to %s", path)
	return nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().IntVar(&seedAccounts, "accounts", 0, "Number of steam accounts to generate")
	seedCmd.Flags().IntVar(&seedPlayers, "players", 0, "Number of players to generate")
	seedCmd.Flags().IntVar(&seedMatches, "matches", 0, "Number of matches to generate")
	seedCmd.Flags().Uint64Var(&seedRandom, "seed", 0, "Random seed (0 picks one from the clock)")
	seedCmd.Flags().BoolVar(&seedSkipReference, "skip-reference", false, "Do not fetch heroes and items")
	seedCmd.Flags().StringVar(&seedReport, "report", "", "Write a YAML run report to this file")
	seedCmd.Flags().BoolVar(&seedUTC, "no-random-offsets", false, "Store match dates in UTC (MySQL always converts them to the session time zone)")
	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "Generate into memory without touching the database")
}
