package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/config"
	"github.com/Lumos-Labs-HQ/dotaseed/internal/database"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "0.3.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════════════════════╗",
		"║      ██████╗  ██████╗ ████████╗ █████╗                       ║",
		"║      ██╔══██╗██╔═══██╗╚══██╔══╝██╔══██╗                      ║",
		"║      ██║  ██║██║   ██║   ██║   ███████║   ███████╗███████╗   ║",
		"║      ██║  ██║██║   ██║   ██║   ██╔══██║   ██╔════╝██╔════╝   ║",
		"║      ██████╔╝╚██████╔╝   ██║   ██║  ██║   ███████╗█████╗     ║",
		"║      ╚═════╝  ╚═════╝    ╚═╝   ╚═╝  ╚═╝   ╚════██║██╔══╝     ║",
		"║                                           ███████║███████╗   ║",
		"║                                           ╚══════╝╚══════╝   ║",
		"║         🌱 Synthetic match data for relational stores 🌱      ║",
		"╚══════════════════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("                        ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "dotaseed",
	Short: "Generate a synthetic Dota match dataset into a relational database",
	Long: `
dotaseed fills a relational database with a realistic, referentially
consistent dataset: heroes and items fetched from a public reference API,
then accounts, players, matches, per-player match stats and item usage.

Tables are populated in dependency order and every batch is committed
before the next one reads it back, so foreign keys always resolve.
Re-running the generator never duplicates rows.

Database Support:
- PostgreSQL
- MySQL
- SQLite (pure Go or cgo driver)`,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("dotaseed CLI version %s\n", Version)
			os.Exit(0)
		}

		if len(args) == 0 {
			showBanner()
			fmt.Println()
			cmd.Help()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./dotaseed.config.json)")
	rootCmd.PersistentFlags().BoolP("force", "f", false, "Skip confirmations")

	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("dotaseed.config")
	}

	viper.AutomaticEnv()

	viper.ReadInConfig()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// connect loads the config and opens the configured sink.
func connect(ctx context.Context) (*config.Config, database.Sink, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return nil, nil, err
	}

	sink, err := database.Open(ctx, cfg.Database.Provider, dbURL)
	if err != nil {
		return nil, nil, err
	}
	return cfg, sink, nil
}
