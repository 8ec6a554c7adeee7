package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/config"
	"github.com/Lumos-Labs-HQ/dotaseed/internal/database"
	"github.com/Lumos-Labs-HQ/dotaseed/internal/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var initProvider string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file and the dataset tables",
	Long: `
Initialize a dotaseed project:

1. Write dotaseed.config.json with default settings (skipped if it exists)
2. Create the static, player_info and match_info tables in the database
   pointed to by the configured URL environment variable

Existing tables are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(config.FileName); os.IsNotExist(err) {
			provider := initProvider
			if provider == "" {
				force, _ := cmd.Flags().GetBool("force")
				provider = utils.NewInputUtils().GetUserChoice(
					[]string{"postgresql", "mysql", "sqlite", "sqlite3"}, "🗄️  Database provider", force)
			}
			if err := config.InitializeProject(provider); err != nil {
				return fmt.Errorf("failed to initialize project: %w", err)
			}
			color.Green("✅ Created %s", config.FileName)
			viper.SetConfigFile(config.FileName)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read %s: %w", config.FileName, err)
			}
		} else {
			color.Yellow("⚠️  %s already exists, keeping it", config.FileName)
		}

		ctx := context.Background()
		cfg, sink, err := connect(ctx)
		if err != nil {
			return err
		}
		defer sink.Close()

		applier, ok := sink.(database.SchemaApplier)
		if !ok {
			return fmt.Errorf("provider %s cannot create the schema", cfg.Database.Provider)
		}

		color.Cyan("🔧 Creating dataset tables on %s...", cfg.Database.Provider)
		if err := applier.ApplySchema(ctx); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
		color.Green("✅ Schema ready")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initProvider, "provider", "", "Database provider for a new config (postgresql, mysql, sqlite, sqlite3)")
}
