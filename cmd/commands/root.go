package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/pkg/config"
	"github.com/suteetoe/krist-shop/pkg/database"
	"github.com/suteetoe/krist-shop/pkg/logger"
)

const serviceName = "krist-shop"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "Krist shop - e-commerce REST backend",
	Long: `Krist shop serves the storefront and admin API: accounts, catalog, cart, wishlist,
coupons, orders, checkout, image uploads and marketing content.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

// bootstrap loads configuration, sets up logging and opens the database
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(serviceName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.GetLogger().Info("Configuration loaded", cfg.LogConfig()...)

	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cfg, db, nil
}

func migrate(db *gorm.DB) error {
	if err := database.MigrateModels(db, model.All()...); err != nil {
		return err
	}
	logger.GetLogger().Info("Database migrated", zap.Int("models", len(model.All())))
	return nil
}
