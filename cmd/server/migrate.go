package main

import (
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/config"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(_ *config.Config, db *gorm.DB) error {
			if err := repository.Migrate(db); err != nil {
				return err
			}
			logger.Info("Migrated %d tables", len(repository.Models()))
			return nil
		})
	},
}

// withDB 为一次性命令打开数据库，结束后关闭
func withDB(fn func(cfg *config.Config, db *gorm.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Database.AutoMigrate = false
	db, err := repository.Init(cfg.Database)
	if err != nil {
		return err
	}
	defer repository.Close(db)
	return fn(cfg, db)
}
