package main

import (
	"github.com/spf13/cobra"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/config"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
)

var configDir string

// rootCmd 服务入口，默认执行 serve
var rootCmd = &cobra.Command{
	Use:           "verifund",
	Short:         "VeriFund campaign lifecycle and credit scoring service",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "", "Directory containing config.yaml (default: ., ./config, /etc/verifund)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(tokenCmd)
}

// loadConfig 加载配置并初始化日志
func loadConfig() (*config.Config, error) {
	var paths []string
	if configDir != "" {
		paths = append(paths, configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("%v", err)
	}
	logger.Sync()
}
