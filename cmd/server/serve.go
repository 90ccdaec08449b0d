package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/config"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/event"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/logic"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/repository"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/router"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/scoring"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/storage"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/task"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and background jobs",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化数据库
	db, err := repository.Init(cfg.Database)
	if err != nil {
		return err
	}
	defer repository.Close(db)

	catalog, err := scoring.LookupCatalog(cfg.Scoring.CatalogVersion)
	if err != nil {
		return err
	}

	uploader, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	logger.Info("File storage: %s", uploader.Name())

	// 事件分发
	manager := event.NewProcessorManager(
		event.NewNotificationProcessor(db),
		event.NewAuditProcessor(),
	)
	dispatcher, err := event.NewDispatcher(logic.NewEventLogic(db), manager, cfg.Task.PoolSize, cfg.Task.BatchSize)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	// 启动定时任务
	jobs, err := task.NewManager(
		task.NewCampaignFinishJob(logic.NewCampaignLogic(db), time.Duration(cfg.Task.FinishInterval)*time.Second),
		task.NewEventDispatchJob(dispatcher, time.Duration(cfg.Task.DispatchInterval)*time.Second),
	)
	if err != nil {
		return err
	}
	if err := jobs.Start(); err != nil {
		return err
	}
	defer jobs.Stop()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router.Setup(db, cfg, catalog, uploader),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 配置文件变化时只热更新日志级别，其余配置需要重启
	cfg.Watch(func(next *config.Config) {
		logger.SetLevel(logger.ParseLogLevel(next.Log.Level))
		logger.Info("Log level set to %s", next.Log.Level)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
