package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/config"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/handler"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/middleware"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/scoring"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/storage"
)

func Setup(db *gorm.DB, cfg *config.Config, catalog scoring.Catalog, uploader storage.Uploader) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RequestLogger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.Server.AllowedOrigins))
	if cfg.Storage.MaxFileSize > 0 {
		r.MaxMultipartMemory = cfg.Storage.MaxFileSize
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "verifund-service",
		})
	})

	campaignHandler := handler.NewCampaignHandler(db)
	adminHandler := handler.NewAdminHandler(db)
	reportHandler := handler.NewProgressReportHandler(db, catalog, uploader, cfg.Storage)
	userHandler := handler.NewUserHandler(db, catalog)
	notificationHandler := handler.NewNotificationHandler(db)

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 公开读取
		v1.GET("/campaigns", campaignHandler.GetCampaigns)
		v1.GET("/campaigns/:id", campaignHandler.GetCampaign)
		v1.GET("/campaigns/:id/stats", campaignHandler.GetCampaignStats)
		v1.GET("/campaigns/:id/events", campaignHandler.GetCampaignEvents)
		v1.GET("/campaigns/:id/progress-reports", reportHandler.GetCampaignReports)
		v1.GET("/progress-reports/:id", reportHandler.GetProgressReport)
		v1.GET("/progress-reports/:id/credit-score", reportHandler.GetCreditScore)
		v1.GET("/users/:id/credit-summary", userHandler.GetCreditSummary)

		auth := v1.Group("", middleware.Auth(cfg.Auth))

		// 活动相关路由
		campaigns := auth.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.SubmitCampaign)
			campaigns.POST("/:id/contributions", campaignHandler.RecordContribution)
			campaigns.POST("/:id/claims", campaignHandler.ClaimFunds)
			campaigns.POST("/:id/cancel", campaignHandler.CancelCampaign)
			campaigns.POST("/:id/start-progress", campaignHandler.StartProgress)
			campaigns.POST("/:id/complete", campaignHandler.CompleteCampaign)
			campaigns.POST("/:id/fraud-reports", campaignHandler.ReportFraud)
			campaigns.POST("/:id/progress-reports", reportHandler.CreateProgressReport)
		}

		// 进度报告相关路由
		reports := auth.Group("/progress-reports")
		{
			reports.POST("/:id/documents", reportHandler.AttachDocument)
			reports.POST("/:id/documents/upload", reportHandler.UploadDocument)
			reports.POST("/:id/ratings", reportHandler.RateReport)
		}

		auth.GET("/users/me", userHandler.GetMe)
		auth.GET("/notifications", notificationHandler.GetNotifications)
		auth.PATCH("/notifications/:id/read", notificationHandler.MarkRead)

		// 审核相关路由，角色在 logic 层校验
		admin := auth.Group("/admin/campaigns")
		{
			admin.POST("/:id/claim", adminHandler.ClaimReview)
			admin.POST("/:id/approve", adminHandler.Approve)
			admin.POST("/:id/reject", adminHandler.Reject)
			admin.POST("/:id/flag", adminHandler.Flag)
			admin.POST("/:id/clear-flag", adminHandler.ClearFlag)
			admin.POST("/:id/uphold-flag", adminHandler.UpholdFlag)
			admin.POST("/:id/close-with-refund", adminHandler.CloseWithRefund)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || containsWildcard(origins) {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
