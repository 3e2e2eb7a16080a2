package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"earnings-ledger/internal/config"
	"earnings-ledger/internal/earnings"
	"earnings-ledger/internal/handler"
	"earnings-ledger/internal/middleware"
	"earnings-ledger/internal/util"
)

// SetupRouter configures the Gin engine and the JSON API.
// cipher may be nil, in which case audit logs are stored in clear.
func SetupRouter(cfg *config.Config, db *gorm.DB, engine *earnings.Engine, cipher *util.Cipher, log zerolog.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.RequestID(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ====== API ======
	api := r.Group("/api")

	// 解锁接口（不需要鉴权）
	authHandler := handler.NewAuthHandler(cfg.Security.PasscodeHash, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpireHours, log)
	api.POST("/auth/unlock", authHandler.Unlock)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, cfg.Security.PasscodeHash),
		middleware.AuditMiddleware(db, cipher, log),
	)

	earningHandler := handler.NewEarningHandler(engine, log)
	protected.GET("/earnings", earningHandler.ListEarnings)
	protected.POST("/earnings", earningHandler.CreateEarning)
	protected.DELETE("/earnings/:id", earningHandler.DeleteEarning)
	protected.GET("/earnings/streak", earningHandler.GetStreak)
	protected.GET("/earnings/day/:date", earningHandler.ClassifyDay)

	statsHandler := handler.NewStatsHandler(engine, log)
	protected.GET("/stats/monthly", statsHandler.GetMonthlyStats)
	protected.GET("/stats/calendar", statsHandler.GetCalendar)

	expenseHandler := handler.NewExpenseHandler(engine, log)
	protected.GET("/expenses", expenseHandler.ListExpenses)
	protected.POST("/expenses", expenseHandler.CreateExpense)
	protected.DELETE("/expenses/:id", expenseHandler.DeleteExpense)

	savingsHandler := handler.NewSavingsHandler(engine, log)
	protected.GET("/savings", savingsHandler.GetSavings)
	protected.POST("/savings/withdraw", savingsHandler.Withdraw)
	protected.GET("/goal", savingsHandler.GetGoal)
	protected.PUT("/goal", savingsHandler.SetGoal)

	logHandler := handler.NewLogHandler(db, cipher, cfg.App.PageSize, log)
	protected.GET("/logs", logHandler.ListLogs)

	exportHandler := handler.NewExportHandler(engine, log)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)
	protected.GET("/export/json", exportHandler.ExportJSON)

	return r
}
