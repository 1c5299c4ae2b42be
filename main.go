package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/seo-audit/backend/analyzer"
	"github.com/seo-audit/backend/config"
	"github.com/seo-audit/backend/crawler"
	"github.com/seo-audit/backend/logging"
	"github.com/seo-audit/backend/metrics"
	"github.com/seo-audit/backend/middleware"
	"github.com/seo-audit/backend/stats"
)

func setupGinMode() {
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
}

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogJSON)
	setupGinMode()

	statsStorage, err := stats.NewStorage(cfg.DataDir)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize stats storage")
	}

	orchestrator := analyzer.NewOrchestrator(analyzer.Config{
		Crawl: crawler.Config{
			MaxPages:  cfg.CrawlMaxPages,
			MaxDepth:  cfg.CrawlMaxDepth,
			Delay:     cfg.CrawlDelay,
			Timeout:   cfg.CrawlTimeout,
			UserAgent: cfg.UserAgent,
		},
		PageSpeedAPIKey: cfg.PageSpeedAPIKey,
	}, log)

	rateLimiter := middleware.NewRateLimiter(0.2, 2) // one audit every 5s, small burst

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorHandler(log))

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/audit", rateLimiter.RateLimit(), func(c *gin.Context) {
			runAudit(c, orchestrator, statsStorage, log)
		})

		api.GET("/statistics", func(c *gin.Context) {
			c.JSON(http.StatusOK, statsStorage.GetCurrentStats())
		})
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown failed")
	}
	if err := statsStorage.Shutdown(); err != nil {
		log.WithError(err).Warn("stats flush failed")
	}
}

func runAudit(c *gin.Context, orchestrator *analyzer.Orchestrator, statsStorage *stats.Storage, log *logrus.Logger) {
	var request struct {
		URL string `json:"url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL provided"})
		return
	}

	auditID := uuid.NewString()
	metrics.AuditsStarted.Inc()
	started := time.Now()

	report, err := orchestrator.Run(c.Request.Context(), auditID, request.URL)
	if err != nil {
		metrics.AuditsFailed.Inc()
		statsStorage.RecordAudit(0, time.Since(started).Milliseconds(), true)
		log.WithError(err).WithField("auditId", auditID).Error("audit failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"auditId": auditID,
			"status":  "FAILED",
			"error":   err.Error(),
		})
		return
	}

	metrics.AuditsCompleted.Inc()
	metrics.PagesCrawled.Add(float64(report.PagesCrawled))
	metrics.AuditDuration.Observe(time.Since(started).Seconds())
	statsStorage.RecordAudit(report.PagesCrawled, report.DurationMs, false)

	c.JSON(http.StatusOK, report)
}
