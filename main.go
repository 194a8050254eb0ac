package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/msanjurjo/fundlens/config"
	_ "github.com/msanjurjo/fundlens/docs"
	"github.com/msanjurjo/fundlens/internal/buckets"
	"github.com/msanjurjo/fundlens/internal/cache"
	"github.com/msanjurjo/fundlens/internal/database"
	"github.com/msanjurjo/fundlens/internal/handlers"
	"github.com/msanjurjo/fundlens/internal/middleware"
	"github.com/msanjurjo/fundlens/internal/quant"
	"github.com/msanjurjo/fundlens/internal/repository"
	"github.com/msanjurjo/fundlens/internal/services"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title fundlens API
// @version 1.0
// @description Fund normalization, bucket rescaling and candidate-ranking service.
// @BasePath /
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context for initialization
	ctx := context.Background()

	// Initialize database connection
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize quant service client
	quantClient := quant.NewClient(cfg.QuantURL)

	// Initialize caches
	memCache := cache.NewMemoryCache(10*time.Minute, 5*time.Minute)

	// Initialize repositories
	fundRepo := repository.NewFundRepository(db.Pool)

	// Initialize services
	fundSvc := services.NewFundService(fundRepo, memCache)
	discoverySvc := services.NewDiscoveryService(fundRepo)
	rankingSvc := services.NewRankingService(quantClient, memCache)
	rebalanceSvc := services.NewRebalanceService(buckets.DefaultPolicy())
	optimizerSvc := services.NewOptimizerService(quantClient)

	// Initialize handlers
	fundHandler := handlers.NewFundHandler(fundSvc)
	rebalanceHandler := handlers.NewRebalanceHandler(rebalanceSvc, optimizerSvc)
	discoveryHandler := handlers.NewDiscoveryHandler(fundSvc, discoverySvc, rankingSvc)
	csvHandler := handlers.NewCSVHandler(fundSvc)

	// Setup Gin router
	router := gin.Default()

	// Apply global middleware
	router.Use(middleware.ValidateUser())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Fund routes
	router.GET("/funds/:isin", fundHandler.Get)

	// Portfolio routes
	router.POST("/portfolio/rescale", rebalanceHandler.Rescale)
	router.POST("/portfolio/optimize", rebalanceHandler.Optimize)
	router.POST("/portfolio/alternatives", discoveryHandler.Alternatives)
	router.POST("/portfolio/alternatives/rank", discoveryHandler.Rank)
	router.POST("/portfolio/import", csvHandler.Import)
	router.POST("/portfolio/export", csvHandler.Export)

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	fmt.Println("Server exited")
}
