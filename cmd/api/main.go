package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/logan-wrld/austin-port-to-rail/config"
	"github.com/logan-wrld/austin-port-to-rail/handlers"
	"github.com/logan-wrld/austin-port-to-rail/middleware"
	"github.com/logan-wrld/austin-port-to-rail/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Optionally own the model server's process lifecycle; Stop runs on
	// every exit path, signal-driven ones included.
	var runner *services.OllamaRunner
	if cfg.Ollama.Managed {
		runner, err = services.StartOllamaRunner(ctx, cfg.Ollama.Binary)
		if err != nil {
			log.Fatalf("Failed to start managed ollama: %v", err)
		}
	}
	defer runner.Stop()

	cache := services.NewCacheService(cfg.Redis)
	defer cache.Close()

	authService, err := services.NewAuthService(cfg.JWT, cfg.Operator)
	if err != nil {
		log.Fatalf("Failed to init auth service: %v", err)
	}

	oracle := services.NewOllamaService(cfg.Ollama)
	engine := services.NewMetricsEngine(nil)
	topology := services.NewTopologyService(cfg.Data)
	railService := services.NewRailAnalysisService(topology, oracle, cfg.Ollama.AnalysisTimeout())
	tracker := services.NewTrackerService(cfg.Data.TrackerPath())

	metricsHandler := handlers.NewMetricsHandler(engine, cache)
	chatHandler := handlers.NewChatHandler(engine, oracle, cfg.Ollama.ChatTimeout())
	railHandler := handlers.NewRailHandler(railService, cfg.Ollama.Model, cache)
	trackerHandler := handlers.NewTrackerHandler(tracker, cache)
	authHandler := handlers.NewAuthHandler(authService)

	router := gin.Default()
	router.Use(middleware.SetupCORS(cfg.CORS))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":     "ok",
				"ollama_url": cfg.Ollama.URL,
				"model":      cfg.Ollama.Model,
			})
		})

		api.POST("/auth/login", authHandler.Login)

		api.GET("/metrics", metricsHandler.GetMetrics)
		api.GET("/forecast", metricsHandler.GetForecast)
		api.GET("/surge-analysis", metricsHandler.GetSurgeAnalysis)
		api.POST("/chat", chatHandler.Chat)
		api.GET("/rail-analysis", railHandler.GetRailAnalysis)

		api.GET("/ship-tracker", trackerHandler.GetTracker)
		api.POST("/ship-tracker", middleware.RequireAuth(authService), trackerHandler.UpdateTracker)
		api.GET("/ship-tracker/vessels", trackerHandler.GetVessels)
		api.GET("/ship-tracker/docked", trackerHandler.GetDocked)
		api.GET("/ship-tracker/history", trackerHandler.GetHistory)
		api.GET("/ship-tracker/stats", trackerHandler.GetStats)
		api.GET("/ship-tracker/live", handlers.LiveVessels(cache, authService))
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s (ollama=%s model=%s)", addr, cfg.Ollama.URL, cfg.Ollama.Model)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
