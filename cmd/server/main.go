package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/peoplebase/internal/app"
	"github.com/alimgiray/peoplebase/internal/docs"
	"github.com/alimgiray/peoplebase/internal/metrics"
	"github.com/alimgiray/peoplebase/internal/middleware"
	"github.com/alimgiray/peoplebase/internal/repositories"
	"github.com/alimgiray/peoplebase/internal/services"
	"github.com/alimgiray/peoplebase/pkg/config"
	"github.com/alimgiray/peoplebase/pkg/database"
	"github.com/alimgiray/peoplebase/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	log := logger.Init(cfg.Log.Level, os.Stdout)

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	if cfg.Session.Secret == config.DefaultSessionSecret {
		log.Warn("SESSION_SECRET is not set, using the development default")
	}
	if !cfg.GitHub.Enabled() {
		log.Warn("GitHub OAuth is not configured, protected pages are unreachable")
	}

	// Initialize database
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// Initialize dependencies
	personRepo := repositories.NewPersonRepository(db)
	personService := services.NewPersonService(personRepo, collector, log)
	exportService := services.NewExportService(personService)
	githubService := services.NewGitHubService(cfg.GitHub)

	library, err := docs.Load()
	if err != nil {
		log.Fatalf("Failed to render docs: %v", err)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, log)
	defer rateLimiter.Stop()

	// Initialize router
	router, err := app.NewRouter(app.Deps{
		People:         personService,
		Export:         exportService,
		GitHub:         githubService,
		Sessions:       middleware.NewSessionManager(cfg.Session),
		RateLimiter:    rateLimiter,
		Metrics:        collector,
		Gatherer:       registry,
		Docs:           library,
		SecureCookies:  cfg.Session.SecureCookies,
		TrustedProxies: cfg.Server.TrustedProxies,
		Log:            log,
	})
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	// Setup server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shut down")
	}
	log.Info("Server stopped")
}
