// Package app assembles the HTTP router for cmd/server.
package app

import (
	"fmt"

	"github.com/alimgiray/peoplebase/internal/docs"
	"github.com/alimgiray/peoplebase/internal/handlers"
	"github.com/alimgiray/peoplebase/internal/metrics"
	"github.com/alimgiray/peoplebase/internal/middleware"
	"github.com/alimgiray/peoplebase/internal/services"
	"github.com/alimgiray/peoplebase/web"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the router wires into handlers
type Deps struct {
	People         *services.PersonService
	Export         *services.ExportService
	GitHub         *services.GitHubService
	Sessions       *middleware.SessionManager
	RateLimiter    *middleware.RateLimiter
	Metrics        *metrics.Collector
	Gatherer       prometheus.Gatherer
	Docs           *docs.Library
	SecureCookies  bool
	// TrustedProxies are the only peers whose X-Forwarded-For is honored
	TrustedProxies []string
	Log            logrus.FieldLogger
}

// publicDocs are the documentation pages anyone can read
var publicDocs = []string{"about", "security", "mcp-setup", "auth-setup", "github"}

// NewRouter builds the gin engine with every route registered
func NewRouter(d Deps) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// Apply middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Log))
	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware())
	}
	router.Use(d.Sessions.Middleware())

	setupRoutes(router, d)

	return router, nil
}

func setupRoutes(router *gin.Engine, d Deps) {
	// Initialize handlers
	homeHandler := handlers.NewHomeHandler(d.People)
	authHandler := handlers.NewAuthHandler(d.GitHub, d.Sessions, d.SecureCookies, d.Log)
	consoleHandler := handlers.NewConsoleHandler(d.People, d.Export)
	docsHandler := handlers.NewDocsHandler(d.Docs)
	healthHandler := handlers.NewHealthHandler(d.People)
	notFoundHandler := handlers.NewNotFoundHandler()

	// Public pages
	router.GET("/", homeHandler.Index)
	router.GET("/people/:id", homeHandler.ViewPerson)
	for _, slug := range publicDocs {
		router.GET("/"+slug, docsHandler.Page(slug))
	}

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.GET("/signin", authHandler.SignIn)
		auth.GET("/signout", authHandler.SignOut)
		auth.GET("/github", authHandler.GitHubLogin)
		auth.GET("/github/callback", authHandler.GitHubCallback)
	}

	// Protected routes
	database := router.Group("/database")
	database.Use(middleware.AuthRequired())
	{
		database.GET("", docsHandler.Page("database"))
	}

	console := router.Group("/mcp-demo")
	console.Use(middleware.AuthRequired())
	{
		console.GET("", consoleHandler.Console)
		console.GET("/people/lookup", consoleHandler.LookupPerson)
		console.GET("/api/people", consoleHandler.ListJSON)
		console.GET("/export.xlsx", consoleHandler.Export)

		writes := console.Group("")
		if d.RateLimiter != nil {
			writes.Use(d.RateLimiter.Middleware())
		}
		writes.POST("/people", consoleHandler.CreatePerson)
		writes.POST("/people/:id", consoleHandler.UpdatePerson)
		writes.POST("/people/:id/delete", consoleHandler.DeletePerson)
	}

	// Health check and metrics endpoints
	router.GET("/health", healthHandler.HealthCheck)
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}

	router.NoRoute(notFoundHandler.NotFound)
}
