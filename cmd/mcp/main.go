package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimgiray/peoplebase/internal/mcpserver"
	"github.com/alimgiray/peoplebase/internal/repositories"
	"github.com/alimgiray/peoplebase/internal/services"
	"github.com/alimgiray/peoplebase/pkg/config"
	"github.com/alimgiray/peoplebase/pkg/database"
	"github.com/alimgiray/peoplebase/pkg/logger"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

func main() {
	// stdout carries the protocol, everything else goes to stderr
	logger.Init(os.Getenv("LOG_LEVEL"), os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	log := logger.Init(cfg.Log.Level, os.Stderr)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	personService := services.NewPersonService(repositories.NewPersonRepository(db), nil, log)
	mcpServer := mcpserver.New(personService, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stdio := server.NewStdioServer(mcpServer)
	stdio.SetErrorLogger(stdlog.New(log.WriterLevel(logrus.ErrorLevel), "", 0))

	log.WithFields(logrus.Fields{
		"server":  mcpserver.ServerName,
		"version": mcpserver.ServerVersion,
		"driver":  cfg.Database.Driver,
	}).Info("MCP server listening on stdio")

	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		log.WithError(err).Error("MCP server stopped")
		return
	}
	log.Info("MCP server stopped")
}
