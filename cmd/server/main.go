package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/domainping/domainping/internal/api"
	"github.com/domainping/domainping/internal/config"
	"github.com/domainping/domainping/internal/dispatch"
	"github.com/domainping/domainping/internal/metrics"
	"github.com/domainping/domainping/internal/notify"
	"github.com/domainping/domainping/internal/planner"
	"github.com/domainping/domainping/internal/scheduler"
	"github.com/domainping/domainping/internal/storage/postgres"
	"github.com/domainping/domainping/internal/whois"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	// Database
	if err := postgres.Migrate(cfg.Database.URL); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	db, err := postgres.NewConnection(cfg.Database.URL, cfg.Database.MaxConnections, cfg.Database.MaxIdleConns)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	domains := postgres.NewDomainRepo(db)
	notifications := postgres.NewNotificationRepo(db)

	// WHOIS
	transport := whois.NewClient(cfg.Whois.Timeout, cfg.Whois.RatePerMinute)
	refresher := whois.NewRefresher(transport, cfg.Whois.MaxRetries, logger)

	// Notifications
	senders := notify.NewSenders(cfg.Notifications)
	collector := metrics.NewCollector()
	reminderPlanner := planner.New(notifications, cfg.Notifications.DefaultReminderDays, logger)
	dispatcher := dispatch.New(notifications, domains, senders, collector, logger)

	// Scheduler
	sched := scheduler.New(domains, notifications, refresher, reminderPlanner, dispatcher, collector, cfg.Scheduler, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// API Server
	server := api.NewServer(cfg, db, domains, notifications, sched, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.Router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sched.Stop(ctx)

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
