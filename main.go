package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"

	"credit-report-engine/config"
	"credit-report-engine/database"
	"credit-report-engine/handlers"
	"credit-report-engine/metrics"
	"credit-report-engine/rabbitmq"
	"credit-report-engine/service"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	// Initialize database
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer db.Close()

	if err := db.CreateTables(); err != nil {
		log.WithError(err).Fatal("failed to create tables")
	}

	metrics.Register()

	// Initialize RabbitMQ publisher; analysis keeps working without it
	var publisher service.EventPublisher
	if cfg.PublishEnabled {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.WithError(err).Warn("failed to initialize RabbitMQ publisher, continuing without events")
		} else {
			publisher = pub
			defer pub.Close()
		}
	}

	// Initialize service and handlers
	svc := service.NewService(cfg, db, publisher)
	h := handlers.NewHandlers(db, svc)
	router := handlers.SetupRouter(h)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
}
