package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/kwchan/bank-ivr/internal/config"
	"github.com/kwchan/bank-ivr/internal/handler"
	"github.com/kwchan/bank-ivr/internal/notify"
	"github.com/kwchan/bank-ivr/internal/repository"
	"github.com/kwchan/bank-ivr/internal/schedule"
	"github.com/kwchan/bank-ivr/internal/service"
	"github.com/kwchan/bank-ivr/internal/session"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatalf("Failed to load timezone %s: %v", cfg.Timezone, err)
	}

	// Initialize the account directory
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize the session store
	sessions, err := session.NewStore(session.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.SessionTTL,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to session store: %v", err)
	}
	defer sessions.Close()

	// Initialize layers
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, sessions, logger, cfg)
	notifier := notify.NewSender(cfg, logger)
	h := handler.NewHandler(svc, notifier, cfg, loc, logger)

	// Keep the call-centre availability flag on schedule
	job, err := schedule.New(cfg, sessions, loc, logger)
	if err != nil {
		logger.Fatalf("Failed to set up business-hours schedule: %v", err)
	}
	job.Start()
	defer job.Stop()

	// Setup router
	r := handler.NewRouter(h, sessions, cfg, logger)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting IVR server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
