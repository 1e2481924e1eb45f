package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/vendora/internal/api"
	"github.com/vendora/internal/config"
	"github.com/vendora/internal/middleware"
	"github.com/vendora/internal/storage"
	"github.com/vendora/internal/upload"

	_ "github.com/vendora/docs" // swagger docs
)

// @title Vendora Marketplace API
// @version 1.0
// @description REST backend for a small e-commerce marketplace: authentication, product CRUD and image upload.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter your JWT token with the `Bearer ` prefix, e.g. "Bearer eyJhbGci..."

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	// The store being unreachable at boot is fatal.
	logrus.Info("connecting to database...")
	db, err := storage.NewDatabase(&cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	logrus.Info("running migrations...")
	if err := db.RunMigrations(); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	userRepo := storage.NewUserRepository(db)
	productRepo := storage.NewProductRepository(db)

	uploads, err := upload.NewStore(cfg.Upload.Dir)
	if err != nil {
		logrus.WithError(err).Fatal("failed to prepare upload area")
	}

	sweeper := upload.NewSweeper(uploads, productRepo, cfg.Upload.SweepMinAge)
	if err := sweeper.Start(cfg.Upload.SweepSchedule); err != nil {
		logrus.WithError(err).Fatal("invalid upload sweep schedule")
	}
	defer sweeper.Stop()

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT)
	handler := api.NewHandler(userRepo, productRepo, uploads, authMiddleware, db)
	router := api.NewRouter(handler, authMiddleware, cfg.Upload.Dir, cfg.CORS.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logrus.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("server shutdown error")
	}

	logrus.Info("server stopped")
}
