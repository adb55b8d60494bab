package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookcycle/bookcycle-backend/internal/api"
	"github.com/bookcycle/bookcycle-backend/internal/auth"
	"github.com/bookcycle/bookcycle-backend/internal/config"
	"github.com/bookcycle/bookcycle-backend/internal/db"
	"github.com/bookcycle/bookcycle-backend/internal/logger"
	"github.com/bookcycle/bookcycle-backend/internal/metrics"
	"github.com/bookcycle/bookcycle-backend/internal/payment"
	"github.com/bookcycle/bookcycle-backend/internal/repository/postgres"
	"github.com/bookcycle/bookcycle-backend/internal/services"
	"github.com/bookcycle/bookcycle-backend/internal/storage"
	"github.com/bookcycle/bookcycle-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	images, err := storage.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region)
	if err != nil {
		log.Error("s3 init", "err", err)
		os.Exit(1)
	}

	notifSvc := services.NewNotificationService(repos.Notifications, repos.Users, wp)
	userSvc := services.NewUserService(repos.Users)
	bookSvc := services.NewBookService(repos.Books, notifSvc)
	txnSvc := services.NewTransactionService(repos.Transactions)
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.AppBaseURL)
	paySvc := services.NewPaymentService(repos.Users, repos.Transactions, gateway)
	supportSvc := services.NewSupportService(repos.SupportQueries)
	statsSvc := services.NewStatsService(repos.Stats)

	metrics.Init()
	handler := api.NewRouter(api.Deps{
		Cfg:           cfg,
		TM:            tm,
		Users:         userSvc,
		Books:         bookSvc,
		Txns:          txnSvc,
		Payments:      paySvc,
		Notifications: notifSvc,
		Support:       supportSvc,
		Stats:         statsSvc,
		Images:        images,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
