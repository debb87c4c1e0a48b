package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskhub/taskhub-backend/internal/api"
	"github.com/taskhub/taskhub-backend/internal/auth"
	"github.com/taskhub/taskhub-backend/internal/config"
	"github.com/taskhub/taskhub-backend/internal/db"
	"github.com/taskhub/taskhub-backend/internal/logger"
	"github.com/taskhub/taskhub-backend/internal/metrics"
	"github.com/taskhub/taskhub-backend/internal/repository/postgres"
	"github.com/taskhub/taskhub-backend/internal/services"
	"github.com/taskhub/taskhub-backend/internal/worker"
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

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	var notifier services.Notifier = services.NopNotifier{}
	if cfg.Audit {
		notifier = services.NewAuditNotifier(repos.AuditLogs, wp)
	}

	userSvc := services.NewUserService(repos.Users, repos.Projects, repos.Tasks, notifier)
	projectSvc := services.NewProjectService(repos.Projects, repos.Users, repos.Tasks, notifier)
	taskSvc := services.NewTaskService(repos.Tasks, repos.Projects, repos.Users, services.PermissiveTransitions(), notifier)

	var verifier auth.CredentialVerifier = auth.NewRepoVerifier(repos.Users)
	if cfg.BootstrapUser != "" {
		// Fixed bootstrap credentials for first-run provisioning.
		verifier = auth.Chain{
			auth.NewStaticVerifier(map[string]string{cfg.BootstrapUser: cfg.BootstrapPass}),
			verifier,
		}
	}

	metrics.Init()
	r := api.NewRouter(cfg, verifier, userSvc, projectSvc, taskSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
