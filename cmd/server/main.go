package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/api"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/auth"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/config"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/database"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/logging"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/repository"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/scheduler"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/service"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/storage"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck // nothing to do if the final flush fails
	zap.ReplaceGlobals(logger)

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	logger.Info("connected to database", zap.String("path", cfg.Database.Path))

	// Create repositories
	productRepo := repository.NewProductRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	userRepo := repository.NewUserRepository(db)

	feeds := service.NewFeeds(db, productRepo, transactionRepo, logger.Named("feed"))
	notifier := service.NewNotifier(feeds, logger.Named("service"), cfg.IsDevelopment())

	images, err := storage.NewLocalImageStore(cfg.Storage.UploadDir, cfg.Storage.UploadURLPrefix)
	if err != nil {
		logger.Fatal("failed to prepare upload directory", zap.Error(err))
	}

	sessionKey := cfg.Auth.SessionKey
	if sessionKey == "" {
		if sessionKey, err = auth.GenerateKey(); err != nil {
			logger.Fatal("failed to generate session key", zap.Error(err))
		}
		logger.Warn("SESSION_KEY is not set; sessions will not survive a restart")
	}
	sessions, err := auth.NewSessionManager(cfg.Auth.SessionTTL, sessionKey)
	if err != nil {
		logger.Fatal("invalid SESSION_KEY", zap.Error(err))
	}

	// Create services
	services := api.Services{
		System:    service.NewSystemService(db),
		Auth:      service.NewAuthService(userRepo, sessions, logger.Named("auth")),
		Products:  service.NewProductService(db, productRepo, transactionRepo, images, notifier),
		Ledger:    service.NewLedgerService(db, productRepo, transactionRepo, notifier),
		Dashboard: service.NewDashboardService(feeds, notifier),
		Backup:    service.NewBackupService(db, productRepo, transactionRepo, notifier),
	}

	if cfg.Auth.AdminEmail != "" {
		if err := services.Auth.EnsureOperator(context.Background(), cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			logger.Fatal("failed to set up operator account", zap.Error(err))
		}
	} else {
		logger.Warn("ADMIN_EMAIL is not set; only existing operator accounts can sign in")
	}

	backups, err := scheduler.New(services.Backup, cfg.Backup.Dir, cfg.Backup.Schedule, cfg.Backup.Keep, logger)
	if err != nil {
		logger.Fatal("invalid backup schedule", zap.Error(err))
	}
	backups.Start()
	defer backups.Stop()

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(services, cfg, logger.Named("http")),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", cfg.Server.Addr), zap.String("version", version.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}
	logger.Info("server exited")
}
