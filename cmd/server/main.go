package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nimblebank/core-banking/internal/adapter/http/controller"
	"github.com/nimblebank/core-banking/internal/adapter/http/middleware"
	"github.com/nimblebank/core-banking/internal/adapter/http/router"
	"github.com/nimblebank/core-banking/internal/adapter/repository/postgres"
	"github.com/nimblebank/core-banking/internal/config"
	"github.com/nimblebank/core-banking/internal/logger"
	"github.com/nimblebank/core-banking/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := postgres.RunMigrations(ctx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	db, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	accountRepo := postgres.NewAccountRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)
	userRepo := postgres.NewUserRepository(db)
	auditRepo := postgres.NewAuditLogRepository(db)

	pinVerifier := services.NewPinVerifier(userRepo)
	transactionService := services.NewTransactionService(accountRepo, ledgerRepo, userRepo, pinVerifier)
	authService := services.NewAuthService(userRepo, accountRepo, auditRepo, cfg.JWTSecret, cfg.JWTExpiryHours)
	accountService := services.NewAccountService(accountRepo)
	adminService := services.NewAdminService(userRepo, accountRepo, auditRepo)
	userService := services.NewUserService(userRepo)

	mux := router.New(
		controller.NewAuthController(authService),
		controller.NewAccountController(accountService),
		controller.NewTransactionController(transactionService),
		controller.NewAdminController(adminService),
		controller.NewUserController(userService),
		middleware.JWTAuth(cfg.JWTSecret),
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.Fields{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-stop
	logger.Info("server shutting down", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", err, nil)
	}
}
