package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	httpctx "github.com/dtroode/taskboard-server/internal/api/http/context"
	"github.com/dtroode/taskboard-server/internal/api/http/router"
	httpServer "github.com/dtroode/taskboard-server/internal/api/http/server"
	"github.com/dtroode/taskboard-server/internal/config"
	"github.com/dtroode/taskboard-server/internal/logger"
	"github.com/dtroode/taskboard-server/internal/model"
	"github.com/dtroode/taskboard-server/internal/password"
	"github.com/dtroode/taskboard-server/internal/repository/postgres"
	"github.com/dtroode/taskboard-server/internal/server"
	"github.com/dtroode/taskboard-server/internal/service"
	"github.com/dtroode/taskboard-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	hasher, err := password.NewBcrypt(cfg.Bcrypt.Cost)
	if err != nil {
		logger.Fatal("failed to initialize password hasher", "error", err)
	}
	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	userRepo := postgres.NewUserRepository(db)
	loginEventRepo := postgres.NewLoginEventRepository(db)
	taskRepo := postgres.NewTaskRepository(db)

	authService := service.NewAuth(userRepo, loginEventRepo, hasher, tokenManager, logger)
	taskService := service.NewTask(taskRepo, logger, cfg.Tasks.DefaultLimit, cfg.Tasks.MaxLimit)

	r := router.New(
		router.Services{Auth: authService, Task: taskService, Pinger: db},
		httpctx.NewManager(),
		cfg.HTTP.CORSAllowOrigins,
		logger,
	)
	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))
	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "https", cfg.HTTP.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
