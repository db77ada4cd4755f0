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

	grpcctx "github.com/dtroode/sessiongate/internal/api/grpc/context"
	grpchandler "github.com/dtroode/sessiongate/internal/api/grpc/handler"
	grpcrouter "github.com/dtroode/sessiongate/internal/api/grpc/router"
	grpcserver "github.com/dtroode/sessiongate/internal/api/grpc/server"
	httpctx "github.com/dtroode/sessiongate/internal/api/http/context"
	httprouter "github.com/dtroode/sessiongate/internal/api/http/router"
	httpserver "github.com/dtroode/sessiongate/internal/api/http/server"
	"github.com/dtroode/sessiongate/internal/config"
	"github.com/dtroode/sessiongate/internal/logger"
	"github.com/dtroode/sessiongate/internal/metrics"
	"github.com/dtroode/sessiongate/internal/model"
	"github.com/dtroode/sessiongate/internal/password"
	"github.com/dtroode/sessiongate/internal/repository/postgres"
	"github.com/dtroode/sessiongate/internal/server"
	"github.com/dtroode/sessiongate/internal/service"
	"github.com/dtroode/sessiongate/internal/token"
	"github.com/dtroode/sessiongate/internal/workerpool"
	"github.com/gin-gonic/gin"
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
	logger := logger.NewWithFormat(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	logAppVersion()

	policy, err := cfg.Argon.Policy()
	if err != nil {
		logger.Fatal("invalid password hashing policy", "error", err)
	}

	pool := workerpool.New(cfg.Hash.Workers, cfg.Hash.Queue)
	defer pool.Close()

	hasher, err := password.NewHasher(policy, pool)
	if err != nil {
		logger.Fatal("failed to create password hasher", "error", err)
	}
	logger.Info("password hashing policy loaded", "profile", cfg.Argon.Profile, "policy", hasher.Policy())

	tokens, err := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		logger.Fatal("failed to create token codec", "error", err)
	}

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)

	m := metrics.New()
	m.RegisterPool(pool)

	authService := service.NewAuth(userRepo, sessionRepo, hasher, tokens, tokens.TTL(), m, logger.Component("auth"))
	gate := service.NewGate(tokens, sessionRepo, m, logger.Component("gate"))
	sweeper := service.NewSweeper(sessionRepo, cfg.Session.PurgeInterval, m, logger.Component("sweeper"))

	created, err := authService.EnsureAdmin(ctx, model.AdminSeed{
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
		Email:    cfg.Admin.Email,
		Phone:    cfg.Admin.Phone,
	})
	if err != nil {
		logger.Fatal("failed to seed admin account", "error", err)
	}
	if created {
		logger.Info("admin account seeded", "username", cfg.Admin.Username)
	}

	gin.SetMode(gin.ReleaseMode)
	httpRouter := httprouter.New(authService, gate, db, m.Handler(), httpctx.NewManager(), logger.Component("http"))
	httpSrv := httpserver.NewHTTPServer(httpRouter.Register(), cfg.HTTP.Address)

	health := grpchandler.NewHealth(db, logger.Component("grpc"))
	grpcRouter := grpcrouter.New(gate, health, grpcctx.NewManager(), logger.Component("grpc"))
	grpcSrv := grpcserver.NewGRPCServer(grpcRouter.Register(), fmt.Sprintf(":%s", cfg.GRPC.Port))

	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	servers := []model.Server{httpSrv, grpcSrv}

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s)
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		health.Watch(ctx, cfg.GRPC.HealthInterval)
	}()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.Address())
		}
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
