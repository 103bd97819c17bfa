package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"menu_backend/internal/app/config"
	"menu_backend/internal/app/di"
	"menu_backend/internal/app/maintenance"
	"menu_backend/internal/app/router"
	authadapters "menu_backend/internal/feature/auth/adapters"
	authhandler "menu_backend/internal/feature/auth/transport/handler"
	authusecase "menu_backend/internal/feature/auth/usecase"
	menuadapters "menu_backend/internal/feature/menu/adapters"
	menuhandler "menu_backend/internal/feature/menu/transport/handler"
	menuusecase "menu_backend/internal/feature/menu/usecase"
	"menu_backend/internal/platform/cache"
	"menu_backend/internal/platform/db"
	"menu_backend/internal/platform/http/handler"
	jwtmw "menu_backend/internal/platform/jwt"
	"menu_backend/internal/platform/logger"
	"menu_backend/internal/platform/qrcode"
	platformredis "menu_backend/internal/platform/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("menu-server", flag.ContinueOnError)
	configDir := fs.String("config", "", "directory containing config.yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var paths []string
	if *configDir != "" {
		paths = append(paths, *configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.WithModule("server")

	if cfg.Server.Mode == gin.DebugMode && cfg.Auth.JWT.Secret == "" {
		cfg.Auth.JWT.Secret = ephemeralSecret()
		log.Warn("auth.jwt.secret is not set; using a per-process secret, tokens will not survive a restart")
	}
	gin.SetMode(cfg.Server.Mode)

	// DB
	models := append(authadapters.Models(), menuadapters.Models()...)
	gdb, err := db.Open(cfg.Database, models...)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}

	// Redis（任意）
	rdb, err := platformredis.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, running without it", zap.Error(err))
		rdb = nil
	}

	defer func() {
		if err := closeAll(sqlDB.Close, rdb); err != nil {
			log.Error("failed to release resources", zap.Error(err))
		}
	}()

	sender, err := di.NewCodeSender(cfg.Email.SMTP, cfg.Auth.CodeTTL)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	if !cfg.Email.SMTP.Enabled {
		log.Warn("smtp disabled; verification codes are written to the log")
	}

	// Repository
	pending := authadapters.NewPendingGorm(gdb)
	resets := authadapters.NewResetGorm(gdb)
	sessions := di.NewSessionRepository(rdb, gdb)
	menus := menuadapters.NewMenuGorm(gdb)

	// Usecase
	authUC, err := authusecase.NewAuthUsecase(authusecase.Deps{
		Users:     authadapters.NewUserGorm(gdb),
		Pending:   pending,
		Resets:    resets,
		Sessions:  sessions,
		Tokens:    jwtmw.NewGenerator(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.AccessTTL),
		Sender:    sender,
		Passwords: authusecase.NewBcryptHasher(cfg.Auth.PasswordCost),
		Codes:     authusecase.NewBcryptHasher(cfg.Auth.CodeCost),
	}, authusecase.Config{
		MaxAttempts:     cfg.Auth.MaxAttempts,
		LockDuration:    cfg.Auth.LockDuration,
		CodeTTL:         cfg.Auth.CodeTTL,
		MaxCodeAttempts: cfg.Auth.MaxCodeTries,
		ResendCooldown:  cfg.Auth.ResendCooldown,
		RefreshTTL:      cfg.Auth.RefreshTTL,
		MaxSessions:     cfg.Auth.MaxSessions,
	})
	if err != nil {
		return fmt.Errorf("auth usecase: %w", err)
	}

	qr, err := qrcode.NewEncoder(cfg.Server.BaseURL, qrcode.DefaultSize)
	if err != nil {
		return err
	}
	publicMenus := cache.NewCachingMenuReader(rdb, cfg.Menu.CacheTTL, menus, "")
	menuUC := menuusecase.NewMenuUsecase(menus, publicMenus, qr, cfg.Menu.FreeLimit)

	// Handler
	health := handler.NewHealthHandler(map[string]handler.Checker{
		"database": sqlDB.PingContext,
		"redis":    redisCheck(rdb),
	})
	engine, err := router.NewRouter(router.Handlers{
		Health: health,
		Auth:   authhandler.NewAuthHandler(authUC),
		Menu:   menuhandler.NewMenuHandler(menuUC),
	}, router.Options{
		Limiter:        di.NewLimiter(rdb, cfg.RateLimit),
		JWTSecret:      cfg.Auth.JWT.Secret,
		JWTIssuer:      cfg.Auth.JWT.Issuer,
		TrustedProxies: cfg.Server.TrustedProxies,
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	if cfg.Maintenance.Enabled {
		cleaner := maintenance.NewCleaner(pending, resets, sessions, maintenance.WithSchedule(cfg.Maintenance.Schedule))
		if err := cleaner.Start(); err != nil {
			return err
		}
		defer func() { <-cleaner.Stop().Done() }()
	}

	return serve(ctx, log, &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	})
}

func serve(ctx context.Context, log *zap.Logger, server *http.Server) error {
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped gracefully")
	return nil
}

func redisCheck(rdb *redis.Client) handler.Checker {
	if rdb == nil {
		return nil
	}
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}

func closeAll(closeDB func() error, rdb *redis.Client) error {
	err := closeDB()
	if rdb != nil {
		err = multierr.Append(err, rdb.Close())
	}
	return err
}

func ephemeralSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
