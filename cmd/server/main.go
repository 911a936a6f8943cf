package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MATTHEWPURBA/management-system/internal/auth"
	"github.com/MATTHEWPURBA/management-system/internal/config"
	"github.com/MATTHEWPURBA/management-system/internal/crypto"
	"github.com/MATTHEWPURBA/management-system/internal/db"
	internalhttp "github.com/MATTHEWPURBA/management-system/internal/http"
	"github.com/MATTHEWPURBA/management-system/internal/jobs"
	"github.com/MATTHEWPURBA/management-system/internal/model"
	"github.com/MATTHEWPURBA/management-system/internal/repository"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connection failed", zap.Error(err))
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			logger.Fatal("redis ping failed", zap.Error(err))
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close error", zap.Error(err))
			}
		}()
	}

	store := repository.NewStore(pool)
	if err := seedAdmin(ctx, store, cfg, logger); err != nil {
		logger.Fatal("admin bootstrap failed", zap.Error(err))
	}

	denylist := auth.NewDenylist(redisClient)
	server := internalhttp.NewServer(cfg, store, denylist, logger)

	if cfg.SweepEnabled {
		sweeper := jobs.NewOverdueSweeper(store, logger, cfg.SweepInterval, cfg.SweepTimeout)
		sweeper.Start(ctx)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
}

// seedAdmin creates the first admin account when the users table is
// empty, so a fresh deployment can log in.
func seedAdmin(ctx context.Context, store *repository.Store, cfg config.Config, logger *zap.Logger) error {
	count, err := store.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		logger.Warn("users table is empty and no seed admin configured")
		return nil
	}

	hash, err := crypto.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	admin := model.User{
		ID:           uuid.New(),
		Name:         cfg.SeedAdminName,
		Email:        cfg.SeedAdminEmail,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Active:       true,
	}
	entry := model.ActivityLogEntry{
		ID:          uuid.New(),
		UserID:      nil,
		Action:      model.ActionCreateUser,
		Description: "Bootstrap created admin " + admin.Name + " (" + admin.Email + ")",
		LoggedAt:    time.Now().UTC(),
	}
	if err := store.CreateUser(ctx, admin, entry); err != nil {
		return err
	}
	logger.Info("seed admin created", zap.String("email", admin.Email))
	return nil
}
