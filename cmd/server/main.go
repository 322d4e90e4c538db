package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harrysonduke/bsc-project/internal/analytics"
	"github.com/harrysonduke/bsc-project/internal/attendance"
	"github.com/harrysonduke/bsc-project/internal/cache"
	"github.com/harrysonduke/bsc-project/internal/config"
	"github.com/harrysonduke/bsc-project/internal/db"
	internalhttp "github.com/harrysonduke/bsc-project/internal/http"
	"github.com/harrysonduke/bsc-project/internal/httpmiddleware"
	"github.com/harrysonduke/bsc-project/internal/lecturer"
	"github.com/harrysonduke/bsc-project/internal/session"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	defer pool.Close()
	store := db.NewStore(pool)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalf("redis ping failed: %v", err)
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}()
	}

	lecturers := lecturer.NewRepository(pool)
	sessionRepo := session.NewRepository(store)
	sessions := session.NewService(sessionRepo, lecturers)
	recordRepo := attendance.NewRepository(pool)

	counts := cache.NewCountCache(redisClient, recordRepo, cfg.AnalyticsCacheTTL)
	reports := analytics.NewService(sessionRepo, counts)

	policy := attendance.Policy{
		RangeMeters:     cfg.RangeMeters,
		RejectUnlocated: cfg.RejectUnlocated,
	}
	ledger := attendance.NewLedger(sessions, recordRepo, policy, counts)

	limiter := httpmiddleware.NewRateLimiter(redisClient, cfg.SubmitRatePerMin)

	server := internalhttp.NewServer(cfg, lecturers, sessions, ledger, reports, limiter)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("attendance http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
