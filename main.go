package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"marketplace-analytics/config"
	"marketplace-analytics/domain"
	httpLayer "marketplace-analytics/http"
	"marketplace-analytics/repository"
	"marketplace-analytics/service"
)

func main() {
	warm := flag.Bool("warm", false, "precompute analytics for every store, then exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var repo repository.StoreRepository
	if cfg.MySQLDSN != "" {
		mysqlRepo, err := repository.NewMySQLRepository(cfg.MySQLDSN)
		if err != nil {
			log.Fatalf("open mysql: %v", err)
		}
		defer mysqlRepo.Close()
		repo = mysqlRepo
	} else {
		log.Println("ANALYTICS_MYSQL_DSN not set, using in-memory repository")
		repo = repository.NewMemoryRepository()
	}

	var cache repository.CacheRepository
	if cfg.RedisAddr != "" {
		cache = repository.NewRedisCache(cfg.RedisAddr, cfg.CacheTTL)
	} else {
		cache = repository.NewMemoryCache(cfg.CacheTTL, cfg.CacheCapacity)
	}

	analyticsService := service.NewAnalyticsService(repo, cache)

	if *warm {
		if err := warmStores(context.Background(), analyticsService, repo); err != nil {
			log.Fatalf("warm cache: %v", err)
		}
		return
	}

	analyticsHandler := httpLayer.NewAnalyticsHandler(analyticsService)

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	defer rateLimiter.Stop()

	router := httpLayer.NewRouter(analyticsHandler, rateLimiter)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("analytics API listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Printf("Error starting server: %v", err)
		return
	case <-quit:
		log.Println("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server exited")
}

// warmStores primes the cache by computing full analytics for every
// known store.
func warmStores(ctx context.Context, svc *service.AnalyticsService, repo repository.StoreRepository) error {
	storeIDs, err := repo.StoreIDs(ctx)
	if err != nil {
		return err
	}
	log.Printf("warming analytics cache for %d stores", len(storeIDs))

	bar := progressbar.Default(int64(len(storeIDs)))
	for _, storeID := range storeIDs {
		if _, err := svc.Analytics(ctx, storeID, service.DefaultMonths, domain.LevelFull); err != nil {
			log.Printf("Warning: failed to warm store %s: %v", storeID, err)
		}
		_ = bar.Add(1)
	}
	return nil
}
