package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/hockeygame/internal/api/rest"
	"github.com/fortuna/hockeygame/internal/api/websocket"
	"github.com/fortuna/hockeygame/internal/cache"
	"github.com/fortuna/hockeygame/internal/config"
	"github.com/fortuna/hockeygame/internal/directus"
	"github.com/fortuna/hockeygame/internal/export"
	"github.com/fortuna/hockeygame/internal/ingest/hockeydb"
	"github.com/fortuna/hockeygame/internal/pipeline"
	"github.com/fortuna/hockeygame/internal/publisher"
	"github.com/fortuna/hockeygame/internal/scheduler"
	"github.com/fortuna/hockeygame/internal/service"
	"github.com/fortuna/hockeygame/internal/store"
	"github.com/fortuna/hockeygame/internal/store/repository"
)

const (
	serviceName    = "hockeygame"
	serviceVersion = "1.0.0"
)

func main() {
	log.Printf("Starting %s v%s - HockeyDB ingestion service", serviceName, serviceVersion)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := store.NewDatabase(cfg.Database.DSN, store.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("✓ Connected to database")

	if err := db.RunMigrations(context.Background(), cfg.Database.MigrationsDir); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// Initialize Redis client with retry logic
	var redisCache *cache.RedisCache
	maxRetries := 30
	retryDelay := 2 * time.Second

	log.Println("Connecting to Redis...")
	for i := 0; i < maxRetries; i++ {
		redisCache, err = cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.KeyPrefix)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			log.Printf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, maxRetries, err, retryDelay)
			time.Sleep(retryDelay)
		} else {
			log.Fatalf("Failed to connect to Redis after %d attempts: %v", maxRetries, err)
		}
	}
	defer redisCache.Close()

	log.Println("✓ Connected to Redis")

	streamPublisher := publisher.NewRedisStreamPublisher(redisCache.Client())

	// Headless browser for HockeyDB pages
	scraper, err := hockeydb.NewClient(hockeydb.ClientConfig{
		BaseURL:     cfg.HockeyDB.BaseURL,
		Headless:    cfg.HockeyDB.Headless,
		Interval:    cfg.HockeyDB.Interval,
		PageTimeout: cfg.HockeyDB.PageTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to create HockeyDB client: %v", err)
	}
	defer scraper.Close()

	ingester := hockeydb.NewIngester(scraper, redisCache, cfg.Redis.PageTTL)
	players := repository.NewPlayerRepository(db)
	tracked := repository.NewTrackedRepository(db)

	opts := pipeline.Options{
		Ingester:  ingester,
		Store:     players,
		Publisher: streamPublisher,
		Export: export.Options{
			MinNHLSeasons: cfg.Export.MinNHLSeasons,
			MaxFileSize:   cfg.Export.MaxFileSize,
		},
	}

	if cfg.UploadEnabled() {
		uploader, err := directus.NewClient(directus.Config{
			URL:      cfg.Directus.URL,
			Token:    cfg.Directus.Token,
			Timeout:  cfg.Directus.Timeout,
			RetryMax: cfg.Directus.RetryMax,
		})
		if err != nil {
			log.Fatalf("Failed to create Directus client: %v", err)
		}
		opts.Uploader = uploader
		log.Printf("✓ Directus upload enabled (%s)", cfg.Directus.URL)
	} else {
		log.Println("⚠️  DIRECTUS_TOKEN not set, CMS upload disabled")
	}

	runner := pipeline.NewRunner(opts)

	// Pipeline progress is fanned out to websocket subscribers
	hub := websocket.NewHub()
	reporter := pipeline.MultiReporter{pipeline.LogReporter{}, hub}

	pipelineService := pipeline.NewService(runner, hub, log.Default())
	pipelineService.Start()

	log.Println("✓ Pipeline service started")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sched *scheduler.Orchestrator
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewOrchestrator(tracked, runner, reporter, &scheduler.Config{
			RefreshHour: cfg.Scheduler.RefreshHour,
			MaxRetries:  cfg.Scheduler.MaxRetries,
			RetryDelay:  cfg.Scheduler.RetryDelay,
			Upload:      cfg.Scheduler.Upload && cfg.UploadEnabled(),
		}, log.Default())

		go func() {
			if err := sched.Start(ctx); err != nil {
				log.Printf("Scheduler error: %v", err)
			}
		}()
		log.Println("✓ Scheduler started")
	}

	playerService := service.NewPlayerService(db, redisCache)

	handler := rest.NewHandler(rest.Deps{
		Players: playerService,
		Saver:   players,
		Jobs:    pipelineService,
		Tracked: tracked,
		Checks: map[string]rest.HealthCheck{
			"database": db.HealthCheck,
			"redis":    redisCache.HealthCheck,
		},
	})

	// Initialize REST API server
	restServer := rest.NewServer(cfg.HTTP.RESTPort, handler)
	go func() {
		log.Printf("Starting REST API server on port %s", cfg.HTTP.RESTPort)
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()

	// Initialize WebSocket server
	wsServer := websocket.NewServer(hub)
	go func() {
		log.Printf("Starting WebSocket server on port %s", cfg.HTTP.WSPort)
		if err := wsServer.Start(cfg.HTTP.WSPort); err != nil {
			log.Printf("WebSocket server error: %v", err)
		}
	}()

	log.Printf("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Printf("  REST API: http://0.0.0.0:%s", cfg.HTTP.RESTPort)
	log.Printf("  WebSocket: ws://0.0.0.0:%s/ws/pipeline", cfg.HTTP.WSPort)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Printf("Shutting down %s gracefully...", serviceName)

	cancel()
	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}
	if err := pipelineService.Shutdown(shutdownCtx); err != nil {
		log.Printf("Pipeline shutdown error: %v", err)
	}

	log.Printf("%s stopped", serviceName)
}
