package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/fortuna/hockeygame/internal/cache"
	"github.com/fortuna/hockeygame/internal/config"
	"github.com/fortuna/hockeygame/internal/directus"
	"github.com/fortuna/hockeygame/internal/export"
	"github.com/fortuna/hockeygame/internal/ingest/hockeydb"
	"github.com/fortuna/hockeygame/internal/pipeline"
	"github.com/fortuna/hockeygame/internal/store"
	"github.com/fortuna/hockeygame/internal/store/repository"
)

const (
	appName    = "hockeygame-ingest"
	appVersion = "1.0.0"
)

func main() {
	log.Printf("=== %s v%s ===", appName, appVersion)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var (
		file      = flag.String("file", "", "Multi-player text dump to parse")
		ids       = flag.String("ids", "", "Comma-separated HockeyDB player ids to scrape")
		upload    = flag.Bool("upload", cfg.UploadEnabled(), "Upload players to Directus")
		persist   = flag.Bool("store", false, "Store players in PostgreSQL")
		exportDir = flag.String("export-dir", "", "Write front-end JSON files to this directory")
		saveDir   = flag.String("save-dir", cfg.HockeyDB.SaveDir, "Save scraped page text as player_<id>.txt")
		validate  = flag.Bool("validate", false, "Validate the export directory after writing")
		dryRun    = flag.Bool("dry-run", false, "Dry run (parse only, write nothing)")
	)

	flag.Parse()

	spec, err := buildSpec(*file, *ids)
	if err != nil {
		log.Fatalf("build spec: %v", err)
	}
	spec.Store = *persist
	spec.Upload = *upload
	spec.ExportDir = *exportDir
	spec.SaveDir = *saveDir
	spec.DryRun = *dryRun

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := pipeline.Options{
		Export: export.Options{
			MinNHLSeasons: cfg.Export.MinNHLSeasons,
			MaxFileSize:   cfg.Export.MaxFileSize,
		},
	}

	if spec.Store && !spec.DryRun {
		db, err := store.NewDatabase(cfg.Database.DSN, store.PoolConfig{MaxOpenConns: 4, MaxIdleConns: 2})
		if err != nil {
			log.Fatalf("connect database: %v", err)
		}
		defer db.Close()

		if err := db.RunMigrations(ctx, cfg.Database.MigrationsDir); err != nil {
			log.Fatalf("run migrations: %v", err)
		}
		opts.Store = repository.NewPlayerRepository(db)
	}

	if spec.Upload && !spec.DryRun {
		client, err := directus.NewClient(directus.Config{
			URL:      cfg.Directus.URL,
			Token:    cfg.Directus.Token,
			Timeout:  cfg.Directus.Timeout,
			RetryMax: cfg.Directus.RetryMax,
		})
		if err != nil {
			log.Fatalf("directus client: %v", err)
		}
		opts.Uploader = client
	}

	if spec.Type == pipeline.JobTypeScrape {
		scraper, err := hockeydb.NewClient(hockeydb.ClientConfig{
			BaseURL:     cfg.HockeyDB.BaseURL,
			Headless:    cfg.HockeyDB.Headless,
			Interval:    cfg.HockeyDB.Interval,
			PageTimeout: cfg.HockeyDB.PageTimeout,
		})
		if err != nil {
			log.Fatalf("hockeydb client: %v", err)
		}
		defer scraper.Close()

		// The page cache is optional for one-off runs
		var pageCache hockeydb.PageCache
		if redisCache, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.KeyPrefix); err != nil {
			log.Printf("⚠️  Redis unavailable, scraping without page cache: %v", err)
		} else {
			defer redisCache.Close()
			pageCache = redisCache
		}

		opts.Ingester = hockeydb.NewIngester(scraper, pageCache, cfg.Redis.PageTTL)
	}

	runner := pipeline.NewRunner(opts)

	summary, err := runner.Run(ctx, spec, pipeline.LogReporter{})
	if err != nil {
		log.Fatalf("pipeline failed: %v", err)
	}

	if *validate && spec.ExportDir != "" && !spec.DryRun {
		problems, err := export.Validate(spec.ExportDir, cfg.Export.MaxFileSize)
		if err != nil {
			log.Fatalf("validate export: %v", err)
		}
		for _, p := range problems {
			log.Printf("⚠️  %s", p)
		}
		if len(problems) == 0 {
			log.Println("✓ Export directory is valid")
		}
	}

	if summary.Failed > 0 {
		log.Printf("Completed with %d failed player(s)", summary.Failed)
		os.Exit(1)
	}

	log.Println("✓ Ingest completed successfully")
}

func buildSpec(file, ids string) (pipeline.JobSpec, error) {
	switch {
	case file != "" && ids != "":
		return pipeline.JobSpec{}, fmt.Errorf("specify either -file or -ids, not both")
	case file != "":
		return pipeline.JobSpec{Type: pipeline.JobTypeFile, File: file}, nil
	case ids != "":
		parsed, err := parseIDs(ids)
		if err != nil {
			return pipeline.JobSpec{}, err
		}
		return pipeline.JobSpec{Type: pipeline.JobTypeScrape, HockeyDBIDs: parsed}, nil
	default:
		return pipeline.JobSpec{}, fmt.Errorf("specify -file or -ids")
	}
}

func parseIDs(raw string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid hockeydb id %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no hockeydb ids in %q", raw)
	}
	return ids, nil
}
