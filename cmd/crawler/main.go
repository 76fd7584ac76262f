package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogsearch/ogsearch/internal/config"
	"github.com/ogsearch/ogsearch/internal/crawlworker"
	"github.com/ogsearch/ogsearch/internal/fetcher"
	"github.com/ogsearch/ogsearch/internal/frontier"
	"github.com/ogsearch/ogsearch/internal/resume"
	"github.com/ogsearch/ogsearch/internal/store"
)

const defaultConfigPath = "config/config.ini"

func main() {
	logFile, err := os.OpenFile("crawler.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(io.MultiWriter(os.Stdout, logFile))

	configPath := defaultConfigPath
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("failed to load config %s: %v", configPath, err)
		os.Exit(1)
	}
	if err := cfg.RequireStoreFields(); err != nil {
		log.Printf("invalid config: %v", err)
		os.Exit(1)
	}
	if err := cfg.RequireStartURL(); err != nil {
		log.Printf("invalid config: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("shutting down gracefully...")
		cancel()
	}()

	db, err := store.Connect(ctx, store.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
	})
	if err != nil {
		log.Printf("failed to connect to store: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Printf("failed to ensure schema: %v", err)
		os.Exit(1)
	}

	front := frontier.New()
	fetch := fetcher.New()

	var resumeStore *resume.Store
	if cfg.ResumeEnabled {
		resumeStore, err = resume.Open(cfg.ResumePath)
		if err != nil {
			log.Printf("failed to open resume store at %s: %v", cfg.ResumePath, err)
			os.Exit(1)
		}
		defer resumeStore.Close()
		log.Printf("crawl-resume enabled, using %s", cfg.ResumePath)
	}

	pool := crawlworker.New(crawlworker.Config{
		StartURL: cfg.StartURL,
		MaxDepth: cfg.CrawlDepth,
		Workers:  4,
	}, front, fetch, db, resumeStore)

	log.Printf("starting crawl from %s, depth=%d", cfg.StartURL, cfg.CrawlDepth)
	pool.Run(ctx)

	stats := pool.Stats()
	log.Printf("crawl complete: pages_crawled=%d pages_indexed=%d total_words=%d",
		stats.PagesCrawled, stats.PagesIndexed, stats.TotalWords)
}
