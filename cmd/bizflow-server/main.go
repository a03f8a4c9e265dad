package main

import (
	"context"
	"log"
	"os"

	"github.com/existflow/bizflow/internal/assist"
	"github.com/existflow/bizflow/internal/config"
	"github.com/existflow/bizflow/internal/db"
	"github.com/existflow/bizflow/internal/logger"
	"github.com/existflow/bizflow/internal/taskstore"
	"github.com/existflow/bizflow/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	addr := cfg.Server.Addr
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	dsn := cfg.Storage.DSN
	driver := cfg.Storage.Driver
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		dsn = dbURL
		driver = db.DriverForDSN(dbURL)
	}

	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	policy, err := taskstore.ParsePolicy(cfg.Tasks.StatusPolicy)
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	var backend interface {
		taskstore.Persistence
		Close() error
	}
	if driver == "memory" {
		backend = db.NewMemory()
	} else {
		conn, err := db.Open(driver, dsn)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		backend = conn
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	store, err := taskstore.New(context.Background(), backend, taskstore.WithPolicy(policy))
	if err != nil {
		log.Fatalf("Failed to load tasks: %v", err)
	}

	gen := assist.NewClaudeGenerator(assist.APIKey(), cfg.AI)
	srv, err := server.New(store, backend, gen, cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	log.Printf("BizFlow server starting on %s (%s)", addr, driver)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
