package main

import (
	"log"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/altalabs/keywarden/internal/app"
	"github.com/altalabs/keywarden/internal/config"
	"github.com/altalabs/keywarden/internal/keys"
	"github.com/altalabs/keywarden/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := setupLogger(cfg)

	if err := config.EnsureDataDir(); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer store.Close()

	keyMaterial := cfg.DigestKey
	if keyMaterial == "" {
		keyMaterial = keys.DeriveKeyMaterial()
	}
	codec, err := keys.NewCodec(keyMaterial)
	if err != nil {
		log.Fatalf("failed to create key codec: %v", err)
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, *storage.Credential]{
		NumCounters: 1e6,
		MaxCost:     1 << 24,
		BufferItems: 64,
	})
	if err != nil {
		log.Fatalf("failed to create cache: %v", err)
	}
	defer cache.Close()

	svc := keys.NewService(store, codec, &keys.ServiceOptions{
		Cache:    cache,
		CacheTTL: time.Duration(cfg.CacheTTLSeconds) * time.Second,
		Logger:   logger,
	})

	if err := ensureBootstrapKey(store, svc); err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	router := app.NewRouter(&app.RouterOptions{
		Logger:  logger,
		Service: svc,
	})

	printStartupBanner(cfg)

	server := app.NewServer(cfg.ListenAddr, router)
	if err := server.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
