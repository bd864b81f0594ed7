package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"ai_metering/internal/config"
	"ai_metering/internal/credentials"
	"ai_metering/internal/providers"
	"ai_metering/internal/storage"
)

// rotate-credential validates a new credential value against the live
// provider and commits it to the store. Exits non-zero when the
// provider rejects the value, leaving the old credential in place.
func main() {
	name := flag.String("name", "", "credential name (e.g. OPENAI_API_KEY)")
	value := flag.String("value", "", "new credential value")
	validateOnly := flag.Bool("validate", false, "only validate the currently stored credential")
	flag.Parse()

	if *name == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbCfg := storage.DefaultDBConfig()
	dbCfg.URL = cfg.Database.URL
	db, err := storage.NewDB(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	enc, err := storage.NewEncryptionFromBase64(cfg.Credentials.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize credential encryption: %v", err)
	}

	registry := providers.NewRegistry(
		providers.NewOpenAIProvider(cfg.Provider.OpenAIBaseURL),
		providers.NewImageGenProvider(cfg.Provider.ImageBaseURL),
		providers.NewAzureProvider(cfg.Provider.AzureEndpoint),
		providers.NewGoogleProvider(cfg.Provider.GoogleBaseURL),
	)

	cache := storage.NewLRUCache(16, time.Minute)
	resolver := credentials.NewResolver(cache, db.NewCredentialRepository(enc), registry, cfg.Provider.ProbeTimeout)

	ctx := context.Background()

	if *validateOnly {
		if resolver.Validate(ctx, *name) {
			fmt.Printf("Credential %s is valid\n", *name)
			return
		}
		fmt.Printf("Credential %s is invalid\n", *name)
		os.Exit(1)
	}

	if *value == "" {
		log.Fatal("-value is required unless -validate is set")
	}

	if err := resolver.Rotate(ctx, *name, *value); err != nil {
		log.Fatalf("Rotation failed: %v", err)
	}

	fmt.Printf("Credential %s rotated\n", *name)
}
