package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/platewise/backend/config"
	httpDelivery "github.com/platewise/backend/internal/delivery/http"
	"github.com/platewise/backend/internal/infrastructure/cache"
	"github.com/platewise/backend/internal/infrastructure/store"
	"github.com/platewise/backend/internal/infrastructure/usda"
	"github.com/platewise/backend/internal/infrastructure/vision"
	"github.com/platewise/backend/internal/usecase"
)

func main() {
	// Load .env before config; missing file is fine
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting PlateWise Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Preferred model: %s (force=%v, fallbacks=%v)",
		cfg.Model.Preferred, cfg.Model.Force, cfg.Model.Fallbacks)
	log.Printf("Invoke timeout: %s", cfg.Model.InvokeTimeout)

	// Infrastructure
	visionClient := vision.NewClient(cfg.Model.APIKey, cfg.Model.BaseURL)
	mealStore := store.NewMemoryMealStore()
	imageStore := store.NewMemoryImageStore()

	// Analysis pipeline
	pipeline := usecase.NewPipeline(visionClient, usecase.PipelineConfig{
		PreferredModel:  cfg.Model.Preferred,
		FallbackModels:  cfg.Model.Fallbacks,
		ForceMode:       cfg.Model.Force,
		InvokeTimeout:   cfg.Model.InvokeTimeout,
		RepairScanLimit: cfg.Model.MaxOutputChars,
		Heuristics:      cfg.Heuristics,
	})

	// Optional nutrition enrichment
	var enrichment *usecase.EnrichmentService
	if cfg.USDA.Enabled {
		usdaClient := usda.NewClient(cfg.USDA.APIKey, cfg.USDA.BaseURL, cfg.RateLimit.USDA)
		if cfg.Server.Environment == "development" {
			usdaClient.SetDebug(true)
		}
		enrichment = usecase.NewEnrichmentService(
			cache.NewMemoryCache(),
			usdaClient,
			usecase.EnrichmentServiceConfig{CacheTTL: cfg.Cache.TTL},
		)
		log.Printf("Nutrition enrichment enabled: %s (cache TTL %s)", cfg.USDA.BaseURL, cfg.Cache.TTL)
	} else {
		log.Printf("Nutrition enrichment disabled")
	}

	handler := httpDelivery.NewHandler(pipeline, mealStore, imageStore, enrichment)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
