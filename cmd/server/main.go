package main

import (
	"fmt"
	"log"
	"os"

	"github.com/prefixlens/backend/config"
	httpDelivery "github.com/prefixlens/backend/internal/delivery/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting PrefixLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	log.Printf("Clustering: workers=%d, normalize bucket key=%v, stopwords=%d",
		cfg.Clustering.Workers, cfg.Clustering.NormalizeBucketKey, len(cfg.Clustering.Stopwords))

	router := httpDelivery.NewRouter(cfg)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
