package main

import (
	"context"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"campusconnect-backend/scraper"
	"campusconnect-backend/service"
	"campusconnect-backend/storage"

	"github.com/joho/godotenv"
)

const defaultCollegeBaseURL = "https://gmrit.edu.in"

// Runs the harvest and chunking pipeline standalone and writes the
// scraped-chunks artifact to storage. No database required.
func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	artifactStore, err := storage.NewStorageFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	baseURL := os.Getenv("COLLEGE_BASE_URL")
	if baseURL == "" {
		baseURL = defaultCollegeBaseURL
	}

	var insecure []string
	if u, err := url.Parse(baseURL); err == nil && u.Hostname() != "" {
		insecure = append(insecure, u.Hostname())
	}

	harvester := scraper.NewHarvester(scraper.NewFetcher(insecure...), baseURL)

	ingestService := service.NewIngestService(
		service.IngestWithHarvester(harvester),
		service.IngestWithStorage(artifactStore),
	)

	summary, err := ingestService.RunIngestion(ctx)
	if err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}

	log.Printf("Ingestion complete: %d documents, %d chunks, %d skipped",
		summary.DocumentCount, summary.ChunkCount, summary.Skipped)
	log.Printf("Artifact written: %s", service.ArtifactName)
}
