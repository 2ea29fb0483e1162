package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"campusconnect-backend/models"
	"campusconnect-backend/scraper"
	"campusconnect-backend/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ArtifactName is the stable name of the scraped-chunks artifact
const ArtifactName = "scraped_chunks.json"

var (
	ErrHarvestFailed = errors.New("harvest run failed")
	ErrNoArtifact    = errors.New("no scraped-chunks artifact found; run a scrape first")
	ErrRunNotFound   = errors.New("ingestion run not found")
)

// HarvestRunner is the slice of the harvester the ingest service needs
type HarvestRunner interface {
	Run(ctx context.Context) ([]models.Document, scraper.HarvestSummary, error)
}

// BatchEmbedder embeds many document texts at once
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Indexer is the slice of the chunk repository the ingest service needs
type Indexer interface {
	Rebuild(ctx context.Context) error
	UpsertBatch(ctx context.Context, chunks []models.Chunk) error
	Count(ctx context.Context) (int, error)
}

// RunStore records and reads ingestion runs
type RunStore interface {
	Create(ctx context.Context, run *models.IngestionRun) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.IngestionRunStatus) error
	UpdateProgress(ctx context.Context, id uuid.UUID, currentPhase string, phases models.IngestionPhases) error
	Complete(ctx context.Context, id uuid.UUID, documentCount, chunkCount, skippedCount int) error
	Fail(ctx context.Context, id uuid.UUID, errorMessage string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.IngestionRun, error)
	GetLatestByKind(ctx context.Context, kind models.IngestionRunKind) (*models.IngestionRun, error)
}

// IngestionSummary reports the outcome of a scrape run
type IngestionSummary struct {
	DocumentCount int `json:"document_count"`
	ChunkCount    int `json:"chunk_count"`
	Skipped       int `json:"skipped"`
}

// IndexSummary reports the outcome of an index rebuild
type IndexSummary struct {
	DocumentCount int `json:"document_count"`
	ChunkCount    int `json:"chunk_count"`
}

// IngestService drives the two halves of the pipeline: harvest-and-chunk
// into the artifact, and artifact-to-vector-index
type IngestService struct {
	harvester HarvestRunner
	embedder  BatchEmbedder
	indexer   Indexer
	runRepo   RunStore
	store     storage.Storage
}

// IngestServiceOption is a functional option for IngestService
type IngestServiceOption func(*IngestService)

// IngestWithHarvester sets the harvester
func IngestWithHarvester(h HarvestRunner) IngestServiceOption {
	return func(s *IngestService) {
		s.harvester = h
	}
}

// IngestWithEmbedder sets the batch embedder
func IngestWithEmbedder(e BatchEmbedder) IngestServiceOption {
	return func(s *IngestService) {
		s.embedder = e
	}
}

// IngestWithIndexer sets the vector indexer
func IngestWithIndexer(i Indexer) IngestServiceOption {
	return func(s *IngestService) {
		s.indexer = i
	}
}

// IngestWithRunRepository sets the run bookkeeping repository. Optional:
// without it runs execute normally but are not recorded.
func IngestWithRunRepository(r RunStore) IngestServiceOption {
	return func(s *IngestService) {
		s.runRepo = r
	}
}

// IngestWithStorage sets the artifact store
func IngestWithStorage(st storage.Storage) IngestServiceOption {
	return func(s *IngestService) {
		s.store = st
	}
}

// NewIngestService creates a new ingest service
func NewIngestService(opts ...IngestServiceOption) *IngestService {
	s := &IngestService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunIngestion harvests the site, chunks every document and writes the
// scraped-chunks artifact
func (s *IngestService) RunIngestion(ctx context.Context) (*IngestionSummary, error) {
	run := s.startRun(ctx, models.RunKindScrape, models.IngestionPhases{
		{Name: "harvest", Status: "pending"},
		{Name: "chunk", Status: "pending"},
		{Name: "store_artifact", Status: "pending"},
	})

	docs, harvestSummary, err := s.harvester.Run(ctx)
	if err != nil {
		s.failRun(ctx, run, "harvest failed: "+err.Error())
		return nil, fmt.Errorf("%w: %v", ErrHarvestFailed, err)
	}
	s.markPhase(ctx, run, "harvest")

	var chunks []models.Chunk
	for i := range docs {
		chunks = append(chunks, scraper.ChunkDocument(&docs[i])...)
	}
	log.Printf("Total chunks created: %d", len(chunks))
	s.markPhase(ctx, run, "chunk")

	records := make([]models.ChunkRecord, 0, len(chunks))
	for _, chunk := range chunks {
		records = append(records, chunk.Record())
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		s.failRun(ctx, run, "failed to encode artifact: "+err.Error())
		return nil, fmt.Errorf("failed to encode artifact: %w", err)
	}

	path, err := s.store.Upload(ctx, ArtifactName, bytes.NewReader(data))
	if err != nil {
		s.failRun(ctx, run, "failed to store artifact: "+err.Error())
		return nil, fmt.Errorf("failed to store artifact: %w", err)
	}
	log.Printf("Scraped chunks saved to %s", path)
	s.markPhase(ctx, run, "store_artifact")

	summary := &IngestionSummary{
		DocumentCount: len(docs),
		ChunkCount:    len(chunks),
		Skipped:       harvestSummary.Skipped,
	}
	s.completeRun(ctx, run, summary.DocumentCount, summary.ChunkCount, summary.Skipped)

	return summary, nil
}

// RebuildIndex loads the artifact, embeds every chunk and replaces the
// vector index contents
func (s *IngestService) RebuildIndex(ctx context.Context) (*IndexSummary, error) {
	run := s.startRun(ctx, models.RunKindIndexRebuild, models.IngestionPhases{
		{Name: "load_artifact", Status: "pending"},
		{Name: "embed", Status: "pending"},
		{Name: "index", Status: "pending"},
	})

	chunks, err := s.loadArtifact(ctx)
	if err != nil {
		s.failRun(ctx, run, "failed to load artifact: "+err.Error())
		return nil, err
	}
	log.Printf("Loaded %d chunks from artifact", len(chunks))
	s.markPhase(ctx, run, "load_artifact")

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		s.failRun(ctx, run, "failed to embed chunks: "+err.Error())
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		err := fmt.Errorf("mismatch: got %d embeddings for %d chunks", len(embeddings), len(chunks))
		s.failRun(ctx, run, err.Error())
		return nil, err
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}
	s.markPhase(ctx, run, "embed")

	if err := s.indexer.Rebuild(ctx); err != nil {
		s.failRun(ctx, run, "failed to rebuild index: "+err.Error())
		return nil, fmt.Errorf("failed to rebuild index: %w", err)
	}
	if err := s.indexer.UpsertBatch(ctx, chunks); err != nil {
		s.failRun(ctx, run, "failed to upsert chunks: "+err.Error())
		return nil, fmt.Errorf("failed to upsert chunks: %w", err)
	}
	s.markPhase(ctx, run, "index")

	docIDs := make(map[uuid.UUID]bool)
	for _, chunk := range chunks {
		docIDs[chunk.DocID] = true
	}

	summary := &IndexSummary{
		DocumentCount: len(docIDs),
		ChunkCount:    len(chunks),
	}
	s.completeRun(ctx, run, summary.DocumentCount, summary.ChunkCount, 0)

	log.Printf("Index rebuilt: %d documents, %d chunks", summary.DocumentCount, summary.ChunkCount)
	return summary, nil
}

// LatestRun returns the most recent recorded run of a kind
func (s *IngestService) LatestRun(ctx context.Context, kind models.IngestionRunKind) (*models.IngestionRun, error) {
	if s.runRepo == nil {
		return nil, ErrRunNotFound
	}
	run, err := s.runRepo.GetLatestByKind(ctx, kind)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest run: %w", err)
	}
	return run, nil
}

// RunByID returns one recorded run
func (s *IngestService) RunByID(ctx context.Context, id uuid.UUID) (*models.IngestionRun, error) {
	if s.runRepo == nil {
		return nil, ErrRunNotFound
	}
	run, err := s.runRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return run, nil
}

// IndexStatus reports how many chunks the vector index currently holds
func (s *IngestService) IndexStatus(ctx context.Context) (int, error) {
	count, err := s.indexer.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count indexed chunks: %w", err)
	}
	return count, nil
}

func (s *IngestService) loadArtifact(ctx context.Context) ([]models.Chunk, error) {
	reader, err := s.store.Download(ctx, ArtifactName)
	if err != nil {
		return nil, ErrNoArtifact
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var records []models.ChunkRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoArtifact
	}

	chunks := make([]models.Chunk, 0, len(records))
	for _, record := range records {
		chunks = append(chunks, record.Chunk())
	}
	return chunks, nil
}

// Run bookkeeping is best effort: a missing repository or a bookkeeping
// failure never fails the pipeline.

func (s *IngestService) startRun(ctx context.Context, kind models.IngestionRunKind, phases models.IngestionPhases) *models.IngestionRun {
	if s.runRepo == nil {
		return nil
	}
	run := &models.IngestionRun{
		Kind:   kind,
		Status: models.RunStatusPending,
		Phases: phases,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		log.Printf("Warning: failed to record ingestion run: %v", err)
		return nil
	}
	if err := s.runRepo.UpdateStatus(ctx, run.ID, models.RunStatusInProgress); err != nil {
		log.Printf("Warning: failed to mark run in progress: %v", err)
	}
	run.Status = models.RunStatusInProgress
	return run
}

func (s *IngestService) markPhase(ctx context.Context, run *models.IngestionRun, phase string) {
	if run == nil {
		return
	}
	for i := range run.Phases {
		if run.Phases[i].Name == phase {
			run.Phases[i].Status = "completed"
		}
	}
	if err := s.runRepo.UpdateProgress(ctx, run.ID, phase, run.Phases); err != nil {
		log.Printf("Warning: failed to update run progress: %v", err)
	}
}

func (s *IngestService) completeRun(ctx context.Context, run *models.IngestionRun, docs, chunks, skipped int) {
	if run == nil {
		return
	}
	if err := s.runRepo.Complete(ctx, run.ID, docs, chunks, skipped); err != nil {
		log.Printf("Warning: failed to complete run record: %v", err)
	}
}

func (s *IngestService) failRun(ctx context.Context, run *models.IngestionRun, message string) {
	if run == nil {
		return
	}
	if err := s.runRepo.Fail(ctx, run.ID, message); err != nil {
		log.Printf("Warning: failed to mark run failed: %v", err)
	}
}
