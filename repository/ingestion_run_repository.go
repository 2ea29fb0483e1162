package repository

import (
	"context"
	"time"

	"campusconnect-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IngestionRunRepository handles database operations for ingestion runs
type IngestionRunRepository struct {
	db *pgxpool.Pool
}

// NewIngestionRunRepository creates a new ingestion run repository
func NewIngestionRunRepository(db *pgxpool.Pool) *IngestionRunRepository {
	return &IngestionRunRepository{db: db}
}

// Create creates a new ingestion run
func (r *IngestionRunRepository) Create(ctx context.Context, run *models.IngestionRun) error {
	query := `
		INSERT INTO ingestion_runs (
			kind, status, current_phase, phases, error_message
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		run.Kind,
		run.Status,
		run.CurrentPhase,
		run.Phases,
		run.ErrorMessage,
	).Scan(&run.ID, &run.CreatedAt, &run.UpdatedAt)

	return err
}

// GetByID retrieves an ingestion run by ID
func (r *IngestionRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.IngestionRun, error) {
	run := &models.IngestionRun{}
	query := `
		SELECT id, kind, status, current_phase, phases,
			document_count, chunk_count, skipped_count, error_message,
			created_at, updated_at, completed_at
		FROM ingestion_runs
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.Kind,
		&run.Status,
		&run.CurrentPhase,
		&run.Phases,
		&run.DocumentCount,
		&run.ChunkCount,
		&run.SkippedCount,
		&run.ErrorMessage,
		&run.CreatedAt,
		&run.UpdatedAt,
		&run.CompletedAt,
	)

	if err != nil {
		return nil, err
	}

	if run.Phases == nil {
		run.Phases = make(models.IngestionPhases, 0)
	}

	return run, nil
}

// GetLatestByKind retrieves the most recent run of a kind
func (r *IngestionRunRepository) GetLatestByKind(ctx context.Context, kind models.IngestionRunKind) (*models.IngestionRun, error) {
	run := &models.IngestionRun{}
	query := `
		SELECT id, kind, status, current_phase, phases,
			document_count, chunk_count, skipped_count, error_message,
			created_at, updated_at, completed_at
		FROM ingestion_runs
		WHERE kind = $1
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.QueryRow(ctx, query, kind).Scan(
		&run.ID,
		&run.Kind,
		&run.Status,
		&run.CurrentPhase,
		&run.Phases,
		&run.DocumentCount,
		&run.ChunkCount,
		&run.SkippedCount,
		&run.ErrorMessage,
		&run.CreatedAt,
		&run.UpdatedAt,
		&run.CompletedAt,
	)

	if err != nil {
		return nil, err
	}

	if run.Phases == nil {
		run.Phases = make(models.IngestionPhases, 0)
	}

	return run, nil
}

// UpdateStatus updates the status of an ingestion run
func (r *IngestionRunRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.IngestionRunStatus) error {
	query := `
		UPDATE ingestion_runs SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// UpdateProgress updates the current phase of an ingestion run
func (r *IngestionRunRepository) UpdateProgress(ctx context.Context, id uuid.UUID, currentPhase string, phases models.IngestionPhases) error {
	query := `
		UPDATE ingestion_runs SET
			current_phase = $2,
			phases = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, currentPhase, phases)
	return err
}

// Complete marks an ingestion run as completed with its final counts
func (r *IngestionRunRepository) Complete(ctx context.Context, id uuid.UUID, documentCount, chunkCount, skippedCount int) error {
	now := time.Now()
	query := `
		UPDATE ingestion_runs SET
			status = $2,
			document_count = $3,
			chunk_count = $4,
			skipped_count = $5,
			completed_at = $6,
			updated_at = $6
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.RunStatusCompleted, documentCount, chunkCount, skippedCount, now)
	return err
}

// Fail marks an ingestion run as failed
func (r *IngestionRunRepository) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE ingestion_runs SET
			status = $2,
			error_message = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.RunStatusFailed, errorMessage)
	return err
}
