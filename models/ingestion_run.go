package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// IngestionRunStatus represents the status of an ingestion run
type IngestionRunStatus string

const (
	RunStatusPending    IngestionRunStatus = "pending"
	RunStatusInProgress IngestionRunStatus = "in_progress"
	RunStatusCompleted  IngestionRunStatus = "completed"
	RunStatusFailed     IngestionRunStatus = "failed"
)

// IngestionRunKind distinguishes scrape runs from index rebuilds
type IngestionRunKind string

const (
	RunKindScrape       IngestionRunKind = "scrape"
	RunKindIndexRebuild IngestionRunKind = "index_rebuild"
)

// IngestionPhase represents a phase in an ingestion run
type IngestionPhase struct {
	Name        string `json:"name"`
	Status      string `json:"status"` // "pending", "in_progress", "completed", "failed"
	Description string `json:"description,omitempty"`
}

// IngestionPhases represents a list of ingestion phases
type IngestionPhases []IngestionPhase

// Value implements driver.Valuer for JSONB
func (p IngestionPhases) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB
func (p *IngestionPhases) Scan(value interface{}) error {
	if value == nil {
		*p = make(IngestionPhases, 0)
		return nil
	}

	// Handle different types that pgx might return for JSONB
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*p = make(IngestionPhases, 0)
		return nil
	}

	if len(bytes) == 0 {
		*p = make(IngestionPhases, 0)
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// IngestionRun records one execution of the scrape or index-rebuild pipeline
type IngestionRun struct {
	ID            uuid.UUID          `json:"id"`
	Kind          IngestionRunKind   `json:"kind"`
	Status        IngestionRunStatus `json:"status"`
	CurrentPhase  *string            `json:"current_phase,omitempty"`
	Phases        IngestionPhases    `json:"phases"`
	DocumentCount int                `json:"document_count"`
	ChunkCount    int                `json:"chunk_count"`
	SkippedCount  int                `json:"skipped_count"`
	ErrorMessage  *string            `json:"error_message,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
}
