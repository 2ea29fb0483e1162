package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Chunk is one window of a document's text plus the metadata it inherits
// from its parent document
type Chunk struct {
	ID                    string            `json:"id"`
	DocID                 uuid.UUID         `json:"doc_id"`
	ChunkIndex            int               `json:"chunk_index"`
	TotalChunks           int               `json:"total_chunks"`
	Text                  string            `json:"text"`
	Title                 string            `json:"title"`
	Category              Category          `json:"category"`
	Source                string            `json:"source"`
	DocType               DocType           `json:"doc_type"`
	CrawledAt             time.Time         `json:"crawled_at"`
	OriginalContentLength int               `json:"original_content_length"`
	Extra                 map[string]string `json:"extra,omitempty"`
	Embedding             []float64         `json:"-"`
	Score                 float64           `json:"score,omitempty"` // Cosine similarity (1 - distance), set on search results
}

// ChunkID builds the stable identifier for a chunk. Re-ingesting the same
// document overwrites its previous chunks because the ID does not change.
func ChunkID(docID uuid.UUID, chunkIndex int) string {
	return fmt.Sprintf("%s-%d", docID, chunkIndex)
}

// ChunkRecord is the JSON form written to the scraped-chunks artifact
type ChunkRecord struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkMetadata carries everything needed to rebuild the index from the
// artifact without re-scraping
type ChunkMetadata struct {
	DocID                 uuid.UUID         `json:"doc_id"`
	ChunkIndex            int               `json:"chunk_index"`
	TotalChunks           int               `json:"total_chunks"`
	Title                 string            `json:"title"`
	Category              Category          `json:"category"`
	Source                string            `json:"source"`
	DocType               DocType           `json:"doc_type"`
	CrawledAt             time.Time         `json:"crawled_at"`
	OriginalContentLength int               `json:"original_content_length"`
	Extra                 map[string]string `json:"extra,omitempty"`
}

// Record converts a chunk into its artifact form
func (c Chunk) Record() ChunkRecord {
	return ChunkRecord{
		Text: c.Text,
		Metadata: ChunkMetadata{
			DocID:                 c.DocID,
			ChunkIndex:            c.ChunkIndex,
			TotalChunks:           c.TotalChunks,
			Title:                 c.Title,
			Category:              c.Category,
			Source:                c.Source,
			DocType:               c.DocType,
			CrawledAt:             c.CrawledAt,
			OriginalContentLength: c.OriginalContentLength,
			Extra:                 c.Extra,
		},
	}
}

// Chunk rebuilds a chunk from its artifact form
func (r ChunkRecord) Chunk() Chunk {
	m := r.Metadata
	return Chunk{
		ID:                    ChunkID(m.DocID, m.ChunkIndex),
		DocID:                 m.DocID,
		ChunkIndex:            m.ChunkIndex,
		TotalChunks:           m.TotalChunks,
		Text:                  r.Text,
		Title:                 m.Title,
		Category:              m.Category,
		Source:                m.Source,
		DocType:               m.DocType,
		CrawledAt:             m.CrawledAt,
		OriginalContentLength: m.OriginalContentLength,
		Extra:                 m.Extra,
	}
}
