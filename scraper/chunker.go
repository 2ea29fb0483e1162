package scraper

import (
	"campusconnect-backend/models"
)

const (
	// ChunkWindow is the maximum chunk length in characters
	ChunkWindow = 1000
	// ChunkOverlap is the number of characters adjacent chunks share
	ChunkOverlap = 200
)

// SplitText slices text into windows of at most window characters where each
// adjacent pair shares exactly overlap characters. Windows are measured in
// runes, never splitting a multi-byte character, so every chunk is valid
// UTF-8. The final chunk runs to the end of the text and may be shorter.
// Splitting is deterministic: the same input always yields the same chunks,
// and a document shorter than the window comes back as a single chunk.
func SplitText(text string, window, overlap int) []string {
	if text == "" {
		return nil
	}
	if window <= 0 || overlap < 0 || overlap >= window {
		window, overlap = ChunkWindow, ChunkOverlap
	}

	runes := []rune(text)
	stride := window - overlap
	var chunks []string
	for start := 0; ; start += stride {
		end := start + window
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// ChunkDocument splits a document's content and stamps each chunk with its
// position and the document's metadata
func ChunkDocument(doc *models.Document) []models.Chunk {
	parts := SplitText(doc.Content, ChunkWindow, ChunkOverlap)

	chunks := make([]models.Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, models.Chunk{
			ID:                    models.ChunkID(doc.DocID, i),
			DocID:                 doc.DocID,
			ChunkIndex:            i,
			TotalChunks:           len(parts),
			Text:                  part,
			Title:                 doc.Title,
			Category:              doc.Category,
			Source:                doc.Source,
			DocType:               doc.DocType,
			CrawledAt:             doc.CrawledAt,
			OriginalContentLength: len(doc.Content),
			Extra:                 doc.Extra,
		})
	}
	return chunks
}
