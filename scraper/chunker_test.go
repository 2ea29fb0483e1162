package scraper

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"campusconnect-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("hello world", ChunkWindow, ChunkOverlap)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestSplitTextEmpty(t *testing.T) {
	assert.Nil(t, SplitText("", ChunkWindow, ChunkOverlap))
}

func TestSplitTextExactWindow(t *testing.T) {
	text := strings.Repeat("a", ChunkWindow)
	chunks := SplitText(text, ChunkWindow, ChunkOverlap)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitTextWindowAndOverlap(t *testing.T) {
	// 2600 chars with stride 800 gives chunks at offsets 0, 800 and 1600
	text := strings.Repeat("abcdefghij", 260)
	chunks := SplitText(text, ChunkWindow, ChunkOverlap)
	require.Len(t, chunks, 3)

	assert.Equal(t, text[0:1000], chunks[0])
	assert.Equal(t, text[800:1800], chunks[1])
	assert.Equal(t, text[1600:], chunks[2])

	// Adjacent chunks share exactly the overlap
	assert.Equal(t, chunks[0][len(chunks[0])-ChunkOverlap:], chunks[1][:ChunkOverlap])
	assert.Equal(t, chunks[1][len(chunks[1])-ChunkOverlap:], chunks[2][:ChunkOverlap])
}

func TestSplitTextMultiByteRunes(t *testing.T) {
	// ₹ is three bytes; windows must land on rune boundaries
	text := strings.Repeat("₹", 2600)
	chunks := SplitText(text, ChunkWindow, ChunkOverlap)
	require.Len(t, chunks, 3)

	for i, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk), "chunk %d is not valid UTF-8", i)
	}

	assert.Equal(t, ChunkWindow, utf8.RuneCountInString(chunks[0]))
	assert.Equal(t, ChunkWindow, utf8.RuneCountInString(chunks[1]))
	assert.Equal(t, ChunkWindow, utf8.RuneCountInString(chunks[2]))
	assert.Equal(t, strings.Repeat("₹", ChunkOverlap), chunks[1][:ChunkOverlap*3])

	// Chunk text survives a JSON round trip unchanged
	data, err := json.Marshal(chunks[0])
	require.NoError(t, err)
	var decoded string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, chunks[0], decoded)
}

func TestSplitTextDeterministic(t *testing.T) {
	text := strings.Repeat("determinism ", 300)
	first := SplitText(text, ChunkWindow, ChunkOverlap)
	second := SplitText(text, ChunkWindow, ChunkOverlap)
	assert.Equal(t, first, second)
}

func TestChunkDocument(t *testing.T) {
	doc := &models.Document{
		DocID:     uuid.New(),
		Title:     "Hostel Facilities",
		Content:   strings.Repeat("x", 2600),
		Category:  models.CategoryHostelInfo,
		Source:    "https://example.edu/hostels.php",
		DocType:   models.DocTypeHTMLPage,
		CrawledAt: time.Now().UTC(),
		Extra:     map[string]string{"department": "cse"},
	}

	chunks := ChunkDocument(doc)
	require.Len(t, chunks, 3)

	for i, chunk := range chunks {
		assert.Equal(t, models.ChunkID(doc.DocID, i), chunk.ID)
		assert.Equal(t, doc.DocID, chunk.DocID)
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, 3, chunk.TotalChunks)
		assert.Equal(t, doc.Title, chunk.Title)
		assert.Equal(t, doc.Category, chunk.Category)
		assert.Equal(t, doc.Source, chunk.Source)
		assert.Equal(t, doc.DocType, chunk.DocType)
		assert.Equal(t, 2600, chunk.OriginalContentLength)
		assert.Equal(t, doc.Extra, chunk.Extra)
	}
}

func TestChunkDocumentEmptyContent(t *testing.T) {
	doc := &models.Document{DocID: uuid.New(), Title: "Empty"}
	assert.Empty(t, ChunkDocument(doc))
}
