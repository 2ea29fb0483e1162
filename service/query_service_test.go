package service

import (
	"context"
	"errors"
	"testing"

	"campusconnect-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	chunks       []models.Chunk
	err          error
	gotCategory  models.Category
	gotLimit     int
	gotEmbedding []float64
}

func (s *stubSearcher) Search(ctx context.Context, embedding []float64, category models.Category, limit int) ([]models.Chunk, error) {
	s.gotEmbedding = embedding
	s.gotCategory = category
	s.gotLimit = limit
	return s.chunks, s.err
}

type stubClassifier struct {
	category models.Category
	err      error
}

func (s *stubClassifier) Classify(ctx context.Context, query string) (models.Category, error) {
	return s.category, s.err
}

type stubGenerator struct {
	answer string
	err    error
	calls  int
	prompt string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	return s.answer, s.err
}

func testChunks() []models.Chunk {
	return []models.Chunk{
		{
			Text:     "The hostel has four blocks.",
			Title:    "Hostel Facilities",
			Category: models.CategoryHostelInfo,
			Source:   "https://college.example/hostels.php",
			DocType:  models.DocTypeHTMLPage,
		},
		{
			Text:     "Hostel fees are paid per semester.",
			Title:    "Payments",
			Category: models.CategoryPaymentsInfo,
			Source:   "https://college.example/payments/",
			DocType:  models.DocTypeHTMLPage,
		},
	}
}

func newTestQueryService(searcher *stubSearcher, classifier Classifier, generator *stubGenerator, embedder Embedder) *QueryService {
	return NewQueryService(
		QueryWithSearcher(searcher),
		QueryWithEmbedder(embedder),
		QueryWithClassifier(classifier),
		QueryWithGenerator(generator),
	)
}

func TestAnswerQueryEmpty(t *testing.T) {
	svc := newTestQueryService(&stubSearcher{}, &stubClassifier{}, &stubGenerator{}, &stubEmbedder{})

	_, err := svc.AnswerQuery(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestAnswerQueryEmbedFailure(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("api down")}
	svc := newTestQueryService(&stubSearcher{}, &stubClassifier{}, &stubGenerator{}, embedder)

	_, err := svc.AnswerQuery(context.Background(), "hostel fees")
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestAnswerQueryNoResults(t *testing.T) {
	generator := &stubGenerator{answer: "should not be used"}
	svc := newTestQueryService(
		&stubSearcher{},
		&stubClassifier{category: models.CategoryHostelInfo},
		generator,
		&stubEmbedder{fallback: []float64{1, 0}},
	)

	result, err := svc.AnswerQuery(context.Background(), "hostel fees")
	require.NoError(t, err)

	assert.Equal(t, NoInfoResponse, result.Response)
	assert.Equal(t, models.CategoryHostelInfo, result.Category)
	assert.Empty(t, result.Sources)
	assert.Zero(t, generator.calls, "generator must not run when retrieval is empty")
}

func TestAnswerQueryCategoryFilter(t *testing.T) {
	searcher := &stubSearcher{chunks: testChunks()}
	svc := newTestQueryService(
		searcher,
		&stubClassifier{category: models.CategoryHostelInfo},
		&stubGenerator{answer: "The hostel has four blocks."},
		&stubEmbedder{fallback: []float64{1, 0}},
	)

	result, err := svc.AnswerQuery(context.Background(), "how many hostel blocks are there")
	require.NoError(t, err)

	assert.Equal(t, models.CategoryHostelInfo, searcher.gotCategory)
	assert.Equal(t, 20, searcher.gotLimit)
	assert.Equal(t, []float64{1, 0}, searcher.gotEmbedding)
	assert.Equal(t, "The hostel has four blocks.", result.Response)

	require.Len(t, result.Sources, 2)
	assert.Equal(t, "Hostel Facilities", result.Sources[0].Title)
	assert.Equal(t, "https://college.example/hostels.php", result.Sources[0].Source)
}

func TestAnswerQueryUnclassifiedSearchesBroadly(t *testing.T) {
	searcher := &stubSearcher{chunks: testChunks()}
	svc := newTestQueryService(
		searcher,
		&stubClassifier{category: models.CategoryNone},
		&stubGenerator{answer: "answer"},
		&stubEmbedder{fallback: []float64{1, 0}},
	)

	result, err := svc.AnswerQuery(context.Background(), "tell me something")
	require.NoError(t, err)

	assert.Equal(t, models.Category(""), searcher.gotCategory)
	assert.Equal(t, models.CategoryNone, result.Category)
}

func TestAnswerQueryClassifierErrorSearchesBroadly(t *testing.T) {
	searcher := &stubSearcher{chunks: testChunks()}
	svc := newTestQueryService(
		searcher,
		&stubClassifier{err: errors.New("llm down")},
		&stubGenerator{answer: "answer"},
		&stubEmbedder{fallback: []float64{1, 0}},
	)

	_, err := svc.AnswerQuery(context.Background(), "tell me something")
	require.NoError(t, err)
	assert.Equal(t, models.Category(""), searcher.gotCategory)
}

func TestAnswerQueryRetrievalFailure(t *testing.T) {
	svc := newTestQueryService(
		&stubSearcher{err: errors.New("db down")},
		&stubClassifier{},
		&stubGenerator{},
		&stubEmbedder{fallback: []float64{1, 0}},
	)

	_, err := svc.AnswerQuery(context.Background(), "hostel fees")
	assert.ErrorIs(t, err, ErrRetrievalFailed)
}

func TestAnswerQueryGenerationFailure(t *testing.T) {
	svc := newTestQueryService(
		&stubSearcher{chunks: testChunks()},
		&stubClassifier{},
		&stubGenerator{err: errors.New("llm down")},
		&stubEmbedder{fallback: []float64{1, 0}},
	)

	_, err := svc.AnswerQuery(context.Background(), "hostel fees")
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestBuildPromptIncludesContextAndQuery(t *testing.T) {
	prompt := buildPrompt("how many hostel blocks", testChunks())

	assert.Contains(t, prompt, "Chunk 1 (Source: https://college.example/hostels.php)")
	assert.Contains(t, prompt, "Chunk 2 (Source: https://college.example/payments/)")
	assert.Contains(t, prompt, `User Question: "how many hostel blocks"`)
	assert.Contains(t, prompt, "College Information:")
}

func TestBuildPromptBoundsContext(t *testing.T) {
	big := make([]byte, 23000)
	for i := range big {
		big[i] = 'x'
	}

	chunks := []models.Chunk{
		{Text: string(big), Source: "https://college.example/a"},
		{Text: string(big), Source: "https://college.example/b"},
	}

	prompt := buildPrompt("q", chunks)
	assert.Contains(t, prompt, "Chunk 1")
	assert.NotContains(t, prompt, "Chunk 2")
}
