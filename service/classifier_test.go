package service

import (
	"context"
	"errors"
	"testing"

	"campusconnect-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder returns canned vectors keyed by input text and counts calls.
// The first failures calls error out before the stub starts succeeding.
type stubEmbedder struct {
	vectors  map[string][]float64
	fallback []float64
	err      error
	failures int
	calls    int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	s.calls++
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("temporarily unavailable")
	}
	if s.err != nil {
		return nil, s.err
	}
	if vec, ok := s.vectors[text]; ok {
		return vec, nil
	}
	return s.fallback, nil
}

func TestSimilarityClassifierConfidentMatch(t *testing.T) {
	embedder := &stubEmbedder{
		vectors: map[string][]float64{
			models.CategoryDescriptions[models.CategoryHostelInfo]: {1, 0},
			"where is the hostel": {1, 0},
		},
		fallback: []float64{0, 1},
	}

	c := NewSimilarityClassifier(embedder)
	category, err := c.Classify(context.Background(), "where is the hostel")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryHostelInfo, category)
}

func TestSimilarityClassifierBelowThreshold(t *testing.T) {
	// cos(query, every description) = 0.5, under the 0.6 threshold
	embedder := &stubEmbedder{
		vectors: map[string][]float64{
			"vague question": {0.5, 0.8660254037844386},
		},
		fallback: []float64{1, 0},
	}

	c := NewSimilarityClassifier(embedder)
	category, err := c.Classify(context.Background(), "vague question")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryNone, category)
}

func TestSimilarityClassifierDegradesOnEmbedFailure(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("backend down")}

	c := NewSimilarityClassifier(embedder)
	category, err := c.Classify(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryNone, category)
}

func TestSimilarityClassifierRetriesWarmAfterFailure(t *testing.T) {
	embedder := &stubEmbedder{failures: 1, fallback: []float64{0, 1}}

	c := NewSimilarityClassifier(embedder)

	// First warm-up hits the transient failure and degrades to a broad search
	category, err := c.Classify(context.Background(), "hostel fees")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryNone, category)

	// The failure is not cached: the next query warms up and classifies
	category, err = c.Classify(context.Background(), "hostel fees")
	require.NoError(t, err)
	assert.True(t, category.Valid())
}

func TestSimilarityClassifierWarmsOnce(t *testing.T) {
	embedder := &stubEmbedder{fallback: []float64{0, 1}}

	c := NewSimilarityClassifier(embedder)
	_, err := c.Classify(context.Background(), "first")
	require.NoError(t, err)
	_, err = c.Classify(context.Background(), "second")
	require.NoError(t, err)

	// One embed per description plus one per query
	assert.Equal(t, len(models.CategoryDescriptions)+2, embedder.calls)
}
