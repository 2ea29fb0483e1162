package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"campusconnect-backend/embedding"
	"campusconnect-backend/models"

	"github.com/google/generative-ai-go/genai"
)

// SimilarityThreshold is the minimum cosine similarity for a confident match
const SimilarityThreshold = 0.6

// classifierModel is the Gemini model used for structured classification
const classifierModel = "gemini-2.5-flash"

// Classifier assigns a query to a document category. Classification is a
// best effort: backend failures degrade to CategoryNone and a broad search,
// they never fail the query.
type Classifier interface {
	Classify(ctx context.Context, query string) (models.Category, error)
}

// Embedder is the slice of the embedding client the classifiers and the
// query service need
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// SimilarityClassifier matches a query against the embedded taxonomy
// descriptions and picks the closest one above the threshold
type SimilarityClassifier struct {
	embedder Embedder

	mu           sync.Mutex
	categoryVecs map[models.Category][]float64
}

// NewSimilarityClassifier creates a similarity classifier. Description
// embeddings are computed on Warm or first Classify.
func NewSimilarityClassifier(embedder Embedder) *SimilarityClassifier {
	return &SimilarityClassifier{embedder: embedder}
}

// Warm embeds every taxonomy description. A successful warm-up is cached;
// a failed one is not, so the next call retries instead of pinning the
// classifier to a transient embedding outage.
func (c *SimilarityClassifier) Warm(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.categoryVecs != nil {
		return nil
	}

	log.Printf("Initializing category embeddings for semantic classification")
	vecs := make(map[models.Category][]float64, len(models.CategoryDescriptions))
	for category, description := range models.CategoryDescriptions {
		vec, err := c.embedder.Embed(ctx, description)
		if err != nil {
			return fmt.Errorf("failed to embed description for %s: %w", category, err)
		}
		vecs[category] = vec
	}
	c.categoryVecs = vecs
	log.Printf("Category embeddings initialized (%d categories)", len(vecs))
	return nil
}

// Classify returns the best-matching category, or CategoryNone when no
// description clears the threshold or the embedding backend fails
func (c *SimilarityClassifier) Classify(ctx context.Context, query string) (models.Category, error) {
	if err := c.Warm(ctx); err != nil {
		log.Printf("Warning: classifier warm-up failed, performing broad search: %v", err)
		return models.CategoryNone, nil
	}

	queryVec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("Warning: failed to embed query for classification: %v", err)
		return models.CategoryNone, nil
	}

	best := models.CategoryNone
	bestScore := 0.0
	for category, vec := range c.categoryVecs {
		score := embedding.CosineSimilarity(queryVec, vec)
		if score > bestScore {
			bestScore = score
			best = category
		}
	}

	if bestScore > SimilarityThreshold {
		log.Printf("Classified query into category %q with confidence %.3f", best, bestScore)
		return best, nil
	}

	return models.CategoryNone, nil
}

// LLMClassifier asks Gemini for a structured {category} answer and validates
// it against the taxonomy
type LLMClassifier struct {
	model *genai.GenerativeModel
}

// NewLLMClassifier creates an LLM classifier on top of a genai client
func NewLLMClassifier(client *genai.Client) *LLMClassifier {
	model := client.GenerativeModel(classifierModel)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"category": {Type: genai.TypeString},
		},
	}
	return &LLMClassifier{model: model}
}

// Classify returns the category the model picks, or CategoryNone when the
// model fails, returns malformed output or picks a label outside the taxonomy
func (c *LLMClassifier) Classify(ctx context.Context, query string) (models.Category, error) {
	prompt := fmt.Sprintf(
		"Classify the following user query into one of the following categories: %s. "+
			"If none of the categories fit, respond with 'none'.\n\nUser Query: %q",
		strings.Join(models.CategoryLabels(), ", "), query,
	)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Printf("Warning: LLM classification failed, performing broad search: %v", err)
		return models.CategoryNone, nil
	}

	raw := firstCandidateText(resp)
	if raw == "" {
		return models.CategoryNone, nil
	}

	var parsed struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("Warning: LLM classifier returned malformed JSON: %v", err)
		return models.CategoryNone, nil
	}

	category := models.Category(parsed.Category)
	if !category.Valid() {
		return models.CategoryNone, nil
	}
	return category, nil
}

func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok && text != "" {
				return string(text)
			}
		}
	}
	return ""
}
