package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	embedAPI = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:embedContent"
	batchAPI = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:batchEmbedContents"

	// Dimensions is the embedding width; the vector column must match
	Dimensions = 768

	// maxBatchSize is Google's per-request limit for batch embedding
	maxBatchSize = 100

	// subChunkWords bounds the word count of a sub-chunk when embedding a
	// whole document
	subChunkWords = 250

	maxRetries     = 3
	initialBackoff = 1 * time.Second
)

// ErrEmbeddingFailed is returned when all retries are exhausted
var ErrEmbeddingFailed = errors.New("failed to generate embedding")

type embeddingRequest struct {
	Model                string       `json:"model"`
	Content              contentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

type contentInput struct {
	Parts []partInput `json:"parts"`
}

type partInput struct {
	Text string `json:"text"`
}

type embeddingResponse struct {
	Embedding embeddingData `json:"embedding"`
}

type embeddingData struct {
	Values []float64 `json:"values"`
}

// batchEmbeddingItem is the structure returned by the batch API (no nested
// "embedding" key)
type batchEmbeddingItem struct {
	Values []float64 `json:"values"`
}

type batchEmbeddingRequest struct {
	Requests []embeddingRequest `json:"requests"`
}

type batchEmbeddingResponse struct {
	Embeddings []batchEmbeddingItem `json:"embeddings"`
}

// Client calls the Gemini embedding API. Construction is cheap; the
// configuration check runs once on first use.
type Client struct {
	apiKey     string
	httpClient *http.Client
	embedURL   string
	batchURL   string

	initOnce sync.Once
	initErr  error
}

// Option is a functional option for Client
type Option func(*Client)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithEndpoints overrides the API endpoints
func WithEndpoints(embedURL, batchURL string) Option {
	return func(c *Client) {
		c.embedURL = embedURL
		c.batchURL = batchURL
	}
}

// NewClient creates an embedding client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		embedURL:   embedAPI,
		batchURL:   batchAPI,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) init() error {
	c.initOnce.Do(func() {
		if c.apiKey == "" {
			c.initErr = errors.New("embedding client: missing API key")
		}
	})
	return c.initErr
}

// Embed generates a single query embedding, L2-normalized
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := c.init(); err != nil {
		return nil, err
	}

	reqBody := embeddingRequest{
		Model:                "models/gemini-embedding-001",
		Content:              contentInput{Parts: []partInput{{Text: text}}},
		TaskType:             "RETRIEVAL_QUERY",
		OutputDimensionality: Dimensions,
	}

	body, err := c.doRequest(ctx, c.embedURL, reqBody)
	if err != nil {
		return nil, err
	}

	var apiResp embeddingResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(apiResp.Embedding.Values) == 0 {
		return nil, errors.New("API returned empty embedding")
	}

	vec := apiResp.Embedding.Values
	Normalize(vec)
	return vec, nil
}

// EmbedBatch generates document embeddings for texts, splitting into batches
// of at most 100 per request. Every vector is L2-normalized.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if err := c.init(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float64, 0, len(texts))
	for i := 0; i < len(texts); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]

		requests := make([]embeddingRequest, len(batch))
		for j, text := range batch {
			requests[j] = embeddingRequest{
				Model:                "models/gemini-embedding-001",
				Content:              contentInput{Parts: []partInput{{Text: text}}},
				TaskType:             "RETRIEVAL_DOCUMENT",
				OutputDimensionality: Dimensions,
			}
		}

		body, err := c.doRequest(ctx, c.batchURL, batchEmbeddingRequest{Requests: requests})
		if err != nil {
			return nil, err
		}

		var apiResp batchEmbeddingResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, fmt.Errorf("failed to decode batch response: %w", err)
		}
		if len(apiResp.Embeddings) != len(batch) {
			return nil, fmt.Errorf("mismatch: got %d embeddings for %d texts in batch", len(apiResp.Embeddings), len(batch))
		}

		for k, item := range apiResp.Embeddings {
			if len(item.Values) == 0 {
				return nil, fmt.Errorf("text %d has empty embedding", i+k)
			}
			Normalize(item.Values)
			out = append(out, item.Values)
		}

		// Brief pause between batches to avoid rate limits
		if end < len(texts) {
			select {
			case <-time.After(100 * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return out, nil
}

// EmbedDocument embeds arbitrarily long text by splitting it into 250-word
// sub-chunks, embedding each, averaging the vectors and re-normalizing
func (c *Client) EmbedDocument(ctx context.Context, text string) ([]float64, error) {
	subChunks := splitWords(text, subChunkWords)
	if len(subChunks) == 0 {
		return nil, errors.New("cannot embed empty document")
	}

	vecs, err := c.EmbedBatch(ctx, subChunks)
	if err != nil {
		return nil, err
	}

	avg := make([]float64, len(vecs[0]))
	for _, vec := range vecs {
		for i, v := range vec {
			avg[i] += v
		}
	}
	for i := range avg {
		avg[i] /= float64(len(vecs))
	}
	Normalize(avg)
	return avg, nil
}

// doRequest posts a JSON body with retry and doubling backoff. 400 and 401
// responses are not retried.
func (c *Client) doRequest(ctx context.Context, apiURL string, reqBody interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to read response: %w", err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		// Don't retry on 400 or 401 errors
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("API error: %d - %s", resp.StatusCode, string(body))
		}

		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("API error after %d attempts: %d", maxRetries, resp.StatusCode)
		}
	}

	return nil, ErrEmbeddingFailed
}

// splitWords groups the words of text into chunks of at most maxWords
func splitWords(text string, maxWords int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < len(words); i += maxWords {
		end := i + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// Normalize scales v to unit L2 norm in place. Zero vectors are left as-is.
func Normalize(v []float64) {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] /= norm
	}
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched or zero vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
