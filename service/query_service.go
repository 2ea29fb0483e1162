package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"campusconnect-backend/models"
)

var (
	ErrEmptyQuery       = errors.New("query must not be empty")
	ErrEmbeddingFailed  = errors.New("failed to embed query")
	ErrRetrievalFailed  = errors.New("failed to retrieve knowledge context")
	ErrGenerationFailed = errors.New("failed to generate response")
)

const (
	// retrievalLimit is how many chunks are retrieved per query
	retrievalLimit = 20

	// NoInfoResponse is returned without calling the generator when
	// retrieval comes back empty
	NoInfoResponse = "I couldn't find any relevant information in the college database for your query. Please try rephrasing."

	// maxContextChars bounds the prompt; chunks past the budget are dropped
	maxContextChars = 24000
)

// Searcher is the slice of the chunk repository the query service needs
type Searcher interface {
	Search(ctx context.Context, embedding []float64, category models.Category, limit int) ([]models.Chunk, error)
}

// Generator produces the final answer text from an assembled prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// QuerySource describes where an answer chunk came from
type QuerySource struct {
	Title    string          `json:"title"`
	Source   string          `json:"source"`
	Category models.Category `json:"category"`
	DocType  models.DocType  `json:"doc_type"`
}

// QueryResult is the answer plus the metadata of the chunks behind it
type QueryResult struct {
	Response string          `json:"response"`
	Category models.Category `json:"category"`
	Sources  []QuerySource   `json:"sources"`
}

// QueryService orchestrates the retrieval-augmented answer path: embed and
// classify concurrently, search with the category filter, assemble a bounded
// prompt and generate
type QueryService struct {
	searcher   Searcher
	embedder   Embedder
	classifier Classifier
	generator  Generator
}

// QueryServiceOption is a functional option for QueryService
type QueryServiceOption func(*QueryService)

// QueryWithSearcher sets the chunk searcher
func QueryWithSearcher(s Searcher) QueryServiceOption {
	return func(q *QueryService) {
		q.searcher = s
	}
}

// QueryWithEmbedder sets the embedding client
func QueryWithEmbedder(e Embedder) QueryServiceOption {
	return func(q *QueryService) {
		q.embedder = e
	}
}

// QueryWithClassifier sets the query classifier
func QueryWithClassifier(c Classifier) QueryServiceOption {
	return func(q *QueryService) {
		q.classifier = c
	}
}

// QueryWithGenerator sets the answer generator
func QueryWithGenerator(g Generator) QueryServiceOption {
	return func(q *QueryService) {
		q.generator = g
	}
}

// NewQueryService creates a new query service
func NewQueryService(opts ...QueryServiceOption) *QueryService {
	s := &QueryService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnswerQuery runs the full RAG path for one user query
func (s *QueryService) AnswerQuery(ctx context.Context, query string) (*QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	log.Printf("User query: %q", query)

	// Embedding and classification are independent; run them concurrently
	var (
		wg        sync.WaitGroup
		queryVec  []float64
		embedErr  error
		category  = models.CategoryNone
		classErr  error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		queryVec, embedErr = s.embedder.Embed(ctx, query)
	}()

	if s.classifier != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			category, classErr = s.classifier.Classify(ctx, query)
		}()
	}

	wg.Wait()

	if embedErr != nil {
		log.Printf("Warning: failed to embed query: %v", embedErr)
		return nil, ErrEmbeddingFailed
	}
	if classErr != nil {
		// Classifiers degrade internally; treat a surfaced error the same way
		log.Printf("Warning: classification failed, performing broad search: %v", classErr)
		category = models.CategoryNone
	}

	filter := category
	if filter == models.CategoryNone {
		filter = ""
		log.Printf("Could not classify query, performing broad search")
	} else {
		log.Printf("Query classified into category %q", category)
	}

	chunks, err := s.searcher.Search(ctx, queryVec, filter, retrievalLimit)
	if err != nil {
		log.Printf("Warning: retrieval failed: %v", err)
		return nil, ErrRetrievalFailed
	}
	log.Printf("Retrieved %d relevant chunks", len(chunks))

	if len(chunks) == 0 {
		return &QueryResult{Response: NoInfoResponse, Category: category}, nil
	}

	prompt := buildPrompt(query, chunks)

	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		log.Printf("Warning: generation failed: %v", err)
		return nil, ErrGenerationFailed
	}

	sources := make([]QuerySource, 0, len(chunks))
	for _, chunk := range chunks {
		sources = append(sources, QuerySource{
			Title:    chunk.Title,
			Source:   chunk.Source,
			Category: chunk.Category,
			DocType:  chunk.DocType,
		})
	}

	return &QueryResult{
		Response: answer,
		Category: category,
		Sources:  sources,
	}, nil
}

// buildPrompt assembles the numbered-context prompt, dropping chunks once
// the context budget is spent
func buildPrompt(query string, chunks []models.Chunk) string {
	var context strings.Builder
	for i, chunk := range chunks {
		entry := fmt.Sprintf("Chunk %d (Source: %s):\n%q", i+1, chunk.Source, chunk.Text)
		if context.Len()+len(entry) > maxContextChars {
			break
		}
		if i > 0 {
			context.WriteString("\n\n")
		}
		context.WriteString(entry)
	}

	var builder strings.Builder
	builder.WriteString("You are a chatbot for GMRIT. Your task is to provide answers exclusively using the content from the \"College Information\" section. ")
	builder.WriteString("If you cannot find the answer within the provided context, you must respond with \"I do not have that information.\" ")
	builder.WriteString("Do not use any external knowledge. Provide direct and concise answers.\n\n")
	builder.WriteString("College Information:\n")
	builder.WriteString(context.String())
	builder.WriteString(fmt.Sprintf("\n\nUser Question: %q\n", query))
	return builder.String()
}
