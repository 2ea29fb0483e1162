package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	generationAPI = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent"

	generationTemperature = 0.2

	maxRetries     = 3
	initialBackoff = 1 * time.Second
)

// GeminiGenerator calls the Gemini generation API directly via HTTP
type GeminiGenerator struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// GeminiGeneratorOption is a functional option for GeminiGenerator
type GeminiGeneratorOption func(*GeminiGenerator)

// GeneratorWithEndpoint overrides the API endpoint
func GeneratorWithEndpoint(endpoint string) GeminiGeneratorOption {
	return func(g *GeminiGenerator) {
		g.endpoint = endpoint
	}
}

// GeneratorWithHTTPClient overrides the HTTP client
func GeneratorWithHTTPClient(hc *http.Client) GeminiGeneratorOption {
	return func(g *GeminiGenerator) {
		g.httpClient = hc
	}
}

// NewGeminiGenerator creates a generator for the given API key
func NewGeminiGenerator(apiKey string, opts ...GeminiGeneratorOption) *GeminiGenerator {
	g := &GeminiGenerator{
		apiKey:     apiKey,
		endpoint:   generationAPI,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces answer text for a prompt, retrying with doubling backoff.
// 400 and 401 responses are not retried.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set")
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": generationTemperature,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewBuffer(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", g.apiKey)

		resp, err := g.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return "", fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		bodyBytes, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			if attempt == maxRetries-1 {
				return "", fmt.Errorf("failed to read response: %w", readErr)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return parseGenerationResponse(bodyBytes)
		}

		log.Printf("Gemini API error: Status %d, Body: %s", resp.StatusCode, string(bodyBytes))

		// Don't retry on 400 or 401 errors
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return "", fmt.Errorf("API error: %d - %s", resp.StatusCode, string(bodyBytes))
		}

		if attempt == maxRetries-1 {
			return "", fmt.Errorf("API error after %d attempts: %d", maxRetries, resp.StatusCode)
		}
	}

	return "", ErrGenerationFailed
}

func parseGenerationResponse(bodyBytes []byte) (string, error) {
	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason,omitempty"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason,omitempty"`
		} `json:"promptFeedback,omitempty"`
		Error struct {
			Code    int    `json:"code,omitempty"`
			Message string `json:"message,omitempty"`
		} `json:"error,omitempty"`
	}

	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		log.Printf("Failed to decode response. Body: %s", string(bodyBytes))
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Error.Message != "" {
		return "", fmt.Errorf("API error: %s (code: %d)", apiResp.Error.Message, apiResp.Error.Code)
	}

	if apiResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("API blocked prompt: %s", apiResp.PromptFeedback.BlockReason)
	}

	if len(apiResp.Candidates) == 0 {
		return "", fmt.Errorf("API returned no candidates")
	}

	var responseText strings.Builder
	for i, candidate := range apiResp.Candidates {
		if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
			log.Printf("Warning: Candidate %d finished with reason: %s", i, candidate.FinishReason)
		}
		for _, part := range candidate.Content.Parts {
			responseText.WriteString(part.Text)
		}
	}

	result := responseText.String()
	if result == "" {
		return "", fmt.Errorf("API returned empty content")
	}

	return result, nil
}
