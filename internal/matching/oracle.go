package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"google.golang.org/api/option"
)

// defaultModel is the Gemini model used for all structured generation.
const defaultModel = "gemini-2.5-flash"

// Oracle produces structured JSON from a prompt. A response the model
// mangles past recognition comes back as an empty map, not an error;
// transport and quota failures are errors.
type Oracle interface {
	GenerateStructured(ctx context.Context, prompt string) (map[string]any, error)
}

// GeminiOracle is the production Oracle. Calls are bounded by a semaphore
// and a per-call timeout so a slow model cannot pile up request handlers.
type GeminiOracle struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	sem     *semaphore.Weighted
	logger  *zap.Logger
}

// NewGeminiOracle creates the production oracle.
func NewGeminiOracle(ctx context.Context, apiKey string, timeout time.Duration, maxConcurrent int64, logger *zap.Logger) (*GeminiOracle, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiOracle{
		client:  client,
		model:   defaultModel,
		timeout: timeout,
		sem:     semaphore.NewWeighted(maxConcurrent),
		logger:  logger,
	}, nil
}

// Close releases the underlying client.
func (o *GeminiOracle) Close() error {
	if o.client != nil {
		return o.client.Close()
	}
	return nil
}

// GenerateStructured sends the prompt and decodes the response as a JSON
// object. Code fences around the JSON are tolerated; undecodable output
// yields an empty map.
func (o *GeminiOracle) GenerateStructured(ctx context.Context, prompt string) (map[string]any, error) {
	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire oracle slot: %w", err)
	}
	defer o.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	model := o.client.GenerativeModel(o.model)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	data := map[string]any{}
	cleaned := stripCodeFences(text)
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		o.logger.Warn("oracle returned undecodable JSON, treating as empty",
			zap.Error(err),
			zap.Int("response_len", len(text)))
		return map[string]any{}, nil
	}
	o.logger.Debug("oracle call complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("prompt_len", len(prompt)))
	return data, nil
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

// stripCodeFences removes a markdown code fence wrapping the whole
// response. The opening fence line is dropped whatever its language tag,
// and a trailing bare fence line is dropped when present; an unbalanced
// fence still strips the opener.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
