package extraction

import (
	"context"
	_ "embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"

	"github.com/mroshb/hitched/pkg/errors"
	"github.com/mroshb/hitched/pkg/logger"
)

const (
	defaultModel  = "gemini-2.5-flash"
	maxLogPreview = 200
)

//go:embed prompt.md
var promptTemplate string

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Generator wraps the Google GenAI client for single JSON-mode prompts.
type Generator struct {
	client    *genai.Client
	modelName string
}

func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, stderrors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Generator{client: client, modelName: model}, nil
}

// GenerateContent sends the prompt and returns the concatenated text parts.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", stderrors.New("gemini generator is not initialized")
	}

	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			builder.WriteString(part.Text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", stderrors.New("gemini api returned empty response")
	}
	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

// GeminiExtractor asks the model for the profile fields listed in prompt.md.
type GeminiExtractor struct {
	generator contentGenerator
}

func NewGeminiExtractor(generator contentGenerator) *GeminiExtractor {
	return &GeminiExtractor{generator: generator}
}

func (e *GeminiExtractor) Extract(ctx context.Context, transcript string) (map[string]any, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, errors.New(errors.ErrCodeValidation, "transcript is empty")
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{TRANSCRIPT}}", transcript)
	logger.Debug("Extraction request",
		"prompt_length", utf8.RuneCountInString(prompt),
		"transcript_preview", logger.Truncate(transcript, maxLogPreview),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExtractionFailed, "extraction service unavailable")
	}
	logger.Debug("Extraction response", "response_preview", logger.Truncate(raw, maxLogPreview))

	out, err := parseResponse(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExtractionFailed, "extraction returned invalid JSON")
	}
	return out, nil
}

func parseResponse(raw string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	if data == nil {
		return nil, stderrors.New("gemini response is not an object")
	}
	return data, nil
}

// extractJSON strips a markdown code fence around the payload, if any.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
