package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// ErrNoCandidates is returned when Gemini answers without any text part.
var ErrNoCandidates = errors.New("no text candidates in response")

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClient generates text with the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  contentGenerator
}

// NewGeminiClient connects to Gemini with apiKey.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiClient{
		client: client,
		model:  client.GenerativeModel(model),
	}, nil
}

// Name implements Generator.
func (g *GeminiClient) Name() string { return ProviderGemini }

// GenerateText sends prompt as a single text part.
func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &GenerationError{Provider: ProviderGemini, Err: err}
	}
	text, err := responseText(resp)
	if err != nil {
		return "", &GenerationError{Provider: ProviderGemini, Err: err}
	}
	return text, nil
}

// Close releases the underlying client.
func (g *GeminiClient) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// responseText joins the text parts of the first candidate that has any.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrNoCandidates
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}
	return "", ErrNoCandidates
}
