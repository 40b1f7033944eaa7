package recommend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/andresuchdata/atim/backend-go/internal/config"
	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

const geminiProvider = "gemini"

// LLM generates text from a system instruction and a user prompt.
type LLM interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// GeminiClient is an LLM backed by the Gemini API. It is safe for
// concurrent use; a model handle is built per call.
type GeminiClient struct {
	client          *genai.Client
	model           string
	temperature     float32
	maxOutputTokens int32
}

// NewGeminiClient dials the Gemini API with cfg's key and generation settings.
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &GeminiClient{
		client:          client,
		model:           cfg.Model,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
	}, nil
}

// Generate implements LLM.
func (g *GeminiClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)
	model.SetMaxOutputTokens(g.maxOutputTokens)
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text := responseText(resp)
	if text == "" {
		return "", &domain.ProviderError{Provider: geminiProvider, Err: errors.New("empty response")}
	}
	return text, nil
}

// Close releases the underlying connection.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

// classifyGeminiError turns quota failures into a RateLimitError carrying the
// server's RetryInfo delay. Anything else becomes a ProviderError.
func classifyGeminiError(err error) error {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPCode() == http.StatusTooManyRequests || apiErr.GRPCStatus().Code() == codes.ResourceExhausted {
			return &domain.RateLimitError{
				Provider:   geminiProvider,
				RetryAfter: apiErr.Details().RetryInfo.GetRetryDelay().AsDuration(),
				Err:        err,
			}
		}
		return &domain.ProviderError{Provider: geminiProvider, StatusCode: apiErr.HTTPCode(), Err: err}
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		if gErr.Code == http.StatusTooManyRequests {
			return &domain.RateLimitError{Provider: geminiProvider, Err: err}
		}
		return &domain.ProviderError{Provider: geminiProvider, StatusCode: gErr.Code, Err: err}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &domain.ProviderError{Provider: geminiProvider, Err: err}
}
