package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const GeminiModel = "gemini-2.0-flash"

// contentGenerator is the slice of *genai.GenerativeModel that Complete uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiService implements CompletionService using the Gemini SDK
type GeminiService struct {
	client *genai.Client
	model  contentGenerator
	logger *slog.Logger
}

// NewGeminiService creates a Gemini client. Extra client options (endpoint,
// http client) are passed through to the SDK.
func NewGeminiService(ctx context.Context, apiKey string, logger *slog.Logger, opts ...option.ClientOption) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(GeminiModel)
	model.SetTemperature(Temperature)
	model.SetMaxOutputTokens(MaxOutputTokens)

	return &GeminiService{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (g *GeminiService) ModelName() string { return GeminiModel }

func (g *GeminiService) Provider() string { return "gemini" }

func (g *GeminiService) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *GeminiService) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		g.logger.Error("Gemini request failed", "model", GeminiModel, "error", err)
		return "", classifyGeminiError(err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != genai.FinishReasonMaxTokens {
			g.logger.Warn("Gemini candidate stopped early", "candidate", i, "finish_reason", cand.FinishReason.String())
		}
	}

	return finishText(extractText(resp))
}

// extractText returns the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String()
}

// classifyGeminiError maps SDK errors onto service error causes. The SDK
// reports REST failures as *googleapi.Error and gRPC failures as status errors.
func classifyGeminiError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return apperr.NewServiceError(apperr.CauseEmpty, "response blocked by safety filters", err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.NewServiceError(apperr.CauseNetwork, "request did not complete", err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apperr.NewServiceError(classifyStatus(apiErr.Code),
			fmt.Sprintf("API request failed with status %d", apiErr.Code), err)
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unauthenticated, codes.PermissionDenied:
			return apperr.NewServiceError(apperr.CauseAuth, "credential rejected", err)
		case codes.ResourceExhausted:
			return apperr.NewServiceError(apperr.CauseRateLimited, "rate limited", err)
		case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
			return apperr.NewServiceError(apperr.CauseNetwork, "service unavailable", err)
		default:
			return apperr.NewServiceError(apperr.CauseUpstream, fmt.Sprintf("API error: %s", st.Code()), err)
		}
	}

	return apperr.NewServiceError(apperr.CauseNetwork, "failed to make request", err)
}
