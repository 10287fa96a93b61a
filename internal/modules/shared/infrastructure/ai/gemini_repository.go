package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"ledger-import-app/internal/config"
	"ledger-import-app/internal/modules/vision/domain"
)

const geminiProviderName = "Google Gemini"

// GeminiRepository Gemini APIのリポジトリ実装
type GeminiRepository struct {
	client *genai.Client
	model  string
}

// NewGeminiRepository 新しいGeminiRepositoryを作成
func NewGeminiRepository(ctx context.Context, cfg *config.GeminiConfig) (*GeminiRepository, error) {
	return newGeminiRepository(ctx, cfg, "", nil)
}

func newGeminiRepository(ctx context.Context, cfg *config.GeminiConfig, baseURL string, httpClient *http.Client) (*GeminiRepository, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is empty")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1", BaseURL: baseURL},
		HTTPClient:  httpClient,
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiRepository{client: client, model: cfg.Model}, nil
}

// ExtractTransactions 画像とプロンプトを送り、応答テキストを返す
func (r *GeminiRepository) ExtractTransactions(ctx context.Context, prompt string, images []domain.Image) (*domain.AIResult, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images to send")
	}

	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, &genai.Part{Text: prompt})
	for _, img := range images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: img.MIMEType,
				Data:     img.Data,
			},
		})
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: parts,
		},
	}

	resp, err := r.client.Models.GenerateContent(ctx, r.model, contents, nil)
	if err != nil {
		return nil, toAPIError(err)
	}

	var inputTokens, outputTokens int
	if resp.UsageMetadata != nil {
		inputTokens = int(resp.UsageMetadata.PromptTokenCount)
		outputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	return domain.NewAIResult(resp.Text(), inputTokens, outputTokens, r.model), nil
}

// toAPIError genaiのエラーをステータスコード付きのエラーに変換
func toAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &domain.APIError{Provider: geminiProviderName, StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &domain.APIError{Provider: geminiProviderName, StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message}
	}
	return fmt.Errorf("failed to generate content: %w", err)
}

// ProviderName プロバイダー名を返す
func (r *GeminiRepository) ProviderName() string {
	return geminiProviderName
}
