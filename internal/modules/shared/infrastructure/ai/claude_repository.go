package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ledger-import-app/internal/config"
	"ledger-import-app/internal/modules/vision/domain"
)

// systemPromptExtraction 取引抽出用のシステムプロンプト
const systemPromptExtraction = `あなたは日本の経理担当者です。
渡された書類画像から取引を読み取り、指示されたJSON形式のみを返してください。
説明文やMarkdownは不要です。`

const claudeProviderName = "Anthropic Claude"

// ClaudeRepository Claude APIのリポジトリ実装
type ClaudeRepository struct {
	apiKey      string
	model       string
	maxTokens   int
	httpClient  *http.Client
	apiEndpoint string // テスト用にエンドポイントを差し替え可能に
}

// NewClaudeRepository 新しいClaudeRepositoryを作成
func NewClaudeRepository(cfg *config.AnthropicConfig) *ClaudeRepository {
	return &ClaudeRepository{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		apiEndpoint: "https://api.anthropic.com/v1/messages",
	}
}

// setHTTPClient テスト用にHTTPクライアントを設定
func (r *ClaudeRepository) setHTTPClient(client *http.Client) {
	r.httpClient = client
}

// ExtractTransactions 画像とプロンプトを送り、応答テキストを返す
func (r *ClaudeRepository) ExtractTransactions(ctx context.Context, prompt string, images []domain.Image) (*domain.AIResult, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images to send")
	}

	content := make([]map[string]interface{}, 0, len(images)+1)
	for _, img := range images {
		content = append(content, imageBlock(img))
	}
	content = append(content, map[string]interface{}{
		"type": "text",
		"text": prompt,
	})

	requestBody := map[string]interface{}{
		"model":      r.model,
		"max_tokens": r.maxTokens,
		"system":     systemPromptExtraction,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": content,
			},
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.apiEndpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", r.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &domain.APIError{
			Provider:   claudeProviderName,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Model string `json:"model"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var text bytes.Buffer
	for _, c := range response.Content {
		if c.Type == "" || c.Type == "text" {
			text.WriteString(c.Text)
		}
	}

	model := response.Model
	if model == "" {
		model = r.model
	}

	return domain.NewAIResult(
		text.String(),
		response.Usage.InputTokens,
		response.Usage.OutputTokens,
		model,
	), nil
}

// imageBlock 画像はimage、PDFはdocumentとして送る
func imageBlock(img domain.Image) map[string]interface{} {
	blockType := "image"
	if img.IsPDF() {
		blockType = "document"
	}
	return map[string]interface{}{
		"type": blockType,
		"source": map[string]string{
			"type":       "base64",
			"media_type": img.MIMEType,
			"data":       base64.StdEncoding.EncodeToString(img.Data),
		},
	}
}

// ProviderName プロバイダー名を返す
func (r *ClaudeRepository) ProviderName() string {
	return claudeProviderName
}
