package domain

import (
	"fmt"
	"strings"
	"time"
)

// AIResult AIの応答
type AIResult struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Model        string
	ProcessedAt  time.Time
}

// NewAIResult 新しいAIResultを作成
func NewAIResult(text string, inputTokens, outputTokens int, model string) *AIResult {
	return &AIResult{
		Text:         text,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Model:        model,
		ProcessedAt:  time.Now(),
	}
}

// IsEmpty 応答テキストが空かどうか
func (r *AIResult) IsEmpty() bool {
	return r == nil || strings.TrimSpace(r.Text) == ""
}

// TotalTokens 合計トークン数を返す
func (r *AIResult) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// APIError AIプロバイダーがエラーを返した
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}
