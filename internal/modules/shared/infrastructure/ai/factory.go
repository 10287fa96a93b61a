package ai

import (
	"context"
	"fmt"
	"strings"

	"ledger-import-app/internal/config"
	"ledger-import-app/internal/modules/vision/domain"
)

// NewAIRepository 設定のプロバイダーでAIリポジトリを作成
// apiKey, model が空でなければ設定値より優先する
func NewAIRepository(ctx context.Context, cfg *config.AIConfig, apiKey, model string) (domain.AIRepository, error) {
	switch strings.ToLower(cfg.Provider) {
	case "claude":
		c := cfg.Anthropic
		if apiKey != "" {
			c.APIKey = apiKey
		}
		if model != "" {
			c.Model = model
		}
		return NewClaudeRepository(&c), nil
	case "gemini", "":
		g := cfg.Gemini
		if apiKey != "" {
			g.APIKey = apiKey
		}
		if model != "" {
			g.Model = model
		}
		return NewGeminiRepository(ctx, &g)
	default:
		return nil, fmt.Errorf("unknown ai provider: %q", cfg.Provider)
	}
}
