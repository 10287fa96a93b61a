package handler

import (
	"context"
	"encoding/json"
	"net/http"
)

// Version APIのバージョン
const Version = "1.0.0"

// Pinger 接続確認ができる依存先
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler ヘルスチェックのハンドラー
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler 新しいHealthHandlerを作成（dbがnilなら接続確認をしない）
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthResponse ヘルスチェックのレスポンス
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database,omitempty"`
}

// ServeHTTP ヘルスチェックを処理
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	status := http.StatusOK

	if h.db != nil {
		response.Database = "ok"
		if err := h.db.PingContext(r.Context()); err != nil {
			response.Status = "unavailable"
			response.Database = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}
