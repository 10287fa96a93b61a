package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ledger-import-app/internal/presentation/di"
	"ledger-import-app/internal/presentation/http/middleware"
)

// NewRouter 新しいルーターを作成
func NewRouter(container *di.Container) http.Handler {
	r := chi.NewRouter()

	// ミドルウェアの適用（先に登録したものが外側）
	r.Use(middleware.CORS)
	r.Use(middleware.WithLogger(container.Logger()))
	r.Use(middleware.LoggerWithHealthCheck)
	r.Use(middleware.Recovery)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		sendError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// Health check
	r.Method(http.MethodGet, "/health", container.HealthHandler())

	// Ledger API
	r.Route("/api/v1/ledger", container.LedgerHandler().Routes)

	return r
}

func sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
