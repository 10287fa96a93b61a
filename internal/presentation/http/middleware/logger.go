package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ledger-import-app/internal/logger"
)

// healthPath ログを抑制するヘルスチェックのパス
const healthPath = "/health"

// responseWriter ステータスコードをキャプチャするためのラッパー
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// WithLogger リクエストごとにrequest_id付きのロガーをコンテキストに格納する
func WithLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			reqLog := logger.WithFields(log, map[string]interface{}{"request_id": requestID})
			next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), reqLog)))
		})
	}
}

// Logger ロギングミドルウェア
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// レスポンスライターのラップ
		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		logRequest(r, rw, time.Since(start))
	})
}

// LoggerWithHealthCheck ヘルスチェックを除外するロギングミドルウェア
func LoggerWithHealthCheck(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(rw, r)

		// ヘルスチェックは異常時のみログ出力
		if r.URL.Path == healthPath {
			if rw.statusCode != http.StatusOK {
				log := logger.FromContext(r.Context())
				log.Error().Int("status", rw.statusCode).Msg("Health check failed")
			}
			return
		}

		logRequest(r, rw, time.Since(start))
	})
}

func logRequest(r *http.Request, rw *responseWriter, duration time.Duration) {
	log := logger.FromContext(r.Context())

	event := log.Info()
	switch {
	case rw.statusCode >= http.StatusInternalServerError:
		event = log.Error()
	case rw.statusCode >= http.StatusBadRequest:
		event = log.Warn()
	}

	event.
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rw.statusCode).
		Int64("bytes", rw.written).
		Dur("duration", duration).
		Msg("HTTP request")
}
