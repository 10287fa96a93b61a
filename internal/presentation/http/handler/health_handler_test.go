package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// MockPinger モックの接続確認
type MockPinger struct {
	err error
}

func (m *MockPinger) PingContext(ctx context.Context) error {
	return m.err
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		db             Pinger
		wantStatusCode int
		wantStatus     string
	}{
		{
			name:           "正常系: GET request returns OK",
			method:         http.MethodGet,
			wantStatusCode: http.StatusOK,
			wantStatus:     "ok",
		},
		{
			name:           "正常系: DB接続あり",
			method:         http.MethodGet,
			db:             &MockPinger{},
			wantStatusCode: http.StatusOK,
			wantStatus:     "ok",
		},
		{
			name:           "異常系: DB接続失敗",
			method:         http.MethodGet,
			db:             &MockPinger{err: errors.New("connection refused")},
			wantStatusCode: http.StatusServiceUnavailable,
			wantStatus:     "unavailable",
		},
		{
			name:           "異常系: POST request returns Method Not Allowed",
			method:         http.MethodPost,
			wantStatusCode: http.StatusMethodNotAllowed,
			wantStatus:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.db)
			req := httptest.NewRequest(tt.method, "/health", nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("status code = %d, want %d", rec.Code, tt.wantStatusCode)
			}

			if tt.wantStatus != "" {
				var response HealthResponse
				if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}

				if response.Status != tt.wantStatus {
					t.Errorf("status = %s, want %s", response.Status, tt.wantStatus)
				}

				if response.Version == "" {
					t.Error("version should not be empty")
				}
			}
		})
	}
}
