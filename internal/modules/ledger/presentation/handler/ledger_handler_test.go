package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ledger-import-app/internal/config"
	"ledger-import-app/internal/modules/ledger/domain/entity"
	"ledger-import-app/internal/modules/ledger/domain/service"
	"ledger-import-app/internal/modules/ledger/infrastructure/yayoi"
	"ledger-import-app/internal/modules/ledger/usecase"
	"ledger-import-app/internal/modules/shared/infrastructure/database"
	"ledger-import-app/internal/modules/vision/domain"
	visionusecase "ledger-import-app/internal/modules/vision/usecase"
)

var fixedNow = time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)

// fakeExtractor 固定の抽出結果を返す
type fakeExtractor struct {
	result *visionusecase.Extraction
	err    error
	images int
}

func (f *fakeExtractor) Extract(ctx context.Context, prompt string, images []domain.Image) (*visionusecase.Extraction, error) {
	f.images = len(images)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type testServer struct {
	router     http.Handler
	dispatcher *usecase.ModeDispatcher
	extractor  *fakeExtractor
}

// newTestServer インメモリSQLiteで全モードのセッションを持つルーターを作成
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(&config.DatabaseConfig{
		Driver: "sqlite3",
		SQLite: config.SQLiteConfig{Path: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())},
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	ruleRepo := database.NewBunRuleRepositoryWithDB(db)
	txRepo := database.NewBunTransactionRepositoryWithDB(db)
	extractor := &fakeExtractor{result: &visionusecase.Extraction{}}
	factory := func(ctx context.Context, apiKey, model string) (usecase.Extractor, error) {
		return extractor, nil
	}

	settings := usecase.DefaultSettings(fixedNow)
	settings.APIKey = "test-key"
	settings.SourceLabel = "三菱UFJ銀行"

	var sessions []*usecase.LedgerUseCase
	for _, mode := range entity.Modes {
		s, err := usecase.NewLedgerUseCase(mode, ruleRepo, txRepo, factory,
			usecase.WithSettings(settings),
			usecase.WithClock(func() time.Time { return fixedNow }),
		)
		if err != nil {
			t.Fatalf("NewLedgerUseCase() error = %v", err)
		}
		sessions = append(sessions, s)
	}
	dispatcher, err := usecase.NewModeDispatcher(entity.ModeBank, sessions...)
	if err != nil {
		t.Fatalf("NewModeDispatcher() error = %v", err)
	}
	if err := dispatcher.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	r := chi.NewRouter()
	r.Route("/api/v1/ledger", NewLedgerHandler(dispatcher).Routes)
	return &testServer{router: r, dispatcher: dispatcher, extractor: extractor}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// decodeData success と data を取り出す
func decodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) Response {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if v != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, v); err != nil {
			t.Fatalf("Failed to decode data: %v", err)
		}
	}
	return Response{Success: resp.Success, Error: resp.Error}
}

func (s *testServer) seed(t *testing.T, mode entity.Mode, txs ...TransactionDTO) {
	t.Helper()
	for _, tx := range txs {
		w := s.do(t, http.MethodPost, "/api/v1/ledger/"+string(mode)+"/transactions", tx)
		if w.Code != http.StatusCreated {
			t.Fatalf("seed status = %d, body = %s", w.Code, w.Body.String())
		}
	}
}

func multipartImages(t *testing.T, field string, files ...[]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i, data := range files {
		part, err := mw.CreateFormFile(field, fmt.Sprintf("page%d.jpg", i+1))
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		_, _ = part.Write(data)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestLedgerHandler_Modes(t *testing.T) {
	s := newTestServer(t)

	t.Run("正常系: モード一覧", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/ledger/modes", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var modes []ModeDTO
		decodeData(t, w, &modes)
		if len(modes) != 3 || modes[0].Mode != "creditcard" {
			t.Fatalf("modes = %+v", modes)
		}
		if !modes[1].Active || modes[1].SourceKind != "銀行" {
			t.Errorf("bank = %+v, want active", modes[1])
		}
	})

	t.Run("正常系: モード切り替え", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/v1/ledger/active", SwitchModeRequest{Mode: "receipt"})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		if s.dispatcher.ActiveMode() != entity.ModeReceipt {
			t.Errorf("ActiveMode() = %s, want receipt", s.dispatcher.ActiveMode())
		}
	})

	t.Run("異常系: 未知のモードへの切り替え", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/v1/ledger/active", SwitchModeRequest{Mode: "cash"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("異常系: URLの未知のモード", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/ledger/cash/transactions", nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
		resp := decodeData(t, w, nil)
		if resp.Success {
			t.Error("Expected success to be false")
		}
	})
}

func TestLedgerHandler_Extract(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}

	t.Run("正常系: 複数ページを抽出", func(t *testing.T) {
		s := newTestServer(t)
		s.extractor.result = &visionusecase.Extraction{
			Transactions: []domain.RawTransaction{
				{Date: "2024/05/06", Description: "NTT 電話料金", Amount: 9975, Type: "expense"},
				{Date: "2024/05/07", Description: "ABC商事", Amount: 3000, Type: "expense", Account: "会議費"},
			},
			InputTokens:  100,
			OutputTokens: 20,
		}

		body, contentType := multipartImages(t, "images", jpeg, jpeg)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/bank/extract", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		if w.Header().Get("X-Cache") != "MISS" {
			t.Errorf("X-Cache = %q, want MISS", w.Header().Get("X-Cache"))
		}
		var got ExtractResponse
		decodeData(t, w, &got)
		if len(got.Transactions) != 2 || got.Transactions[0].Account != "通信費" {
			t.Errorf("Transactions = %+v", got.Transactions)
		}
		if got.Tokens.TotalTokens != 120 {
			t.Errorf("TotalTokens = %d, want 120", got.Tokens.TotalTokens)
		}
		if len(got.LearnedRules) != 1 || got.LearnedRules[0].Keyword != "ABC商事" {
			t.Errorf("LearnedRules = %+v", got.LearnedRules)
		}
		if s.extractor.images != 2 {
			t.Errorf("images sent = %d, want 2", s.extractor.images)
		}
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "異常系: 429", err: fmt.Errorf("%w: quota", visionusecase.ErrRateLimited), wantStatus: http.StatusTooManyRequests},
		{name: "異常系: 503", err: fmt.Errorf("%w: busy", visionusecase.ErrOverloaded), wantStatus: http.StatusServiceUnavailable},
		{name: "異常系: 不正なJSON", err: visionusecase.ErrMalformedResponse, wantStatus: http.StatusBadGateway},
		{name: "異常系: その他", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.extractor.err = tt.err

			body, contentType := multipartImages(t, "image", jpeg)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/bank/extract", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}

	t.Run("異常系: 画像なし", func(t *testing.T) {
		s := newTestServer(t)
		body, contentType := multipartImages(t, "images")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/receipt/extract", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
		resp := decodeData(t, w, nil)
		if resp.Error != usecase.ErrNoImages.Error() {
			t.Errorf("error = %q", resp.Error)
		}
	})

	t.Run("異常系: フォームでない", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(t, http.MethodPost, "/api/v1/ledger/bank/extract", map[string]string{})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestLedgerHandler_Transactions(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, entity.ModeBank,
		TransactionDTO{Date: "2024/05/06", Description: "電話", Amount: 9975, Type: "expense"},
		TransactionDTO{Date: "2024/05/07", Description: "電話", Amount: 5000, Type: "expense"},
	)

	t.Run("正常系: 追加時にルールから勘定科目を補完", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/ledger/bank/transactions", nil)
		var txs []TransactionDTO
		decodeData(t, w, &txs)
		if len(txs) != 2 || txs[0].Account != "通信費" || txs[0].ID == "" {
			t.Fatalf("transactions = %+v", txs)
		}
	})

	t.Run("正常系: 勘定科目の変更が同じ摘要に伝播", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, "/api/v1/ledger/bank/transactions/0", map[string]string{"account": "支払手数料"})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		var txs []TransactionDTO
		decodeData(t, s.do(t, http.MethodGet, "/api/v1/ledger/bank/transactions", nil), &txs)
		if txs[1].Account != "支払手数料" {
			t.Errorf("second row account = %q, want 支払手数料", txs[1].Account)
		}
	})

	t.Run("正常系: 取り消し", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/ledger/bank/undo", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var txs []TransactionDTO
		decodeData(t, w, &txs)
		if txs[0].Account != "通信費" {
			t.Errorf("account after undo = %q, want 通信費", txs[0].Account)
		}
	})

	t.Run("異常系: 範囲外の行", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, "/api/v1/ledger/bank/transactions/9", map[string]string{"note": "x"})
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("異常系: 数値でない行番号", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/v1/ledger/bank/transactions/abc", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("正常系: 削除", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/v1/ledger/bank/transactions/1", nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("status = %d", w.Code)
		}
		var txs []TransactionDTO
		decodeData(t, s.do(t, http.MethodGet, "/api/v1/ledger/bank/transactions", nil), &txs)
		if len(txs) != 1 {
			t.Errorf("len = %d, want 1", len(txs))
		}
	})

	t.Run("正常系: 他のモードには影響しない", func(t *testing.T) {
		var txs []TransactionDTO
		decodeData(t, s.do(t, http.MethodGet, "/api/v1/ledger/creditcard/transactions", nil), &txs)
		if len(txs) != 0 {
			t.Errorf("creditcard transactions = %+v, want none", txs)
		}
	})
}

func TestLedgerHandler_Rules(t *testing.T) {
	s := newTestServer(t)

	t.Run("正常系: 初期ルール", func(t *testing.T) {
		var rules []RuleDTO
		decodeData(t, s.do(t, http.MethodGet, "/api/v1/ledger/bank/rules/income", nil), &rules)
		if len(rules) == 0 || rules[0].Type != "income" {
			t.Errorf("income rules = %+v", rules)
		}
	})

	t.Run("正常系: 追加と更新", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/ledger/creditcard/rules/expense", nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		var added RuleDTO
		decodeData(t, w, &added)
		if added.Keyword != "新しいルール" || added.Account != "雑費" {
			t.Errorf("added = %+v", added)
		}

		var rules []RuleDTO
		decodeData(t, s.do(t, http.MethodGet, "/api/v1/ledger/creditcard/rules/expense", nil), &rules)
		last := len(rules) - 1

		keyword, account := "Amazon", "消耗品費"
		w = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/ledger/creditcard/rules/expense/%d", last),
			RulePatchRequest{Keyword: &keyword, Account: &account})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		var updated RuleDTO
		decodeData(t, w, &updated)
		if updated.Keyword != "Amazon" || updated.Account != "消耗品費" {
			t.Errorf("updated = %+v", updated)
		}
	})

	t.Run("正常系: 削除", func(t *testing.T) {
		var before []RuleDTO
		decodeData(t, s.do(t, http.MethodGet, "/api/v1/ledger/receipt/rules/expense", nil), &before)

		w := s.do(t, http.MethodDelete, "/api/v1/ledger/receipt/rules/expense/0", nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		var after []RuleDTO
		decodeData(t, s.do(t, http.MethodGet, "/api/v1/ledger/receipt/rules/expense", nil), &after)
		if len(after) != len(before)-1 {
			t.Errorf("len = %d, want %d", len(after), len(before)-1)
		}
	})

	t.Run("異常系: 未知の区分", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/ledger/bank/rules/transfer", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestLedgerHandler_LearnJournal(t *testing.T) {
	s := newTestServer(t)
	header := "日付,借方勘定科目,借方補助科目,借方部門,借方税区分,借方金額,貸方勘定科目,貸方補助科目,貸方部門,貸方税区分,貸方金額,摘要,番号,期日"

	t.Run("正常系: 本文のCSVから学習", func(t *testing.T) {
		// 14列形式は日付、借方、借方税区分、貸方、貸方税区分、摘要の順
		body := "2024/05/06,通信費,,,課対仕入内10%,9975,,普通預金,,,,9975,,NTTドコモ\r\n"
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/bank/journal", strings.NewReader(string(yayoi.EncodeShiftJIS(body))))
		req.Header.Set("Content-Type", "text/csv")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		var got JournalLearningResponse
		decodeData(t, w, &got)
		if got.TotalEntries != 1 || got.Added+got.Updated != 1 {
			t.Errorf("result = %+v", got)
		}
	})

	t.Run("異常系: 仕訳がない", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, _ := mw.CreateFormFile("file", "journal.csv")
		_, _ = part.Write([]byte(header))
		_ = mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/bank/journal", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestLedgerHandler_Settings(t *testing.T) {
	s := newTestServer(t)

	t.Run("正常系: APIキーは返さない", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/ledger/bank/settings", nil)
		if strings.Contains(w.Body.String(), "test-key") {
			t.Error("API key leaked in response")
		}
		var got SettingsDTO
		decodeData(t, w, &got)
		if !got.HasAPIKey || got.TargetYear != 2024 || got.SourceLabel != "三菱UFJ銀行" {
			t.Errorf("settings = %+v", got)
		}
	})

	t.Run("正常系: 部分更新", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/v1/ledger/bank/settings", map[string]interface{}{"source_label": "ゆうちょ銀行", "api_key": ""})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		var got SettingsDTO
		decodeData(t, w, &got)
		if got.SourceLabel != "ゆうちょ銀行" || got.HasAPIKey || got.TargetYear != 2024 {
			t.Errorf("settings = %+v", got)
		}
	})

	t.Run("異常系: 不正な税設定", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/v1/ledger/bank/settings", map[string]interface{}{"tax": map[string]string{"tax_type": "other"}})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("異常系: APIキー未入力で抽出", func(t *testing.T) {
		body, contentType := multipartImages(t, "image", []byte{0xFF, 0xD8})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/bank/extract", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestLedgerHandler_Options(t *testing.T) {
	s := newTestServer(t)

	t.Run("正常系: 銀行名の追加", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/ledger/bank/options/sources", OptionRequest{Value: "テスト銀行"})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		var got OptionsResponse
		decodeData(t, w, &got)
		if got.Sources[len(got.Sources)-1] != "テスト銀行" {
			t.Errorf("sources = %v", got.Sources)
		}
	})

	t.Run("異常系: 重複は409", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/ledger/bank/options/sources", OptionRequest{Value: "テスト銀行"})
		if w.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", w.Code)
		}
	})

	t.Run("正常系: 入金の勘定科目を削除", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/v1/ledger/bank/options/accounts/income", OptionRequest{Value: "売上高"})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		var got OptionsResponse
		decodeData(t, w, &got)
		for _, a := range got.IncomeAccounts {
			if a == "売上高" {
				t.Error("売上高 was not removed")
			}
		}
	})
}

func TestLedgerHandler_Prompt(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPut, "/api/v1/ledger/receipt/prompt", PromptDTO{Template: "{{YEAR}}年の領収書"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var got PromptDTO
	decodeData(t, w, &got)
	if got.Template != "{{YEAR}}年の領収書" {
		t.Errorf("Template = %q", got.Template)
	}

	w = s.do(t, http.MethodDelete, "/api/v1/ledger/receipt/prompt", nil)
	decodeData(t, w, &got)
	if got.Template == "{{YEAR}}年の領収書" || got.Template == "" {
		t.Errorf("Template after reset = %q", got.Template)
	}
}

func TestLedgerHandler_DownloadCSV(t *testing.T) {
	s := newTestServer(t)

	t.Run("異常系: 取引なし", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/ledger/bank/csv", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	s.seed(t, entity.ModeBank, TransactionDTO{Date: "2024/05/06", Description: "電話", Amount: 9975, Type: "expense"})

	t.Run("正常系: Shift_JISで出力", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/ledger/bank/csv", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); ct != "text/csv; charset=Shift_JIS" {
			t.Errorf("Content-Type = %q", ct)
		}
		if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
			t.Errorf("Content-Disposition = %q", cd)
		}
		text, err := yayoi.DecodeAuto(w.Body.Bytes())
		if err != nil {
			t.Fatalf("DecodeAuto() error = %v", err)
		}
		if !strings.Contains(text, `"通信費"`) {
			t.Errorf("csv = %s", text)
		}
	})

	t.Run("正常系: UTF-8で出力", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/ledger/bank/csv?encoding=utf8", nil)
		if !strings.Contains(w.Body.String(), "三菱UFJ銀行") {
			t.Errorf("csv = %s", w.Body.String())
		}
	})

	t.Run("正常系: 手順書", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/ledger/bank/manual", nil)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "2024/05/06") {
			t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "APIキーなし", err: usecase.ErrMissingAPIKey, want: http.StatusBadRequest},
		{name: "銀行未選択", err: &usecase.SourceLabelError{SourceKind: "銀行"}, want: http.StatusBadRequest},
		{name: "取引なし", err: service.ErrNoTransactions, want: http.StatusBadRequest},
		{name: "画像でない", err: fmt.Errorf("page 1: %w", domain.ErrInvalidImage), want: http.StatusBadRequest},
		{name: "仕訳なし", err: fmt.Errorf("failed to read journal: %w", yayoi.ErrNoEntries), want: http.StatusBadRequest},
		{name: "範囲外", err: usecase.ErrIndexOutOfRange, want: http.StatusNotFound},
		{name: "処理中", err: usecase.ErrBusy, want: http.StatusConflict},
		{name: "空の応答", err: visionusecase.ErrEmptyResponse, want: http.StatusBadGateway},
		{name: "不明", err: errors.New("x"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}
