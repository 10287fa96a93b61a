package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ledger-import-app/internal/logger"
	"ledger-import-app/internal/modules/ledger/domain/entity"
	"ledger-import-app/internal/modules/ledger/domain/service"
	"ledger-import-app/internal/modules/ledger/infrastructure/yayoi"
	"ledger-import-app/internal/modules/ledger/usecase"
	visiondomain "ledger-import-app/internal/modules/vision/domain"
	visionusecase "ledger-import-app/internal/modules/vision/usecase"
)

const (
	maxUploadSize  = 32 << 20 // 32MB
	maxJournalSize = 16 << 20
)

type sessionKey struct{}

// LedgerHandler 取り込みセッションのHTTPハンドラー
type LedgerHandler struct {
	dispatcher *usecase.ModeDispatcher
}

// NewLedgerHandler 新しいLedgerHandlerを作成
func NewLedgerHandler(dispatcher *usecase.ModeDispatcher) *LedgerHandler {
	return &LedgerHandler{dispatcher: dispatcher}
}

// Routes ルーティングを登録
func (h *LedgerHandler) Routes(r chi.Router) {
	r.Get("/modes", h.HandleListModes)
	r.Put("/active", h.HandleSwitchMode)

	r.Route("/{mode}", func(r chi.Router) {
		r.Use(h.sessionCtx)

		r.Post("/extract", h.HandleExtract)

		r.Get("/transactions", h.HandleListTransactions)
		r.Post("/transactions", h.HandleAddTransaction)
		r.Patch("/transactions/{index}", h.HandleUpdateTransaction)
		r.Delete("/transactions/{index}", h.HandleDeleteTransaction)
		r.Post("/undo", h.HandleUndo)

		r.Get("/rules/{kind}", h.HandleListRules)
		r.Post("/rules/{kind}", h.HandleAddRule)
		r.Patch("/rules/{kind}/{index}", h.HandleUpdateRule)
		r.Delete("/rules/{kind}/{index}", h.HandleDeleteRule)
		r.Post("/journal", h.HandleLearnJournal)

		r.Get("/settings", h.HandleGetSettings)
		r.Put("/settings", h.HandleUpdateSettings)

		r.Get("/options", h.HandleListOptions)
		r.Post("/options/sources", h.HandleAddSource)
		r.Delete("/options/sources", h.HandleRemoveSource)
		r.Post("/options/accounts/{kind}", h.HandleAddAccount)
		r.Delete("/options/accounts/{kind}", h.HandleRemoveAccount)

		r.Get("/prompt", h.HandleGetPrompt)
		r.Put("/prompt", h.HandleUpdatePrompt)
		r.Delete("/prompt", h.HandleResetPrompt)

		r.Get("/csv", h.HandleDownloadCSV)
		r.Get("/manual", h.HandleDownloadManual)
	})
}

// sessionCtx URLのモードに対応するセッションをコンテキストに格納
func (h *LedgerHandler) sessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mode, err := entity.ParseMode(chi.URLParam(r, "mode"))
		if err != nil {
			h.sendError(w, err.Error(), http.StatusNotFound)
			return
		}
		session, err := h.dispatcher.Get(mode)
		if err != nil {
			h.sendError(w, err.Error(), http.StatusNotFound)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *usecase.LedgerUseCase {
	return r.Context().Value(sessionKey{}).(*usecase.LedgerUseCase)
}

// HandleListModes モード一覧
func (h *LedgerHandler) HandleListModes(w http.ResponseWriter, r *http.Request) {
	active := h.dispatcher.ActiveMode()
	sessions := h.dispatcher.Sessions()

	modes := make([]ModeDTO, 0, len(sessions))
	for _, s := range sessions {
		p := s.Profile()
		modes = append(modes, ModeDTO{
			Mode:       string(s.Mode()),
			Label:      p.Label,
			SourceKind: p.SourceKind,
			Active:     s.Mode() == active,
			Busy:       s.IsBusy(),
			CanUndo:    s.CanUndo(),
		})
	}
	h.sendJSON(w, http.StatusOK, modes)
}

// HandleSwitchMode 選択中のモードを切り替える
func (h *LedgerHandler) HandleSwitchMode(w http.ResponseWriter, r *http.Request) {
	var req SwitchModeRequest
	if !h.decode(w, r, &req) {
		return
	}
	mode, err := entity.ParseMode(req.Mode)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := h.dispatcher.Switch(mode); err != nil {
		h.sendUseCaseError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, map[string]string{"mode": string(mode)})
}

// HandleExtract 画像から取引を抽出
func (h *LedgerHandler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.sendError(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	images, err := readImages(r)
	if err != nil {
		h.sendError(w, "Failed to read image", http.StatusInternalServerError)
		return
	}

	result, err := sessionFrom(r).ProcessDocument(r.Context(), images)
	if err != nil {
		h.sendUseCaseError(w, r, err)
		return
	}

	if result.Cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	h.sendJSON(w, http.StatusOK, ExtractResponse{
		Transactions: NewTransactionDTOs(result.Transactions),
		LearnedRules: toRuleDTOs(result.LearnedRules),
		Tokens: AITokensResponse{
			InputTokens:  result.InputTokens,
			OutputTokens: result.OutputTokens,
			TotalTokens:  result.TotalTokens(),
		},
		Model:  result.Model,
		Cached: result.Cached,
	})
}

// readImages "images"（複数）と "image"（単数）のファイルを読み込む
func readImages(r *http.Request) ([]visiondomain.Image, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	var images []visiondomain.Image
	for _, field := range []string{"images", "image"} {
		for _, fh := range r.MultipartForm.File[field] {
			f, err := fh.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
			}
			data, err := io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
			}
			if len(data) == 0 {
				continue
			}
			images = append(images, visiondomain.NewImage(data))
		}
	}
	return images, nil
}

// HandleListTransactions 取引一覧
func (h *LedgerHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, NewTransactionDTOs(sessionFrom(r).Transactions()))
}

// HandleAddTransaction 取引を追加
func (h *LedgerHandler) HandleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionDTO
	if !h.decode(w, r, &req) {
		return
	}
	tx, err := sessionFrom(r).AddTransaction(r.Context(), req.ToEntity())
	if err != nil {
		h.sendUseCaseError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, NewTransactionDTO(tx))
}

// HandleUpdateTransaction 取引を部分更新
func (h *LedgerHandler) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	var req TransactionPatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	tx, err := sessionFrom(r).UpdateTransaction(r.Context(), index, req.toPatch())
	if err != nil {
		h.sendUseCaseError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, NewTransactionDTO(tx))
}

// HandleDeleteTransaction 取引を削除
func (h *LedgerHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	if err := sessionFrom(r).DeleteTransaction(r.Context(), index); err != nil {
		h.sendUseCaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUndo 直前の編集を取り消す
func (h *LedgerHandler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	if !session.Undo() {
		h.sendError(w, "取り消せる操作がありません", http.StatusConflict)
		return
	}
	h.sendJSON(w, http.StatusOK, NewTransactionDTOs(session.Transactions()))
}

// HandleListRules ルール一覧
func (h *LedgerHandler) HandleListRules(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	h.sendJSON(w, http.StatusOK, toRuleDTOs(sessionFrom(r).Rules(kind)))
}

// HandleAddRule 空のルールを追加
func (h *LedgerHandler) HandleAddRule(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	rule, err := sessionFrom(r).AddRule(r.Context(), kind)
	if err != nil {
		h.sendUseCaseError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, toRuleDTO(rule))
}

// HandleUpdateRule ルールを更新
func (h *LedgerHandler) HandleUpdateRule(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	var req RulePatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	rule, err := sessionFrom(r).UpdateRule(r.Context(), kind, index, usecase.RulePatch{
		Keyword:     req.Keyword,
		Account:     req.Account,
		TaxCategory: req.TaxCategory,
	})
	if err != nil {
		h.sendUseCaseError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, toRuleDTO(rule))
}

// HandleDeleteRule ルールを削除
func (h *LedgerHandler) HandleDeleteRule(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	if err := sessionFrom(r).DeleteRule(r.Context(), kind, index); err != nil {
		h.sendUseCaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLearnJournal 仕訳日記帳CSVからルールを学習
// multipart の "file" または本文そのものを受け付ける
func (h *LedgerHandler) HandleLearnJournal(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJournalSize)

	var (
		data []byte
		err  error
	)
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		file, _, ferr := r.FormFile("file")
		if ferr != nil {
			h.sendError(w, "CSV file is required", http.StatusBadRequest)
			return
		}
		defer func() {
			_ = file.Close()
		}()
		data, err = io.ReadAll(file)
	} else {
		data, err = io.ReadAll(r.Body)
	}
	if err != nil {
		h.sendError(w, "Failed to read CSV", http.StatusBadRequest)
		return
	}

	result, err := sessionFrom(r).LearnFromJournal(r.Context(), data)
	if err != nil {
		h.sendUseCaseError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, JournalLearningResponse{
		TotalEntries: result.TotalEntries,
		Added:        result.Added,
		Updated:      result.Updated,
		Skipped:      result.Skipped,
	})
}

// HandleGetSettings 設定を取得
func (h *LedgerHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, toSettingsDTO(sessionFrom(r).Settings()))
}

// HandleUpdateSettings 設定を更新
func (h *LedgerHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)

	current := session.Settings()
	req := toSettingsDTO(current)
	if !h.decode(w, r, &req) {
		return
	}
	if err := session.UpdateSettings(req.apply(current)); err != nil {
		h.sendUseCaseError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, toSettingsDTO(session.Settings()))
}

// HandleListOptions 選択肢の一覧
func (h *LedgerHandler) HandleListOptions(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, optionsOf(sessionFrom(r)))
}

func optionsOf(s *usecase.LedgerUseCase) OptionsResponse {
	return OptionsResponse{
		Sources:         s.SourceOptions(),
		ExpenseAccounts: s.AccountOptions(entity.KindExpense),
		IncomeAccounts:  s.AccountOptions(entity.KindIncome),
	}
}

// HandleAddSource 銀行名・カード名を追加
func (h *LedgerHandler) HandleAddSource(w http.ResponseWriter, r *http.Request) {
	h.editOption(w, r, func(s *usecase.LedgerUseCase, v string) bool { return s.AddSourceOption(v) })
}

// HandleRemoveSource 銀行名・カード名を削除
func (h *LedgerHandler) HandleRemoveSource(w http.ResponseWriter, r *http.Request) {
	h.editOption(w, r, func(s *usecase.LedgerUseCase, v string) bool { return s.RemoveSourceOption(v) })
}

// HandleAddAccount 勘定科目の選択肢を追加
func (h *LedgerHandler) HandleAddAccount(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	h.editOption(w, r, func(s *usecase.LedgerUseCase, v string) bool { return s.AddAccountOption(kind, v) })
}

// HandleRemoveAccount 勘定科目の選択肢を削除
func (h *LedgerHandler) HandleRemoveAccount(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	h.editOption(w, r, func(s *usecase.LedgerUseCase, v string) bool { return s.RemoveAccountOption(kind, v) })
}

// editOption 変更がなければ 409 を返す
func (h *LedgerHandler) editOption(w http.ResponseWriter, r *http.Request, edit func(*usecase.LedgerUseCase, string) bool) {
	var req OptionRequest
	if !h.decode(w, r, &req) {
		return
	}
	session := sessionFrom(r)
	if !edit(session, req.Value) {
		h.sendError(w, fmt.Sprintf("option not changed: %q", req.Value), http.StatusConflict)
		return
	}
	h.sendJSON(w, http.StatusOK, optionsOf(session))
}

// HandleGetPrompt プロンプトを取得
func (h *LedgerHandler) HandleGetPrompt(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	h.sendJSON(w, http.StatusOK, PromptDTO{
		Template: session.PromptTemplate(),
		Rendered: session.RenderedPrompt(),
	})
}

// HandleUpdatePrompt プロンプトを変更
func (h *LedgerHandler) HandleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var req PromptDTO
	if !h.decode(w, r, &req) {
		return
	}
	session := sessionFrom(r)
	session.SetPromptTemplate(req.Template)
	h.sendJSON(w, http.StatusOK, PromptDTO{
		Template: session.PromptTemplate(),
		Rendered: session.RenderedPrompt(),
	})
}

// HandleResetPrompt プロンプトを既定に戻す
func (h *LedgerHandler) HandleResetPrompt(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	session.ResetPromptTemplate()
	h.sendJSON(w, http.StatusOK, PromptDTO{
		Template: session.PromptTemplate(),
		Rendered: session.RenderedPrompt(),
	})
}

// HandleDownloadCSV 弥生会計インポート用CSVをダウンロード
// encoding=utf8 以外はShift_JISで出力する
func (h *LedgerHandler) HandleDownloadCSV(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)

	text, err := session.RenderCSV()
	if err != nil {
		h.sendUseCaseError(w, r, err)
		return
	}

	body, charset := yayoi.EncodeShiftJIS(text), "Shift_JIS"
	if r.URL.Query().Get("encoding") == "utf8" {
		body, charset = []byte(text), "utf-8"
	}
	h.sendFile(w, body, "text/csv; charset="+charset, session.CSVFilename())
}

// HandleDownloadManual 取り込み手順書をダウンロード
func (h *LedgerHandler) HandleDownloadManual(w http.ResponseWriter, r *http.Request) {
	text, filename := sessionFrom(r).Manual()
	h.sendFile(w, []byte(text), "text/plain; charset=utf-8", filename)
}

func (h *LedgerHandler) index(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.sendError(w, "invalid index", http.StatusBadRequest)
		return 0, false
	}
	return index, true
}

func (h *LedgerHandler) kind(w http.ResponseWriter, r *http.Request) (entity.Kind, bool) {
	switch k := entity.Kind(chi.URLParam(r, "kind")); k {
	case entity.KindExpense, entity.KindIncome:
		return k, true
	}
	h.sendError(w, "kind must be expense or income", http.StatusBadRequest)
	return "", false
}

func (h *LedgerHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor ユースケースのエラーをHTTPステータスに変換
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrMissingAPIKey),
		errors.Is(err, usecase.ErrNoSourceLabel),
		errors.Is(err, usecase.ErrNoImages),
		errors.Is(err, visiondomain.ErrInvalidImage),
		errors.Is(err, usecase.ErrInvalidSettings),
		errors.Is(err, service.ErrNoTransactions),
		errors.Is(err, yayoi.ErrNoEntries):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrIndexOutOfRange),
		errors.Is(err, usecase.ErrUnknownMode):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, visionusecase.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, visionusecase.ErrOverloaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, visionusecase.ErrEmptyResponse),
		errors.Is(err, visionusecase.ErrMalformedResponse):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *LedgerHandler) sendUseCaseError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error().Err(err).Int("status", status).Msg("request failed")
	}
	h.sendError(w, err.Error(), status)
}

// sendJSON JSONレスポンスを送信
func (h *LedgerHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

// sendError エラーレスポンスを送信
func (h *LedgerHandler) sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Success: false, Error: message})
}

func (h *LedgerHandler) sendFile(w http.ResponseWriter, body []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
