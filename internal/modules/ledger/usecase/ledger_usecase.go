package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"ledger-import-app/internal/logger"
	"ledger-import-app/internal/modules/ledger/domain/entity"
	"ledger-import-app/internal/modules/ledger/domain/profile"
	"ledger-import-app/internal/modules/ledger/domain/repository"
	"ledger-import-app/internal/modules/ledger/domain/service"
	"ledger-import-app/internal/modules/vision/domain"
	visionusecase "ledger-import-app/internal/modules/vision/usecase"
)

// 追加ボタンで作られるルールのキーワード
const newRuleKeyword = "新しいルール"

// Extractor 画像から取引を抽出する
type Extractor interface {
	Extract(ctx context.Context, prompt string, images []domain.Image) (*visionusecase.Extraction, error)
}

// ExtractorFactory 画面で入力されたAPIキーとモデルからExtractorを作る
type ExtractorFactory func(ctx context.Context, apiKey, model string) (Extractor, error)

// Settings モードごとの設定
type Settings struct {
	APIKey            string             `json:"-"`
	Model             string             `json:"model"`
	SourceLabel       string             `json:"source_label"`
	TargetYear        int                `json:"target_year"`
	Tax               entity.TaxSettings `json:"tax"`
	ShowSystemColumns bool               `json:"show_system_columns"`
	DescriptionLength int                `json:"description_length"`
}

// DefaultSettings 既定の設定
func DefaultSettings(now time.Time) Settings {
	return Settings{
		Model:             profile.DefaultModel,
		TargetYear:        now.Year(),
		Tax:               entity.DefaultTaxSettings(),
		DescriptionLength: service.DefaultDescriptionLength,
	}
}

// Validate 設定値を検証
func (s Settings) Validate() error {
	if !s.Tax.IsValid() {
		return fmt.Errorf("%w: tax settings", ErrInvalidSettings)
	}
	if s.DescriptionLength < 0 {
		return fmt.Errorf("%w: description length must not be negative", ErrInvalidSettings)
	}
	if s.TargetYear < 0 {
		return fmt.Errorf("%w: target year must not be negative", ErrInvalidSettings)
	}
	return nil
}

// ProcessResult 抽出処理の結果
type ProcessResult struct {
	Transactions []*entity.Transaction
	LearnedRules []entity.Rule
	InputTokens  int
	OutputTokens int
	Model        string
	Cached       bool
}

// TotalTokens 合計トークン数を返す
func (r *ProcessResult) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// RulePatch ルールの部分更新
type RulePatch struct {
	Keyword     *string
	Account     *string
	TaxCategory *string
}

// LedgerUseCase 1モード分の取り込みセッション
type LedgerUseCase struct {
	mu   sync.Mutex
	busy atomic.Bool

	mode    entity.Mode
	profile *profile.Profile

	rules        *service.RuleBook
	transactions []*entity.Transaction
	history      *History

	ruleRepo     repository.RuleRepository
	txRepo       repository.TransactionRepository
	notifier     repository.ChangeNotifier
	newExtractor ExtractorFactory

	settings        Settings
	sourceOptions   []string
	expenseAccounts []string
	incomeAccounts  []string
	customPrompt    string

	origin string
	now    func() time.Time
}

// LedgerOption LedgerUseCaseの設定
type LedgerOption func(*LedgerUseCase)

// WithNotifier 変更通知の送信先を設定
func WithNotifier(notifier repository.ChangeNotifier) LedgerOption {
	return func(uc *LedgerUseCase) {
		uc.notifier = notifier
	}
}

// WithSettings 初期設定を指定
func WithSettings(settings Settings) LedgerOption {
	return func(uc *LedgerUseCase) {
		uc.settings = settings
	}
}

// WithOrigin 変更通知の送信元IDを指定
func WithOrigin(origin string) LedgerOption {
	return func(uc *LedgerUseCase) {
		uc.origin = origin
	}
}

// WithClock 現在時刻の取得方法を指定
func WithClock(now func() time.Time) LedgerOption {
	return func(uc *LedgerUseCase) {
		uc.now = now
	}
}

// NewLedgerUseCase 新しいLedgerUseCaseを作成
func NewLedgerUseCase(
	mode entity.Mode,
	ruleRepo repository.RuleRepository,
	txRepo repository.TransactionRepository,
	newExtractor ExtractorFactory,
	opts ...LedgerOption,
) (*LedgerUseCase, error) {
	p, err := profile.Get(mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}

	uc := &LedgerUseCase{
		mode:            mode,
		profile:         p,
		rules:           service.NewRuleBook(p.DefaultRules()),
		history:         NewHistory(MaxHistory),
		ruleRepo:        ruleRepo,
		txRepo:          txRepo,
		newExtractor:    newExtractor,
		sourceOptions:   p.Sources(),
		expenseAccounts: p.Accounts(entity.KindExpense),
		incomeAccounts:  p.Accounts(entity.KindIncome),
		origin:          uuid.NewString(),
		now:             time.Now,
	}
	uc.settings = DefaultSettings(uc.now())
	for _, opt := range opts {
		opt(uc)
	}
	if uc.settings.Model == "" {
		uc.settings.Model = profile.DefaultModel
	}
	return uc, nil
}

// Mode セッションのモード
func (uc *LedgerUseCase) Mode() entity.Mode {
	return uc.mode
}

// Profile モードのプロファイル
func (uc *LedgerUseCase) Profile() *profile.Profile {
	return uc.profile
}

// Origin 変更通知の送信元ID
func (uc *LedgerUseCase) Origin() string {
	return uc.origin
}

// IsBusy 抽出処理中かどうか
func (uc *LedgerUseCase) IsBusy() bool {
	return uc.busy.Load()
}

// Load 保存済みのルールと取引を読み込む
// ルールが1件もなければプロファイルの初期ルールを使う（保存はしない）
func (uc *LedgerUseCase) Load(ctx context.Context) error {
	rules, err := uc.ruleRepo.GetRules(ctx, uc.mode, nil)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	txs, err := uc.txRepo.GetTransactions(ctx, uc.mode, "")
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if len(rules) == 0 {
		rules = uc.profile.DefaultRules()
	}
	uc.rules = service.NewRuleBook(rules)
	uc.transactions = txs

	logger.FromContext(ctx).Debug().
		Str("mode", string(uc.mode)).
		Int("rules", len(rules)).
		Int("transactions", len(txs)).
		Msg("ledger session loaded")
	return nil
}

// HandleChange 他のインスタンスからの変更通知で再読み込みする
func (uc *LedgerUseCase) HandleChange(ctx context.Context, change repository.Change) error {
	if change.Mode != uc.mode || change.Origin == uc.origin {
		return nil
	}
	return uc.Load(ctx)
}

// ProcessDocument 画像から取引を抽出して一覧を置き換え、未登録の摘要をルールとして学習する
func (uc *LedgerUseCase) ProcessDocument(ctx context.Context, images []domain.Image) (*ProcessResult, error) {
	uc.mu.Lock()
	settings := uc.settings
	prompt := uc.renderPrompt()
	uc.mu.Unlock()

	if strings.TrimSpace(settings.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if uc.profile.RequiresSource && strings.TrimSpace(settings.SourceLabel) == "" {
		return nil, &SourceLabelError{SourceKind: uc.profile.SourceKind}
	}
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	for i, img := range images {
		if err := img.Validate(); err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
	}

	if !uc.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer uc.busy.Store(false)

	log := logger.FromContext(ctx).With().Str("mode", string(uc.mode)).Logger()

	extractor, err := uc.newExtractor(ctx, settings.APIKey, settings.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}
	extraction, err := extractor.Extract(ctx, prompt, images)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	txs := make([]*entity.Transaction, 0, len(extraction.Transactions))
	for _, raw := range extraction.Transactions {
		txs = append(txs, uc.toTransaction(raw, settings.SourceLabel))
	}

	uc.history.Clear()
	uc.transactions = txs

	for _, tx := range txs {
		if err := uc.txRepo.SaveTransaction(ctx, tx); err != nil {
			log.Warn().Err(err).Str("description", tx.Description).Msg("failed to save transaction")
		}
	}

	learned := uc.rules.Learn(txs, entity.KindExpense, uc.mode.KindOf)
	if uc.profile.HasIncomeRules {
		learned = append(learned, uc.rules.Learn(txs, entity.KindIncome, uc.mode.KindOf)...)
	}
	for i, rule := range learned {
		saved, err := uc.saveRule(ctx, rule)
		if err != nil {
			log.Warn().Err(err).Str("keyword", rule.Keyword).Msg("failed to save learned rule")
			continue
		}
		learned[i] = saved
	}

	uc.publish(ctx, repository.ChangeTargetTransaction, "")
	if len(learned) > 0 {
		uc.publish(ctx, repository.ChangeTargetRule, "")
	}

	log.Info().
		Int("transactions", len(txs)).
		Int("learned_rules", len(learned)).
		Int("total_tokens", extraction.TotalTokens()).
		Bool("cached", extraction.Cached).
		Msg("document processed")

	return &ProcessResult{
		Transactions: entity.CloneTransactions(txs),
		LearnedRules: learned,
		InputTokens:  extraction.InputTokens,
		OutputTokens: extraction.OutputTokens,
		Model:        extraction.Model,
		Cached:       extraction.Cached,
	}, nil
}

// toTransaction AIの抽出結果を取引に変換し、勘定科目を割り当てる
func (uc *LedgerUseCase) toTransaction(raw domain.RawTransaction, sourceLabel string) *entity.Transaction {
	tx := &entity.Transaction{
		Date:        strings.TrimSpace(raw.Date),
		Description: strings.TrimSpace(raw.Description),
		Amount:      raw.Amount.Int64(),
		Note:        raw.Note,
		TaxCategory: raw.TaxCategory,
		SourceType:  uc.mode,
	}
	if uc.profile.RequiresSource {
		tx.SourceName = sourceLabel
	}
	if uc.profile.HasTypeColumn {
		tx.Type = parseKind(raw.Type)
	}
	if uc.profile.HasInvoiceNumber {
		tx.InvoiceNumber = strings.TrimSpace(raw.InvoiceNumber)
	}
	if raw.TaxAmount != nil {
		v := raw.TaxAmount.Int64()
		tx.TaxAmount = &v
	}
	tx.Account = uc.rules.ResolveAccount(tx.Description, strings.TrimSpace(raw.Account), uc.mode.KindOf(tx))
	return tx
}

func parseKind(s string) entity.Kind {
	switch entity.Kind(strings.ToLower(strings.TrimSpace(s))) {
	case entity.KindExpense:
		return entity.KindExpense
	case entity.KindIncome:
		return entity.KindIncome
	}
	return ""
}

// Transactions 取引一覧のコピー
func (uc *LedgerUseCase) Transactions() []*entity.Transaction {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return entity.CloneTransactions(uc.transactions)
}

// AddTransaction 取引を手入力で追加
func (uc *LedgerUseCase) AddTransaction(ctx context.Context, tx *entity.Transaction) (*entity.Transaction, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	row := tx.Clone()
	row.ID = ""
	row.SourceType = uc.mode
	if row.SourceName == "" && uc.profile.RequiresSource {
		row.SourceName = uc.settings.SourceLabel
	}
	if row.Account == "" {
		row.Account = uc.rules.FindAccount(row.Description, uc.mode.KindOf(row))
	}

	if err := uc.txRepo.SaveTransaction(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	uc.history.Push(uc.transactions)
	uc.transactions = append(uc.transactions, row)
	uc.publish(ctx, repository.ChangeTargetTransaction, row.ID)
	return row.Clone(), nil
}

// UpdateTransaction 取引を更新する
// 勘定科目が変わった場合は摘要をキーワードにルールを登録し、同じ摘要の他の行にも反映する
func (uc *LedgerUseCase) UpdateTransaction(ctx context.Context, index int, patch entity.TransactionPatch) (*entity.Transaction, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if index < 0 || index >= len(uc.transactions) {
		return nil, ErrIndexOutOfRange
	}

	// 保存に成功するまで一覧には反映しない
	tx := uc.transactions[index].Clone()
	accountChanged := patch.Apply(tx)
	if err := uc.txRepo.SaveTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	uc.history.Push(uc.transactions)
	uc.transactions[index] = tx

	if accountChanged && strings.TrimSpace(tx.Description) != "" {
		uc.learnAccount(ctx, index, tx)
	}

	uc.publish(ctx, repository.ChangeTargetTransaction, tx.ID)
	return tx.Clone(), nil
}

// learnAccount 変更した勘定科目をルールに登録し、同じ摘要の行に反映する
func (uc *LedgerUseCase) learnAccount(ctx context.Context, index int, tx *entity.Transaction) {
	log := logger.FromContext(ctx)
	kind := uc.mode.KindOf(tx)

	rule, _ := uc.rules.Upsert(tx.Description, tx.Account, "", kind)
	if _, err := uc.saveRule(ctx, rule); err != nil {
		log.Warn().Err(err).Str("keyword", rule.Keyword).Msg("failed to save rule")
	} else {
		uc.publish(ctx, repository.ChangeTargetRule, "")
	}

	for i, other := range uc.transactions {
		if i == index || other.Description != tx.Description {
			continue
		}
		if uc.mode == entity.ModeBank && other.Type != tx.Type {
			continue
		}
		if other.Account == tx.Account {
			continue
		}
		other.Account = tx.Account
		if err := uc.txRepo.SaveTransaction(ctx, other); err != nil {
			log.Warn().Err(err).Str("id", other.ID).Msg("failed to save propagated account")
		}
	}
}

// DeleteTransaction 取引を削除する（保存に失敗した場合は一覧を変更しない）
func (uc *LedgerUseCase) DeleteTransaction(ctx context.Context, index int) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if index < 0 || index >= len(uc.transactions) {
		return ErrIndexOutOfRange
	}

	tx := uc.transactions[index]
	if tx.ID != "" {
		if err := uc.txRepo.DeleteTransaction(ctx, tx.ID); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
	}

	uc.history.Push(uc.transactions)
	uc.transactions = append(uc.transactions[:index:index], uc.transactions[index+1:]...)
	uc.publish(ctx, repository.ChangeTargetTransaction, tx.ID)
	return nil
}

// Undo 直前の変更を取り消す（画面上の一覧のみ、保存内容は戻さない）
func (uc *LedgerUseCase) Undo() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	prev, ok := uc.history.Undo()
	if !ok {
		return false
	}
	uc.transactions = prev
	return true
}

// CanUndo 取り消せる変更があるかどうか
func (uc *LedgerUseCase) CanUndo() bool {
	return uc.history.CanUndo()
}

// Rules 指定区分のルール（照合順）
func (uc *LedgerUseCase) Rules(kind entity.Kind) []entity.Rule {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.rules.Rules(kind)
}

// AddRule 空のルールを追加
func (uc *LedgerUseCase) AddRule(ctx context.Context, kind entity.Kind) (entity.Rule, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	rule, _ := uc.rules.Upsert(newRuleKeyword, kind.FallbackAccount(), "", kind)
	saved, err := uc.saveRule(ctx, rule)
	if err != nil {
		return rule, err
	}
	uc.publish(ctx, repository.ChangeTargetRule, saved.ID)
	return saved, nil
}

// UpdateRule ルールを更新する
// 更新後のキーワードで登録し直すため、キーワードを変えた場合は元のルールも残る
func (uc *LedgerUseCase) UpdateRule(ctx context.Context, kind entity.Kind, index int, patch RulePatch) (entity.Rule, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	rules := uc.rules.Rules(kind)
	if index < 0 || index >= len(rules) {
		return entity.Rule{}, ErrIndexOutOfRange
	}

	r := rules[index]
	if patch.Keyword != nil {
		r.Keyword = *patch.Keyword
	}
	if patch.Account != nil {
		r.Account = *patch.Account
	}
	if patch.TaxCategory != nil {
		r.TaxCategory = *patch.TaxCategory
	}

	rule, _ := uc.rules.Upsert(r.Keyword, r.Account, r.TaxCategory, kind)
	saved, err := uc.saveRule(ctx, rule)
	if err != nil {
		return rule, err
	}
	uc.publish(ctx, repository.ChangeTargetRule, saved.ID)
	return saved, nil
}

// DeleteRule ルールを削除する
func (uc *LedgerUseCase) DeleteRule(ctx context.Context, kind entity.Kind, index int) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	rules := uc.rules.Rules(kind)
	if index < 0 || index >= len(rules) {
		return ErrIndexOutOfRange
	}

	r := rules[index]
	if r.ID != "" {
		if err := uc.ruleRepo.DeleteRule(ctx, r.ID); err != nil {
			return fmt.Errorf("failed to delete rule: %w", err)
		}
	}
	uc.rules.DeleteAt(kind, index)
	if r.ID == "" {
		// 残りの初期ルールを保存して削除を確定する
		if err := uc.persistPending(ctx); err != nil {
			return err
		}
	}
	uc.publish(ctx, repository.ChangeTargetRule, r.ID)
	return nil
}

// saveRule ルールを保存し、採番されたIDをRuleBookに反映する
// 未保存の初期ルールが残っていれば並び順どおりに合わせて保存する
func (uc *LedgerUseCase) saveRule(ctx context.Context, rule entity.Rule) (entity.Rule, error) {
	rule.Mode = uc.mode

	saved := false
	for _, r := range uc.rules.All() {
		target := r.Kind() == rule.Kind() && r.Keyword == rule.Keyword
		if target {
			r = rule
			saved = true
		} else if r.ID != "" {
			continue
		}
		if err := uc.persistRule(ctx, &r); err != nil {
			return rule, err
		}
		if target {
			rule = r
		}
	}
	if !saved {
		if err := uc.persistRule(ctx, &rule); err != nil {
			return rule, err
		}
	}
	return rule, nil
}

// persistPending 未保存の初期ルールを保存する
func (uc *LedgerUseCase) persistPending(ctx context.Context) error {
	for _, r := range uc.rules.All() {
		if r.ID != "" {
			continue
		}
		if err := uc.persistRule(ctx, &r); err != nil {
			return err
		}
	}
	return nil
}

func (uc *LedgerUseCase) persistRule(ctx context.Context, rule *entity.Rule) error {
	rule.Mode = uc.mode
	if err := uc.ruleRepo.SaveRule(ctx, rule); err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}
	uc.rules.SetID(rule.Kind(), rule.Keyword, rule.ID)
	return nil
}

func (uc *LedgerUseCase) publish(ctx context.Context, target repository.ChangeTarget, id string) {
	if uc.notifier == nil {
		return
	}
	change := repository.Change{Mode: uc.mode, Target: target, ID: id, Origin: uc.origin}
	if err := uc.notifier.Publish(ctx, change); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("target", string(target)).Msg("failed to publish change")
	}
}

// RenderCSV 現在の取引一覧から弥生会計インポート用CSVを生成
func (uc *LedgerUseCase) RenderCSV() (string, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	csv, err := service.NewJournalCSV(uc.rules).Render(uc.transactions, service.RenderOptions{
		Mode:              uc.mode,
		SourceLabel:       uc.settings.SourceLabel,
		RequiresSource:    uc.profile.RequiresSource,
		Tax:               uc.settings.Tax,
		ShowSystemColumns: uc.settings.ShowSystemColumns,
		DescriptionLength: uc.settings.DescriptionLength,
	})
	if errors.Is(err, service.ErrNoSourceLabel) {
		return "", &SourceLabelError{SourceKind: uc.profile.SourceKind}
	}
	return csv, err
}

// CSVFilename 出力CSVのファイル名
func (uc *LedgerUseCase) CSVFilename() string {
	return uc.profile.CSVFilename(uc.now())
}

// Manual 取り込み手順書の本文とファイル名
func (uc *LedgerUseCase) Manual() (text, filename string) {
	return uc.profile.Manual(uc.now()), uc.profile.ManualFilename()
}

// Settings 現在の設定
func (uc *LedgerUseCase) Settings() Settings {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.settings
}

// UpdateSettings 設定を置き換える
func (uc *LedgerUseCase) UpdateSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if settings.Model == "" {
		settings.Model = profile.DefaultModel
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.settings = settings
	return nil
}

// SetSourceLabel 銀行名・カード名を選択
func (uc *LedgerUseCase) SetSourceLabel(label string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.settings.SourceLabel = strings.TrimSpace(label)
}

// SourceOptions 銀行名・カード名の選択肢
func (uc *LedgerUseCase) SourceOptions() []string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return append([]string(nil), uc.sourceOptions...)
}

// AddSourceOption 選択肢を追加（空文字・重複は無視）
func (uc *LedgerUseCase) AddSourceOption(label string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return addOption(&uc.sourceOptions, label)
}

// RemoveSourceOption 選択肢を削除
func (uc *LedgerUseCase) RemoveSourceOption(label string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return removeOption(&uc.sourceOptions, label)
}

// AccountOptions 区分ごとの勘定科目の選択肢
func (uc *LedgerUseCase) AccountOptions(kind entity.Kind) []string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return append([]string(nil), *uc.accountList(kind)...)
}

// AddAccountOption 勘定科目の選択肢を追加
func (uc *LedgerUseCase) AddAccountOption(kind entity.Kind, account string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return addOption(uc.accountList(kind), account)
}

// RemoveAccountOption 勘定科目の選択肢を削除
func (uc *LedgerUseCase) RemoveAccountOption(kind entity.Kind, account string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return removeOption(uc.accountList(kind), account)
}

func (uc *LedgerUseCase) accountList(kind entity.Kind) *[]string {
	if kind.Normalize() == entity.KindIncome {
		return &uc.incomeAccounts
	}
	return &uc.expenseAccounts
}

func addOption(list *[]string, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, v := range *list {
		if v == value {
			return false
		}
	}
	*list = append(*list, value)
	return true
}

func removeOption(list *[]string, value string) bool {
	for i, v := range *list {
		if v == value {
			*list = append((*list)[:i:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

// PromptTemplate 編集中のプロンプトテンプレート（未編集ならプロファイルの既定値）
func (uc *LedgerUseCase) PromptTemplate() string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if strings.TrimSpace(uc.customPrompt) == "" {
		return uc.profile.PromptTemplate
	}
	return uc.customPrompt
}

// SetPromptTemplate プロンプトテンプレートを変更
func (uc *LedgerUseCase) SetPromptTemplate(tmpl string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.customPrompt = tmpl
}

// ResetPromptTemplate プロンプトテンプレートを既定値に戻す
func (uc *LedgerUseCase) ResetPromptTemplate() {
	uc.SetPromptTemplate("")
}

// RenderedPrompt AIに送るプロンプト
func (uc *LedgerUseCase) RenderedPrompt() string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.renderPrompt()
}

func (uc *LedgerUseCase) renderPrompt() string {
	return uc.profile.RenderPrompt(uc.customPrompt, profile.PromptParams{
		Year:            uc.settings.TargetYear,
		ExpenseAccounts: uc.expenseAccounts,
		IncomeAccounts:  uc.incomeAccounts,
	})
}
