package handler

import (
	"ledger-import-app/internal/modules/ledger/domain/entity"
	"ledger-import-app/internal/modules/ledger/usecase"
)

// Response APIの共通レスポンス
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// TransactionDTO 取引のJSON表現
type TransactionDTO struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	Description   string `json:"description"`
	Amount        int64  `json:"amount"`
	Type          string `json:"type,omitempty"`
	Note          string `json:"note"`
	Account       string `json:"account"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	TaxCategory   string `json:"tax_category,omitempty"`
	TaxAmount     *int64 `json:"tax_amount,omitempty"`
	SourceName    string `json:"source_name,omitempty"`
}

// NewTransactionDTO 取引をJSON表現に変換
func NewTransactionDTO(tx *entity.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:            tx.ID,
		Date:          tx.Date,
		Description:   tx.Description,
		Amount:        tx.Amount,
		Type:          string(tx.Type),
		Note:          tx.Note,
		Account:       tx.Account,
		InvoiceNumber: tx.InvoiceNumber,
		TaxCategory:   tx.TaxCategory,
		TaxAmount:     tx.TaxAmount,
		SourceName:    tx.SourceName,
	}
}

func NewTransactionDTOs(txs []*entity.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, NewTransactionDTO(tx))
	}
	return out
}

// ToEntity 取引エンティティに変換（IDとモードは呼び出し側で設定する）
func (d TransactionDTO) ToEntity() *entity.Transaction {
	return &entity.Transaction{
		Date:          d.Date,
		Description:   d.Description,
		Amount:        d.Amount,
		Type:          entity.Kind(d.Type),
		Note:          d.Note,
		Account:       d.Account,
		InvoiceNumber: d.InvoiceNumber,
		TaxCategory:   d.TaxCategory,
		TaxAmount:     d.TaxAmount,
		SourceName:    d.SourceName,
	}
}

// TransactionPatchRequest 取引の部分更新リクエスト
type TransactionPatchRequest struct {
	Date          *string `json:"date"`
	Description   *string `json:"description"`
	Amount        *int64  `json:"amount"`
	Type          *string `json:"type"`
	Note          *string `json:"note"`
	Account       *string `json:"account"`
	InvoiceNumber *string `json:"invoice_number"`
	TaxCategory   *string `json:"tax_category"`
	TaxAmount     *int64  `json:"tax_amount"`
}

func (p TransactionPatchRequest) toPatch() entity.TransactionPatch {
	patch := entity.TransactionPatch{
		Date:          p.Date,
		Description:   p.Description,
		Amount:        p.Amount,
		Note:          p.Note,
		Account:       p.Account,
		InvoiceNumber: p.InvoiceNumber,
		TaxCategory:   p.TaxCategory,
		TaxAmount:     p.TaxAmount,
	}
	if p.Type != nil {
		k := entity.Kind(*p.Type)
		patch.Type = &k
	}
	return patch
}

// RuleDTO ルールのJSON表現
type RuleDTO struct {
	ID          string `json:"id,omitempty"`
	Keyword     string `json:"keyword"`
	Account     string `json:"account"`
	TaxCategory string `json:"tax_category,omitempty"`
	Type        string `json:"type"`
}

func toRuleDTO(r entity.Rule) RuleDTO {
	return RuleDTO{
		ID:          r.ID,
		Keyword:     r.Keyword,
		Account:     r.Account,
		TaxCategory: r.TaxCategory,
		Type:        string(r.Kind()),
	}
}

func toRuleDTOs(rules []entity.Rule) []RuleDTO {
	out := make([]RuleDTO, 0, len(rules))
	for _, r := range rules {
		out = append(out, toRuleDTO(r))
	}
	return out
}

// RulePatchRequest ルールの部分更新リクエスト
type RulePatchRequest struct {
	Keyword     *string `json:"keyword"`
	Account     *string `json:"account"`
	TaxCategory *string `json:"tax_category"`
}

// AITokensResponse AIトークン使用量のレスポンス
type AITokensResponse struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ExtractResponse 抽出処理のレスポンス
type ExtractResponse struct {
	Transactions []TransactionDTO `json:"transactions"`
	LearnedRules []RuleDTO        `json:"learned_rules"`
	Tokens       AITokensResponse `json:"tokens"`
	Model        string           `json:"model,omitempty"`
	Cached       bool             `json:"cached"`
}

// SettingsDTO 設定のJSON表現（APIキーは書き込み専用）
type SettingsDTO struct {
	APIKey            *string            `json:"api_key,omitempty"`
	HasAPIKey         bool               `json:"has_api_key"`
	Model             string             `json:"model"`
	SourceLabel       string             `json:"source_label"`
	TargetYear        int                `json:"target_year"`
	Tax               entity.TaxSettings `json:"tax"`
	ShowSystemColumns bool               `json:"show_system_columns"`
	DescriptionLength int                `json:"description_length"`
}

func toSettingsDTO(s usecase.Settings) SettingsDTO {
	return SettingsDTO{
		HasAPIKey:         s.APIKey != "",
		Model:             s.Model,
		SourceLabel:       s.SourceLabel,
		TargetYear:        s.TargetYear,
		Tax:               s.Tax,
		ShowSystemColumns: s.ShowSystemColumns,
		DescriptionLength: s.DescriptionLength,
	}
}

// apply 現在の設定にリクエストの値を反映（APIキーは指定時のみ上書き）
func (d SettingsDTO) apply(current usecase.Settings) usecase.Settings {
	next := usecase.Settings{
		APIKey:            current.APIKey,
		Model:             d.Model,
		SourceLabel:       d.SourceLabel,
		TargetYear:        d.TargetYear,
		Tax:               d.Tax,
		ShowSystemColumns: d.ShowSystemColumns,
		DescriptionLength: d.DescriptionLength,
	}
	if d.APIKey != nil {
		next.APIKey = *d.APIKey
	}
	return next
}

// OptionsResponse 選択肢の一覧
type OptionsResponse struct {
	Sources         []string `json:"sources"`
	ExpenseAccounts []string `json:"expense_accounts"`
	IncomeAccounts  []string `json:"income_accounts"`
}

// OptionRequest 選択肢の追加・削除リクエスト
type OptionRequest struct {
	Value string `json:"value"`
}

// PromptDTO プロンプトのJSON表現
type PromptDTO struct {
	Template string `json:"template"`
	Rendered string `json:"rendered,omitempty"`
}

// ModeDTO モードの情報
type ModeDTO struct {
	Mode       string `json:"mode"`
	Label      string `json:"label"`
	SourceKind string `json:"source_kind,omitempty"`
	Active     bool   `json:"active"`
	Busy       bool   `json:"busy"`
	CanUndo    bool   `json:"can_undo"`
}

// SwitchModeRequest モード切り替えリクエスト
type SwitchModeRequest struct {
	Mode string `json:"mode"`
}

// JournalLearningResponse 仕訳日記帳からの学習結果
type JournalLearningResponse struct {
	TotalEntries int `json:"total_entries"`
	Added        int `json:"added"`
	Updated      int `json:"updated"`
	Skipped      int `json:"skipped"`
}
