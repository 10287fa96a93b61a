package usecase

import (
	"sync"

	"ledger-import-app/internal/modules/ledger/domain/entity"
)

// MaxHistory 保持する履歴の上限
const MaxHistory = 50

// History 取引一覧の取り消し履歴（新しい順）
type History struct {
	mu    sync.Mutex
	stack [][]*entity.Transaction
	limit int
}

// NewHistory 新しいHistoryを作成
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = MaxHistory
	}
	return &History{limit: limit}
}

// Push 変更前の状態を保存する
func (h *History) Push(state []*entity.Transaction) {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot := entity.CloneTransactions(state)
	h.stack = append([][]*entity.Transaction{snapshot}, h.stack...)
	if len(h.stack) > h.limit {
		h.stack = h.stack[:h.limit]
	}
}

// Undo 直前の状態を取り出す（履歴がなければfalse）
func (h *History) Undo() ([]*entity.Transaction, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.stack) == 0 {
		return nil, false
	}
	prev := h.stack[0]
	h.stack = h.stack[1:]
	return prev, true
}

// CanUndo 取り消せるかどうか
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stack) > 0
}

// Len 履歴の件数
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stack)
}

// Clear 履歴を消去
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stack = nil
}
