package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"

	"ledger-import-app/internal/modules/ledger/domain/entity"
	"ledger-import-app/internal/modules/ledger/domain/repository"
	"ledger-import-app/internal/modules/vision/domain"
	visionusecase "ledger-import-app/internal/modules/vision/usecase"
)

// MockRuleRepository メモリ上のルールリポジトリ
type MockRuleRepository struct {
	mu         sync.Mutex
	rules      []entity.Rule
	seq        int
	SaveFunc   func(rule *entity.Rule) error
	DeleteFunc func(id string) error
}

func (m *MockRuleRepository) GetRules(ctx context.Context, mode entity.Mode, kind *entity.Kind) ([]entity.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []entity.Rule
	for _, r := range m.rules {
		if r.Mode != mode {
			continue
		}
		if kind != nil && r.Kind() != kind.Normalize() {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *MockRuleRepository) SaveRule(ctx context.Context, rule *entity.Rule) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(rule); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.rules {
		if r.Mode == rule.Mode && r.Kind() == rule.Kind() && r.Keyword == rule.Keyword {
			rule.ID = r.ID
			m.rules[i] = *rule
			return nil
		}
	}
	m.seq++
	rule.ID = fmt.Sprintf("rule-%d", m.seq)
	m.rules = append(m.rules, *rule)
	return nil
}

func (m *MockRuleRepository) DeleteRule(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		if err := m.DeleteFunc(id); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.rules {
		if r.ID == id {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MockRuleRepository) find(keyword string) (entity.Rule, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rules {
		if r.Keyword == keyword {
			return r, true
		}
	}
	return entity.Rule{}, false
}

// MockTransactionRepository メモリ上の取引リポジトリ
type MockTransactionRepository struct {
	mu         sync.Mutex
	txs        []*entity.Transaction
	seq        int
	saves      int
	SaveFunc   func(tx *entity.Transaction) error
	DeleteFunc func(id string) error
}

func (m *MockTransactionRepository) GetTransactions(ctx context.Context, mode entity.Mode, sourceName string) ([]*entity.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*entity.Transaction
	for _, tx := range m.txs {
		if tx.SourceType != mode {
			continue
		}
		if sourceName != "" && tx.SourceName != sourceName {
			continue
		}
		out = append(out, tx.Clone())
	}
	return out, nil
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, tx *entity.Transaction) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(tx); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	if tx.ID != "" {
		for i, existing := range m.txs {
			if existing.ID == tx.ID {
				m.txs[i] = tx.Clone()
				return nil
			}
		}
	} else {
		m.seq++
		tx.ID = fmt.Sprintf("tx-%d", m.seq)
	}
	m.txs = append(m.txs, tx.Clone())
	return nil
}

func (m *MockTransactionRepository) DeleteTransaction(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		if err := m.DeleteFunc(id); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, tx := range m.txs {
		if tx.ID == id {
			m.txs = append(m.txs[:i], m.txs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MockTransactionRepository) get(id string) *entity.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range m.txs {
		if tx.ID == id {
			return tx.Clone()
		}
	}
	return nil
}

// MockExtractor モック抽出器
type MockExtractor struct {
	mu          sync.Mutex
	ExtractFunc func(ctx context.Context, prompt string, images []domain.Image) (*visionusecase.Extraction, error)
	calls       int
	lastPrompt  string
}

func (m *MockExtractor) Extract(ctx context.Context, prompt string, images []domain.Image) (*visionusecase.Extraction, error) {
	m.mu.Lock()
	m.calls++
	m.lastPrompt = prompt
	m.mu.Unlock()

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, prompt, images)
	}
	return &visionusecase.Extraction{}, nil
}

func (m *MockExtractor) factory() ExtractorFactory {
	return func(ctx context.Context, apiKey, model string) (Extractor, error) {
		return m, nil
	}
}

// MockNotifier 送信した変更を記録する
type MockNotifier struct {
	mu        sync.Mutex
	published []repository.Change
	handler   func(repository.Change)
}

func (m *MockNotifier) Publish(ctx context.Context, change repository.Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, change)
	return nil
}

func (m *MockNotifier) Subscribe(ctx context.Context, handler func(repository.Change)) (io.Closer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
	return closerFunc(func() error { return nil }), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
