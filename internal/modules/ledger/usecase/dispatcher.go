package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"

	"ledger-import-app/internal/logger"
	"ledger-import-app/internal/modules/ledger/domain/entity"
	"ledger-import-app/internal/modules/ledger/domain/repository"
)

// ModeDispatcher モードごとのセッションを保持し、選択中のモードを切り替える
type ModeDispatcher struct {
	mu       sync.RWMutex
	sessions map[entity.Mode]*LedgerUseCase
	active   entity.Mode
}

// NewModeDispatcher 新しいModeDispatcherを作成
func NewModeDispatcher(active entity.Mode, sessions ...*LedgerUseCase) (*ModeDispatcher, error) {
	d := &ModeDispatcher{sessions: make(map[entity.Mode]*LedgerUseCase, len(sessions))}
	for _, s := range sessions {
		d.sessions[s.Mode()] = s
	}
	if _, ok := d.sessions[active]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, active)
	}
	d.active = active
	return d, nil
}

// Get モードのセッションを取得
func (d *ModeDispatcher) Get(mode entity.Mode) (*LedgerUseCase, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, ok := d.sessions[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
	return s, nil
}

// Active 選択中のセッション
func (d *ModeDispatcher) Active() *LedgerUseCase {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sessions[d.active]
}

// ActiveMode 選択中のモード
func (d *ModeDispatcher) ActiveMode() entity.Mode {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.active
}

// Switch 選択中のモードを切り替える（他のモードの状態には触れない）
func (d *ModeDispatcher) Switch(mode entity.Mode) (*LedgerUseCase, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.sessions[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
	d.active = mode
	return s, nil
}

// Sessions 全セッション（entity.Modes の順）
func (d *ModeDispatcher) Sessions() []*LedgerUseCase {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*LedgerUseCase, 0, len(d.sessions))
	for _, m := range entity.Modes {
		if s, ok := d.sessions[m]; ok {
			out = append(out, s)
		}
	}
	return out
}

// LoadAll 全セッションを読み込む
func (d *ModeDispatcher) LoadAll(ctx context.Context) error {
	for _, s := range d.Sessions() {
		if err := s.Load(ctx); err != nil {
			return fmt.Errorf("failed to load %s session: %w", s.Mode(), err)
		}
	}
	return nil
}

// StartSync 変更通知を購読し、該当モードのセッションを再読み込みする
func (d *ModeDispatcher) StartSync(ctx context.Context, notifier repository.ChangeNotifier) (io.Closer, error) {
	log := logger.FromContext(ctx)

	closer, err := notifier.Subscribe(ctx, func(change repository.Change) {
		s, err := d.Get(change.Mode)
		if err != nil {
			log.Warn().Str("mode", string(change.Mode)).Msg("change for unknown mode ignored")
			return
		}
		if err := s.HandleChange(ctx, change); err != nil {
			log.Error().Err(err).Str("mode", string(change.Mode)).Msg("failed to reload session")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe changes: %w", err)
	}
	return closer, nil
}
