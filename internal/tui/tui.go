package tui

import (
	"context"

	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/service"
	"github.com/MKhiriev/go-finance-sync/models"
	tea "github.com/charmbracelet/bubbletea"
)

// TUI is the terminal status badge of the sync agent.
type TUI struct {
	engine service.SyncEngine
	logger *logger.Logger
}

func New(engine service.SyncEngine, logger *logger.Logger) *TUI {
	return &TUI{engine: engine, logger: logger}
}

// Run shows the badge and blocks until the user quits or ctx is cancelled.
func (t *TUI) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	states := make(chan models.SyncState, 1)
	unsubscribe := t.engine.Subscribe(func(state models.SyncState) {
		pushLatest(states, state)
	})
	defer unsubscribe()

	_, err := tea.NewProgram(newBadgeModel(ctx, t.engine, states), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		// cancelled from outside; not a UI failure
		return nil
	}
	if err != nil {
		t.logger.Err(err).Str("func", "*TUI.Run").Msg("status badge failed")
	}
	return err
}

// pushLatest replaces a value nobody has read yet. Subscriber callbacks run
// under the broadcaster lock and must not block.
func pushLatest(ch chan models.SyncState, state models.SyncState) {
	for {
		select {
		case ch <- state:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
