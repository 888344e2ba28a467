package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-finance-sync/internal/app"
	"github.com/MKhiriev/go-finance-sync/internal/service"
	"github.com/MKhiriev/go-finance-sync/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type badgeModel struct {
	ctx    context.Context
	engine service.SyncEngine
	states <-chan models.SyncState

	spinner spinner.Model
	state   models.SyncState
	// running is set while a pass started from the keyboard is in flight
	running bool
	status  string
	errMsg  string
}

func newBadgeModel(ctx context.Context, engine service.SyncEngine, states <-chan models.SyncState) badgeModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot

	return badgeModel{
		ctx:     ctx,
		engine:  engine,
		states:  states,
		spinner: s,
		state:   models.SyncState{Status: models.StatusOffline},
	}
}

func (m badgeModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.cmdWaitForState())
}

func (m badgeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = models.SyncState(msg)
		return m, m.cmdWaitForState()

	case syncDoneMsg:
		m.running = false
		if msg.err != nil {
			m.errMsg = humanizeSyncError(msg.err)
			m.status = ""
			return m, nil
		}
		m.errMsg = ""
		m.status = describeDrain(msg.result)
		return m, nil

	case queueClearedMsg:
		if msg.err != nil {
			m.errMsg = humanizeSyncError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = fmt.Sprintf("%s (%d)", app.MsgQueueCleared, msg.deleted)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.quit):
			return m, tea.Quit
		case key.Matches(msg, keys.sync):
			if m.running {
				return m, nil
			}
			m.running = true
			m.status = ""
			return m, m.cmdSyncNow()
		case key.Matches(msg, keys.clear):
			return m, m.cmdClearQueue()
		}
	}

	return m, nil
}

func (m badgeModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("finsync"))
	b.WriteString("  ")
	switch {
	case m.state.Status == models.StatusOffline:
		b.WriteString("offline")
	case m.state.IsSyncing || m.running:
		b.WriteString(m.spinner.View() + " Syncing...")
	default:
		b.WriteString(onlineStyle.Render("online"))
	}
	b.WriteString("\n\n")

	if m.state.Status == models.StatusOffline {
		b.WriteString(offlineStyle.Render(app.MsgOffline))
		b.WriteString("\n")
	}
	if m.state.AuthRequired {
		b.WriteString(alertStyle.Render(app.MsgReloginRequired))
		b.WriteString("\n")
	}

	b.WriteString(pendingStyle.Render(fmt.Sprintf("%d pending", m.state.PendingCount)))
	if m.state.FailedCount > 0 {
		b.WriteString(" ")
		b.WriteString(failedStyle.Render(fmt.Sprintf("%d failed", m.state.FailedCount)))
	}
	b.WriteString("\n")

	if m.state.LastSyncTime != nil {
		b.WriteString("Last sync: " + m.state.LastSyncTime.Local().Format("2006-01-02 15:04:05"))
	} else {
		b.WriteString("Last sync: never")
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errMsg) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("s sync now • c clear queue • q quit"))

	return appStyle.Render(b.String())
}

func (m badgeModel) cmdWaitForState() tea.Cmd {
	ctx, states := m.ctx, m.states
	return func() tea.Msg {
		select {
		case state := <-states:
			return stateMsg(state)
		case <-ctx.Done():
			return nil
		}
	}
}

func (m badgeModel) cmdSyncNow() tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		result, err := engine.ForceSyncNow(ctx)
		return syncDoneMsg{result: result, err: err}
	}
}

func (m badgeModel) cmdClearQueue() tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		deleted, err := engine.ClearAllQueued(ctx)
		return queueClearedMsg{deleted: deleted, err: err}
	}
}

func describeDrain(r models.DrainResult) string {
	if r.Skipped {
		return "Sync skipped: offline or already running"
	}
	s := fmt.Sprintf("Synced %d", r.Synced)
	if r.Retried > 0 {
		s += fmt.Sprintf(", %d will retry", r.Retried)
	}
	if r.Exhausted > 0 {
		s += fmt.Sprintf(", %d failed", r.Exhausted)
	}
	return s
}
