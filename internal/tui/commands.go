package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/roam/internal/api"
	"github.com/tessro/roam/internal/controller"
)

// tickCmd returns a command that sends a tick message after a delay.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForChangeCmd waits for the next controller change notification.
func waitForChangeCmd(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return changeMsg{}
	}
}

// clearErrorCmd returns a command that clears the error after a delay.
func clearErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
		return clearErrorMsg{}
	})
}

// setError sets an error to display and returns a command to clear it after a timeout.
func (m *Model) setError(err error) tea.Cmd {
	m.err = err
	m.helpBar.SetError(err.Error())
	return clearErrorCmd()
}

// waitForChange waits for the next controller change.
func (m Model) waitForChange() tea.Cmd {
	return waitForChangeCmd(m.changes)
}

// start loads history and document lists.
func (m Model) start() tea.Cmd {
	return func() tea.Msg {
		return startMsg{Err: m.ctrl.Start(m.ctx)}
	}
}

// send posts a message to the assistant.
func (m Model) send(text string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.ctrl.Send(m.ctx, text)
		return sendResultMsg{Err: err}
	}
}

// refresh re-fetches every document list.
func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		return opResultMsg{Op: "refresh", Err: m.ctrl.Refresh(m.ctx).Err()}
	}
}

// clearHistory deletes the conversation.
func (m Model) clearHistory() tea.Cmd {
	return func() tea.Msg {
		return opResultMsg{Op: "clear history", Err: m.ctrl.ClearHistory(m.ctx)}
	}
}

// showPanel reveals the document panel.
func (m Model) showPanel() tea.Cmd {
	return func() tea.Msg {
		m.ctrl.ShowPanel(m.ctx)
		return opResultMsg{Op: "show panel"}
	}
}

// changeTab switches the document list tab.
func (m Model) changeTab(tab api.Kind) tea.Cmd {
	return func() tea.Msg {
		m.ctrl.ChangeTab(m.ctx, tab)
		return opResultMsg{Op: "change tab"}
	}
}

// selectDocument opens a document from the list.
func (m Model) selectDocument(kind api.Kind, filename string) tea.Cmd {
	return func() tea.Msg {
		return opResultMsg{Op: "open " + kind.Noun(), Err: m.ctrl.SelectDocument(m.ctx, kind, filename)}
	}
}

// toggleTodoItem flips an item in the open todo list.
func (m Model) toggleTodoItem(item api.TodoItem) tea.Cmd {
	return func() tea.Msg {
		return opResultMsg{Op: "update item", Err: m.ctrl.ToggleTodoItem(m.ctx, item.ID, !item.Completed)}
	}
}

// deleteDocument deletes a document the user already confirmed.
func (m Model) deleteDocument(kind api.Kind, filename string) tea.Cmd {
	return func() tea.Msg {
		err := m.ctrl.DeleteDocument(m.ctx, kind, filename, controller.AlwaysConfirm)
		return deleteResultMsg{Kind: kind, Filename: filename, Err: err}
	}
}

// saveInputHistory appends a sent message to the history file.
func (m Model) saveInputHistory(text string) tea.Cmd {
	path := m.historyPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		if err := appendInputHistory(path, text); err != nil {
			return opResultMsg{Op: "save input history", Err: err}
		}
		return nil
	}
}

// quietErr reports errors the user does not need to see in the status bar.
func quietErr(err error) bool {
	return errors.Is(err, controller.ErrEmptyMessage) || errors.Is(err, controller.ErrDeclined)
}
