package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/studylog/internal/tui/components/tasklist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case loadedMsg:
		m.err = nil
		m.apply(msg)
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case changedMsg:
		m.status = msg.status
		return m, m.load

	case tasklist.CompleteTaskMsg:
		return m, m.completeTask(msg.ID)

	case tasklist.DeleteTaskMsg:
		m.taskToDeleteID = msg.ID
		m.previousState = m.state
		m.state = StateConfirmDelete
		return m, nil

	case tea.KeyMsg:
		if m.state == StateConfirmDelete {
			return m.updateConfirmDelete(msg)
		}
		if m.state == StatePlanner && m.tasks.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.status = ""
			m.ctx.Store.InvalidateAll()
			return m, m.load
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StatePractice:
		m.practice, cmd = m.practice.Update(msg)
	case StatePlanner:
		m.tasks, cmd = m.tasks.Update(msg)
	case StateMocks:
		m.mocks, cmd = m.mocks.Update(msg)
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.state = m.previousState
		id := m.taskToDeleteID
		m.taskToDeleteID = 0
		return m, m.deleteTask(id)
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.state = m.previousState
		m.taskToDeleteID = 0
	}
	return m, nil
}
