// Package tui is the interactive study browser started by "studylog tui".
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/studylog/internal/analytics"
	"github.com/julianstephens/studylog/internal/cli"
	"github.com/julianstephens/studylog/internal/cli/mocktests"
	"github.com/julianstephens/studylog/internal/cli/practice"
	"github.com/julianstephens/studylog/internal/models"
	"github.com/julianstephens/studylog/internal/tui/components/stats"
	"github.com/julianstephens/studylog/internal/tui/components/tasklist"
)

type SessionState int

const (
	StatePractice SessionState = iota
	StatePlanner
	StateMocks
	StateConfirmDelete
)

const tabCount = 3

var tabTitles = []string{"Practice", "Planner", "Mock tests"}

type loadedMsg struct {
	logs  []models.PracticeLog
	tasks []models.PlannerTask
	mocks []models.MockTestResult
}

type errMsg struct{ err error }

// changedMsg follows a successful write and triggers a reload.
type changedMsg struct{ status string }

type Model struct {
	ctx            *cli.Context
	state          SessionState
	previousState  SessionState
	keys           KeyMap
	help           help.Model
	practice       stats.Model
	tasks          tasklist.Model
	mocks          stats.Model
	taskToDeleteID int64
	status         string
	err            error
	quitting       bool
	width          int
	height         int
}

func NewModel(ctx *cli.Context) Model {
	return Model{
		ctx:      ctx,
		state:    StatePractice,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		practice: stats.New("\n  No practice logs yet.", 0, 0),
		tasks:    tasklist.New(0, 0),
		mocks:    stats.New("\n  No mock tests yet.", 0, 0),
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StatePlanner:
		tk := tasklist.DefaultKeyMap()
		keys = append(keys, tk.Complete, tk.Delete)
	case StateConfirmDelete:
		keys = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Refresh}

	var actions []key.Binding
	if m.state == StatePlanner {
		tk := tasklist.DefaultKeyMap()
		actions = []key.Binding{tk.Complete, tk.Delete}
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return m.load
}

func (m Model) load() tea.Msg {
	logs, err := m.ctx.Practice.LoadAll(models.PracticeFilter{})
	if err != nil {
		return errMsg{err}
	}
	tasks, err := m.ctx.Planner.LoadAll(models.TaskFilter{})
	if err != nil {
		return errMsg{err}
	}
	mocks, err := m.ctx.Mocks.LoadAll(models.MockFilter{UserID: m.ctx.Mocks.Owner().UserID})
	if err != nil {
		return errMsg{err}
	}
	return loadedMsg{logs: logs, tasks: tasks, mocks: mocks}
}

func (m *Model) apply(msg loadedMsg) {
	if len(msg.logs) > 0 {
		m.practice.SetContent(m.render(func(c *cli.Context) { practice.PrintStats(c, msg.logs) }))
	} else {
		m.practice.SetContent("")
	}
	if len(msg.mocks) > 0 {
		scored := analytics.ScoreMockTests(msg.mocks)
		m.mocks.SetContent(m.render(func(c *cli.Context) { mocktests.PrintStats(c, scored) }))
	} else {
		m.mocks.SetContent("")
	}
	m.tasks.SetTasks(msg.tasks, m.ctx.Today())
}

// render captures what a CLI printer writes.
func (m Model) render(printer func(*cli.Context)) string {
	c := *m.ctx
	var b strings.Builder
	c.Out = &b
	printer(&c)
	return b.String()
}

func (m Model) completeTask(id int64) tea.Cmd {
	return func() tea.Msg {
		if err := m.ctx.Planner.SetStatus(id, models.StatusCompleted); err != nil {
			return errMsg{err}
		}
		return changedMsg{status: "Task marked completed"}
	}
}

func (m Model) deleteTask(id int64) tea.Cmd {
	return func() tea.Msg {
		if err := m.ctx.Planner.Delete(id); err != nil {
			return errMsg{err}
		}
		return changedMsg{status: "Task deleted"}
	}
}

func (m *Model) resize() {
	// tabs, status line and help
	h := m.height - 6
	if h < 0 {
		h = 0
	}
	w := m.width - 4
	if w < 0 {
		w = 0
	}
	m.practice.SetSize(w, h)
	m.tasks.SetSize(w, h)
	m.mocks.SetSize(w, h)
}
