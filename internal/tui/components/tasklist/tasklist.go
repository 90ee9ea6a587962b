package tasklist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/studylog/internal/analytics"
	"github.com/julianstephens/studylog/internal/models"
)

type CompleteTaskMsg struct {
	ID int64
}

type DeleteTaskMsg struct {
	ID int64
}

type Item struct {
	Task    models.PlannerTask
	Overdue bool
}

func (i Item) Title() string {
	if i.Overdue {
		return "! " + i.Task.Topic
	}
	return i.Task.Topic
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%s | due %s | %s | %s", i.Task.Subject, i.Task.DueDate, i.Task.Priority, i.Task.Status)
	if i.Overdue {
		desc += " | overdue"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Task.Subject + " " + i.Task.Topic }

type KeyMap struct {
	Complete key.Binding
	Delete   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "complete"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Tasks"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // help is rendered by the parent model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Complete, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Complete, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

// SetTasks replaces the items, flagging tasks overdue as of today.
func (m *Model) SetTasks(tasks []models.PlannerTask, today string) {
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = Item{Task: t, Overdue: analytics.IsOverdue(t, today)}
	}
	m.list.SetItems(items)
}

func (m Model) Len() int { return len(m.list.Items()) }

// Filtering reports whether the user is typing a filter, when single-key
// shortcuts must not fire.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Complete):
			if i, ok := m.list.SelectedItem().(Item); ok && !i.Task.Status.IsTerminal() {
				return m, func() tea.Msg { return CompleteTaskMsg{ID: i.Task.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteTaskMsg{ID: i.Task.ID} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No tasks yet.\n  Add one with 'studylog task add'."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
