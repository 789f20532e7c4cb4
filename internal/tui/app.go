package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Tab represents a screen tab in the TUI.
type Tab int

const (
	TabVerdict Tab = iota
	TabConflicts
	TabFlows
)

var tabNames = []string{"1:Verdict", "2:Conflicts", "3:Flows"}

// AppModel is the root Bubble Tea model that manages tab navigation and child screens.
type AppModel struct {
	services  Services
	activeTab Tab
	verdict   VerdictModel
	conflicts ConflictsModel
	flows     FlowsModel
	width     int
	height    int
	quitting  bool
}

// NewAppModel creates the root application model with all child screens.
func NewAppModel(svc Services) AppModel {
	return AppModel{
		services:  svc,
		activeTab: TabVerdict,
		verdict:   NewVerdictModel(svc),
		conflicts: NewConflictsModel(svc),
		flows:     NewFlowsModel(svc),
	}
}

// Init initializes all child models.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.verdict.Init(),
		m.conflicts.Init(),
		m.flows.Init(),
	)
}

// Update handles incoming messages, routing to the active tab.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.propagateSize()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, DefaultKeyMap.Tab):
			m.activeTab = Tab((int(m.activeTab) + 1) % len(tabNames))
			return m, nil

		case key.Matches(msg, DefaultKeyMap.ShiftTab):
			next := int(m.activeTab) - 1
			if next < 0 {
				next = len(tabNames) - 1
			}
			m.activeTab = Tab(next)
			return m, nil

		case msg.String() == "1":
			m.activeTab = TabVerdict
			return m, nil
		case msg.String() == "2":
			m.activeTab = TabConflicts
			return m, nil
		case msg.String() == "3":
			m.activeTab = TabFlows
			return m, nil
		}
	}

	// Route messages to all child models (they filter relevant ones)
	var cmds []tea.Cmd

	switch msg.(type) {
	case insightMsg, insightErrMsg, historyMsg, historyErrMsg, verdictTickMsg:
		var cmd tea.Cmd
		m.verdict, cmd = m.verdict.Update(msg)
		cmds = append(cmds, cmd)

	case conflictsMsg, conflictsErrMsg, conflictsTickMsg:
		var cmd tea.Cmd
		m.conflicts, cmd = m.conflicts.Update(msg)
		cmds = append(cmds, cmd)

	case snapshotMsg, snapshotErrMsg, flowsTickMsg:
		var cmd tea.Cmd
		m.flows, cmd = m.flows.Update(msg)
		cmds = append(cmds, cmd)

	default:
		// Route keyboard and other messages to active tab only
		switch m.activeTab {
		case TabVerdict:
			var cmd tea.Cmd
			m.verdict, cmd = m.verdict.Update(msg)
			cmds = append(cmds, cmd)
		case TabConflicts:
			var cmd tea.Cmd
			m.conflicts, cmd = m.conflicts.Update(msg)
			cmds = append(cmds, cmd)
		case TabFlows:
			var cmd tea.Cmd
			m.flows, cmd = m.flows.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// View renders the tab bar and active screen.
func (m AppModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	tabBar := m.renderTabBar()

	var content string
	switch m.activeTab {
	case TabVerdict:
		content = m.verdict.View()
	case TabConflicts:
		content = m.conflicts.View()
	case TabFlows:
		content = m.flows.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content)
}

// SetSize updates dimensions on the root model and propagates to children.
func (m *AppModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.propagateSize()
}

// ActiveTab returns the currently active tab (for testing).
func (m AppModel) ActiveTab() Tab { return m.activeTab }

func (m *AppModel) propagateSize() {
	contentHeight := m.height - 2 // account for tab bar
	m.verdict.SetSize(m.width, contentHeight)
	m.conflicts.SetSize(m.width, contentHeight)
	m.flows.SetSize(m.width, contentHeight)
}

func (m AppModel) renderTabBar() string {
	var tabs []string
	for i, name := range tabNames {
		if Tab(i) == m.activeTab {
			tabs = append(tabs, ActiveTabStyle.Render(name))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
