package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

// Conflicts screen message types.
type conflictsMsg struct{ detection *domain.ConflictDetectionResult }
type conflictsErrMsg struct{ err error }
type conflictsTickMsg time.Time

// ConflictsModel is the Bubble Tea model for the conflicts screen.
type ConflictsModel struct {
	services  Services
	marketIdx int
	detection *domain.ConflictDetectionResult
	loading   bool
	err       error
	width     int
	height    int
}

// NewConflictsModel creates a new conflicts model.
func NewConflictsModel(svc Services) ConflictsModel {
	return ConflictsModel{
		services: svc,
		loading:  true,
	}
}

// Init fires the initial conflicts fetch.
func (m ConflictsModel) Init() tea.Cmd {
	return tea.Batch(m.fetchConflictsCmd(), m.tickCmd())
}

// Update handles incoming messages.
func (m ConflictsModel) Update(msg tea.Msg) (ConflictsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case conflictsMsg:
		m.detection = msg.detection
		m.loading = false
		m.err = nil
		return m, nil

	case conflictsErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case conflictsTickMsg:
		return m, tea.Batch(m.fetchConflictsCmd(), m.tickCmd())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Market):
			m.marketIdx = (m.marketIdx + 1) % m.services.MarketCount()
			m.loading = true
			return m, m.fetchConflictsCmd()

		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, m.fetchConflictsCmd()
		}
	}

	return m, nil
}

// View renders the conflicts screen.
func (m ConflictsModel) View() string {
	market := m.services.MarketAt(m.marketIdx)

	if m.loading && m.detection == nil {
		return SubtextStyle.Render(fmt.Sprintf("Loading %s conflicts...", market))
	}
	if m.err != nil && m.detection == nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	box := BorderStyle.Width(m.boxWidth()).Render(m.renderConflicts(market))
	help := SubtextStyle.Render("  [m] cycle market  [R] refresh")
	return lipgloss.JoinVertical(lipgloss.Left, box, help)
}

// SetSize updates the model dimensions.
func (m *ConflictsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Detection returns the current detection result (for testing).
func (m ConflictsModel) Detection() *domain.ConflictDetectionResult { return m.detection }

func (m ConflictsModel) renderConflicts(market string) string {
	var lines []string

	if m.detection == nil {
		lines = append(lines, HeaderStyle.Render(fmt.Sprintf("  %s conflicts", market)))
		lines = append(lines, SubtextStyle.Render("  No analysis yet"))
		return strings.Join(lines, "\n")
	}

	level := strings.ToUpper(string(m.detection.ConflictLevel))
	lines = append(lines, HeaderStyle.Render(fmt.Sprintf("  %s conflicts", market))+SubtextStyle.Render("  level "+level))

	if len(m.detection.Conflicts) == 0 {
		lines = append(lines, FlowInStyle.Render("  Signals agree, no conflicts detected"))
		return strings.Join(lines, "\n")
	}

	for _, c := range m.detection.Conflicts {
		lines = append(lines, "  "+FormatConflict(c))
		if detail := conflictDetailLine(c); detail != "" {
			lines = append(lines, SubtextStyle.Render("      "+detail))
		}
	}

	if m.detection.HasCriticalConflict {
		lines = append(lines, "")
		lines = append(lines, AlertStyle.Render("  ! Critical conflict, automation should hold"))
	}

	return strings.Join(lines, "\n")
}

// conflictDetailLine summarizes the structured payload behind a conflict.
func conflictDetailLine(c domain.Conflict) string {
	d := c.Detail
	var parts []string

	if d.RegimeType != "" {
		parts = append(parts, fmt.Sprintf("regime %s", d.RegimeType))
	}
	if d.RegimeConfidence != nil {
		parts = append(parts, fmt.Sprintf("regime conf %.0f%%", *d.RegimeConfidence))
	}
	if d.SmartMoneyScore != nil {
		parts = append(parts, fmt.Sprintf("smart money %.0f", *d.SmartMoneyScore))
	}
	if d.ForeignNet != nil {
		parts = append(parts, fmt.Sprintf("foreign %s THB", formatMillions(*d.ForeignNet)))
	}
	if d.DomesticNet != nil {
		parts = append(parts, fmt.Sprintf("domestic %s THB", formatMillions(*d.DomesticNet)))
	}
	if d.PropShare != nil {
		parts = append(parts, fmt.Sprintf("prop share %.0f%%", *d.PropShare*100))
	}
	if len(d.Sectors) > 0 {
		parts = append(parts, "sectors "+strings.Join(d.Sectors, ", "))
	}

	return strings.Join(parts, "  ")
}

func (m ConflictsModel) boxWidth() int {
	w := m.width - 2
	if w < 60 {
		w = 60
	}
	return w
}

func (m ConflictsModel) fetchConflictsCmd() tea.Cmd {
	market := m.services.MarketAt(m.marketIdx)
	return func() tea.Msg {
		if m.services.Insights == nil {
			return conflictsErrMsg{err: fmt.Errorf("insight service not available")}
		}
		detection, err := m.services.Insights.LatestConflicts(context.Background(), market)
		if err != nil {
			return conflictsErrMsg{err: err}
		}
		return conflictsMsg{detection: detection}
	}
}

func (m ConflictsModel) tickCmd() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg {
		return conflictsTickMsg(t)
	})
}
