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

// Flows screen message types.
type snapshotMsg struct{ snapshot *domain.SignalSnapshot }
type snapshotErrMsg struct{ err error }
type flowsTickMsg time.Time

// FlowsModel is the Bubble Tea model for the investor flows screen.
type FlowsModel struct {
	services  Services
	marketIdx int
	snapshot  *domain.SignalSnapshot
	loading   bool
	err       error
	width     int
	height    int
}

// NewFlowsModel creates a new flows model.
func NewFlowsModel(svc Services) FlowsModel {
	return FlowsModel{
		services: svc,
		loading:  true,
	}
}

// Init fires the initial snapshot fetch.
func (m FlowsModel) Init() tea.Cmd {
	return tea.Batch(m.fetchSnapshotCmd(), m.tickCmd())
}

// Update handles incoming messages.
func (m FlowsModel) Update(msg tea.Msg) (FlowsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snapshot = msg.snapshot
		m.loading = false
		m.err = nil
		return m, nil

	case snapshotErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case flowsTickMsg:
		return m, tea.Batch(m.fetchSnapshotCmd(), m.tickCmd())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Market):
			m.marketIdx = (m.marketIdx + 1) % m.services.MarketCount()
			m.loading = true
			return m, m.fetchSnapshotCmd()

		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, m.fetchSnapshotCmd()
		}
	}

	return m, nil
}

// View renders the flows screen.
func (m FlowsModel) View() string {
	market := m.services.MarketAt(m.marketIdx)

	if m.loading && m.snapshot == nil {
		return SubtextStyle.Render(fmt.Sprintf("Loading %s flows...", market))
	}
	if m.err != nil && m.snapshot == nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	flowBox := BorderStyle.Width(m.boxWidth()).Render(m.renderFlows(market))
	contextBox := BorderStyle.Width(m.boxWidth()).Render(m.renderSignalContext())
	help := SubtextStyle.Render("  [m] cycle market  [R] refresh")

	return lipgloss.JoinVertical(lipgloss.Left, flowBox, contextBox, help)
}

// SetSize updates the model dimensions.
func (m *FlowsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Snapshot returns the current snapshot (for testing).
func (m FlowsModel) Snapshot() *domain.SignalSnapshot { return m.snapshot }

func (m FlowsModel) renderFlows(market string) string {
	var lines []string
	lines = append(lines, HeaderStyle.Render(fmt.Sprintf("  %s investor flows (M THB)", market)))

	if m.snapshot == nil || m.snapshot.SmartMoney == nil {
		lines = append(lines, SubtextStyle.Render("  No flow data available"))
		return strings.Join(lines, "\n")
	}

	maxAbs := 0.0
	for _, class := range domain.InvestorClasses {
		if flow, ok := m.snapshot.SmartMoney.Investor(class); ok {
			net := flow.TodayNet
			if net < 0 {
				net = -net
			}
			if net > maxAbs {
				maxAbs = net
			}
		}
	}

	for _, class := range domain.InvestorClasses {
		flow, ok := m.snapshot.SmartMoney.Investor(class)
		if !ok {
			lines = append(lines, SubtextStyle.Render(fmt.Sprintf("  %-12s missing", investorLabel(class))))
			continue
		}
		lines = append(lines, "  "+FormatFlow(class, flow)+"  "+RenderFlowBar(flow.TodayNet, maxAbs, 20))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("  Smart money score %.0f (%s)", m.snapshot.SmartMoney.Score, m.snapshot.SmartMoney.CombinedSignal))

	return strings.Join(lines, "\n")
}

func (m FlowsModel) renderSignalContext() string {
	var lines []string
	lines = append(lines, HeaderStyle.Render("  Signal context"))

	if m.snapshot == nil {
		lines = append(lines, SubtextStyle.Render("  No snapshot yet"))
		return strings.Join(lines, "\n")
	}

	if regime := m.snapshot.Regime; regime != nil {
		lines = append(lines, fmt.Sprintf("  Regime: %s (%.0f%% confidence)", regime.Type, regime.Confidence))
	} else {
		lines = append(lines, SubtextStyle.Render("  Regime: unavailable"))
	}

	if sector := m.snapshot.Sector; sector != nil {
		lines = append(lines, fmt.Sprintf("  Rotation: %s, concentration %.0f%%", sector.Pattern, sector.Concentration))
		if len(sector.Leadership.Leaders) > 0 {
			names := make([]string, 0, len(sector.Leadership.Leaders))
			for _, leader := range sector.Leadership.Leaders {
				names = append(names, leader.Sector.Name)
			}
			lines = append(lines, SubtextStyle.Render("  Leaders: "+strings.Join(names, ", ")))
		}
	} else {
		lines = append(lines, SubtextStyle.Render("  Rotation: unavailable"))
	}

	lines = append(lines, SubtextStyle.Render("  Captured "+m.snapshot.CapturedAt.UTC().Format(time.RFC822)))

	return strings.Join(lines, "\n")
}

func (m FlowsModel) boxWidth() int {
	w := m.width - 2
	if w < 60 {
		w = 60
	}
	return w
}

func (m FlowsModel) fetchSnapshotCmd() tea.Cmd {
	market := m.services.MarketAt(m.marketIdx)
	return func() tea.Msg {
		if m.services.Snapshots == nil {
			return snapshotErrMsg{err: fmt.Errorf("snapshot store not available")}
		}
		snapshot, err := m.services.Snapshots.GetLatestSnapshot(context.Background(), market)
		if err != nil {
			return snapshotErrMsg{err: err}
		}
		return snapshotMsg{snapshot: snapshot}
	}
}

func (m FlowsModel) tickCmd() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg {
		return flowsTickMsg(t)
	})
}
