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

// Verdict screen message types.
type insightMsg struct{ record *domain.InsightRecord }
type insightErrMsg struct{ err error }
type historyMsg []domain.InsightRecord
type historyErrMsg struct{ err error }
type verdictTickMsg time.Time

// VerdictModel is the Bubble Tea model for the verdict screen.
type VerdictModel struct {
	services  Services
	marketIdx int
	record    *domain.InsightRecord
	history   []domain.InsightRecord
	loading   bool
	err       error
	width     int
	height    int
}

// NewVerdictModel creates a new verdict model.
func NewVerdictModel(svc Services) VerdictModel {
	return VerdictModel{
		services: svc,
		loading:  true,
	}
}

// Init fires initial data fetch commands.
func (m VerdictModel) Init() tea.Cmd {
	return tea.Batch(
		m.fetchInsightCmd(),
		m.fetchHistoryCmd(),
		m.tickCmd(),
	)
}

// Update handles incoming messages.
func (m VerdictModel) Update(msg tea.Msg) (VerdictModel, tea.Cmd) {
	switch msg := msg.(type) {
	case insightMsg:
		m.record = msg.record
		m.loading = false
		m.err = nil
		return m, nil

	case insightErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case historyMsg:
		m.history = []domain.InsightRecord(msg)
		return m, nil

	case historyErrMsg:
		// Non-critical; the latest verdict matters more.
		return m, nil

	case verdictTickMsg:
		return m, tea.Batch(
			m.fetchInsightCmd(),
			m.fetchHistoryCmd(),
			m.tickCmd(),
		)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Market):
			m.marketIdx = (m.marketIdx + 1) % m.services.MarketCount()
			m.loading = true
			return m, tea.Batch(m.fetchInsightCmd(), m.fetchHistoryCmd())

		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, tea.Batch(m.fetchInsightCmd(), m.fetchHistoryCmd())
		}
	}

	return m, nil
}

// View renders the verdict screen.
func (m VerdictModel) View() string {
	market := m.services.MarketAt(m.marketIdx)

	if m.loading && m.record == nil {
		return SubtextStyle.Render(fmt.Sprintf("Loading %s verdict...", market))
	}
	if m.err != nil && m.record == nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	card := BorderStyle.Width(m.cardWidth()).Render(m.renderCard(market))
	historyBox := BorderStyle.Width(m.cardWidth()).Render(m.renderHistory())
	help := SubtextStyle.Render("  [m] cycle market  [R] refresh")

	return lipgloss.JoinVertical(lipgloss.Left, card, historyBox, help)
}

// SetSize updates the model dimensions.
func (m *VerdictModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Record returns the current insight record (for testing).
func (m VerdictModel) Record() *domain.InsightRecord { return m.record }

// Market returns the currently selected market (for testing).
func (m VerdictModel) Market() string { return m.services.MarketAt(m.marketIdx) }

func (m VerdictModel) renderCard(market string) string {
	if m.record == nil {
		return SubtextStyle.Render(fmt.Sprintf("  No verdict for %s yet", market))
	}

	in := m.record.Insight
	var lines []string
	lines = append(lines, HeaderStyle.Render(fmt.Sprintf("  %s", market))+"  "+FormatVerdict(in.Verdict))
	lines = append(lines, fmt.Sprintf("  Confidence %3.0f%%  %s conviction  driver: %s", in.Confidence, in.Conviction, in.PrimaryDriver))

	if in.KeyConflictAlert != "" {
		lines = append(lines, AlertStyle.Render("  ! "+in.KeyConflictAlert))
	}
	if in.Explanation != "" {
		lines = append(lines, SubtextStyle.Render(wrapIndented(in.Explanation, m.cardWidth()-4)))
	}
	if in.ActionableTakeaway != "" {
		lines = append(lines, "  "+in.ActionableTakeaway)
	}
	lines = append(lines, SubtextStyle.Render("  As of "+m.record.CreatedAt.UTC().Format(time.RFC822)))

	return strings.Join(lines, "\n")
}

func (m VerdictModel) renderHistory() string {
	var lines []string
	lines = append(lines, HeaderStyle.Render("  Recent verdicts"))

	count := len(m.history)
	if count > 8 {
		count = 8
	}
	for i := 0; i < count; i++ {
		lines = append(lines, "  "+FormatInsightLine(m.history[i]))
	}
	if len(m.history) == 0 {
		lines = append(lines, SubtextStyle.Render("  No stored verdicts"))
	}

	return strings.Join(lines, "\n")
}

func (m VerdictModel) cardWidth() int {
	w := m.width - 2
	if w < 60 {
		w = 60
	}
	return w
}

func (m VerdictModel) fetchInsightCmd() tea.Cmd {
	market := m.services.MarketAt(m.marketIdx)
	return func() tea.Msg {
		if m.services.Insights == nil {
			return insightErrMsg{err: fmt.Errorf("insight service not available")}
		}
		record, err := m.services.Insights.LatestInsight(context.Background(), market)
		if err != nil {
			return insightErrMsg{err: err}
		}
		return insightMsg{record: record}
	}
}

func (m VerdictModel) fetchHistoryCmd() tea.Cmd {
	market := m.services.MarketAt(m.marketIdx)
	return func() tea.Msg {
		if m.services.Insights == nil {
			return historyErrMsg{err: fmt.Errorf("insight service not available")}
		}
		records, err := m.services.Insights.ListInsights(context.Background(), domain.InsightFilter{Market: market, Limit: 8})
		if err != nil {
			return historyErrMsg{err: err}
		}
		return historyMsg(records)
	}
}

func (m VerdictModel) tickCmd() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg {
		return verdictTickMsg(t)
	})
}

// wrapIndented wraps text at the given width with a two space indent.
func wrapIndented(text string, width int) string {
	if width < 20 {
		width = 20
	}

	words := strings.Fields(text)
	var lines []string
	var line strings.Builder
	for _, word := range words {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			lines = append(lines, "  "+line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, "  "+line.String())
	}
	return strings.Join(lines, "\n")
}
