package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

func TestVerdictUpdateInsightMsg(t *testing.T) {
	m := NewVerdictModel(testServices())
	m.SetSize(120, 40)

	updated, _ := m.Update(insightMsg{record: testRecord()})
	if updated.Record() == nil {
		t.Fatal("expected record to be stored")
	}
	if updated.loading {
		t.Fatal("expected loading to clear")
	}
}

func TestVerdictViewWithData(t *testing.T) {
	m := NewVerdictModel(testServices())
	m.SetSize(120, 40)
	m.record = testRecord()
	m.loading = false

	view := m.View()
	for _, want := range []string{"CAUTION", "48%", "Foreign Flow", "Reduce exposure"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestVerdictViewEmpty(t *testing.T) {
	m := NewVerdictModel(testServices())
	m.SetSize(120, 40)
	m.loading = false

	view := m.View()
	if !strings.Contains(view, "No verdict for SET yet") {
		t.Fatalf("expected empty state message:\n%s", view)
	}
}

func TestVerdictMarketCycling(t *testing.T) {
	m := NewVerdictModel(testServices())
	m.SetSize(120, 40)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	if updated.Market() != "SET50" {
		t.Fatalf("expected SET50 after one cycle, got %s", updated.Market())
	}
	if cmd == nil {
		t.Fatal("market cycle must trigger a refetch")
	}

	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	if updated.Market() != "SET" {
		t.Fatalf("expected wrap back to SET, got %s", updated.Market())
	}
}

func TestVerdictHistoryMsg(t *testing.T) {
	m := NewVerdictModel(testServices())
	m.SetSize(120, 40)
	m.loading = false

	updated, _ := m.Update(historyMsg([]domain.InsightRecord{*testRecord()}))
	if len(updated.history) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(updated.history))
	}

	view := updated.View()
	if !strings.Contains(view, "Recent verdicts") {
		t.Fatalf("expected history section:\n%s", view)
	}
}
