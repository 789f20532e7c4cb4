package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

// FormatVerdict renders a verdict word in its signature color.
func FormatVerdict(v domain.Verdict) string {
	return verdictStyle(v).Render(string(v))
}

func verdictStyle(v domain.Verdict) lipgloss.Style {
	switch v {
	case domain.VerdictProceed:
		return VerdictProceedStyle
	case domain.VerdictCaution:
		return VerdictCautionStyle
	case domain.VerdictWait:
		return VerdictWaitStyle
	default:
		return VerdictNeutralStyle
	}
}

// FormatConflict renders one detected conflict as a single line.
func FormatConflict(c domain.Conflict) string {
	return fmt.Sprintf("%s %s", severityStyle(c.Severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(string(c.Severity)))), c.Description)
}

func severityStyle(s domain.Severity) lipgloss.Style {
	switch s {
	case domain.SeverityHigh:
		return SeverityHighStyle
	case domain.SeverityMedium:
		return SeverityMediumStyle
	default:
		return SeverityLowStyle
	}
}

// FormatFlow renders one investor class flow as a single line.
func FormatFlow(class domain.InvestorClass, flow domain.InvestorFlow) string {
	netStyle := FlowFlatStyle
	if flow.TodayNet > 0 {
		netStyle = FlowInStyle
	} else if flow.TodayNet < 0 {
		netStyle = FlowOutStyle
	}

	return fmt.Sprintf("%-12s %s  %s",
		investorLabel(class),
		netStyle.Render(fmt.Sprintf("%12s THB", formatMillions(flow.TodayNet))),
		flow.Strength,
	)
}

// FormatInsightLine renders one stored insight as a history row.
func FormatInsightLine(record domain.InsightRecord) string {
	return fmt.Sprintf("%-8s %3.0f%%  %-7s %-15s %s",
		FormatVerdict(record.Insight.Verdict),
		record.Insight.Confidence,
		record.Insight.Conviction,
		record.Insight.PrimaryDriver,
		SubtextStyle.Render(record.CreatedAt.Format(time.RFC822)),
	)
}

// RenderFlowBar renders a signed horizontal bar scaled against the largest
// absolute net flow on screen.
func RenderFlowBar(net, maxAbs float64, barWidth int) string {
	if barWidth <= 0 {
		barWidth = 20
	}
	if maxAbs <= 0 {
		return strings.Repeat(" ", barWidth)
	}

	magnitude := net
	if magnitude < 0 {
		magnitude = -magnitude
	}
	filled := int(magnitude / maxAbs * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	style := BarInStyle
	if net < 0 {
		style = BarOutStyle
	}
	return style.Render(strings.Repeat("█", filled)) + strings.Repeat(" ", barWidth-filled)
}

func investorLabel(class domain.InvestorClass) string {
	switch class {
	case domain.InvestorForeign:
		return "Foreign"
	case domain.InvestorInstitution:
		return "Institution"
	case domain.InvestorRetail:
		return "Retail"
	case domain.InvestorProp:
		return "Prop"
	default:
		return string(class)
	}
}

// formatMillions renders a net flow in million THB with a sign and commas.
func formatMillions(v float64) string {
	sign := ""
	if v > 0 {
		sign = "+"
	} else if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + addCommas(fmt.Sprintf("%.0f", v)) + "M"
}

func addCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var result strings.Builder
	for i, ch := range s {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(ch)
	}
	return result.String()
}
