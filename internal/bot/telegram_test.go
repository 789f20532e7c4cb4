package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	if dispatcher := StartTelegramBot("", nil); dispatcher != nil {
		t.Fatal("expected nil dispatcher without a token")
	}
}

func TestParseMarketArgDefaultsToSET(t *testing.T) {
	market, err := parseMarketArg(nil)
	if err != nil || market != "SET" {
		t.Fatalf("expected SET default, got market=%q err=%v", market, err)
	}

	market, err = parseMarketArg([]string{"set100"})
	if err != nil || market != "SET100" {
		t.Fatalf("expected SET100, got market=%q err=%v", market, err)
	}

	if _, err := parseMarketArg([]string{"NIKKEI"}); err == nil {
		t.Fatal("expected error for unsupported market")
	}
}

func TestFormatInsight(t *testing.T) {
	record := &domain.InsightRecord{
		Market: "SET",
		Insight: domain.DataInsight{
			Verdict:            domain.VerdictWait,
			Confidence:         35,
			Conviction:         domain.ConvictionLow,
			PrimaryDriver:      domain.DriverNone,
			ConflictLevel:      domain.SeverityHigh,
			KeyConflictAlert:   "Prop trading accounts for 55% of total flow, above the 40% noise threshold",
			ActionableTakeaway: "Signals are too ambiguous to act on. Wait for the next analysis cycle.",
		},
		CreatedAt: time.Date(2026, 8, 21, 10, 30, 0, 0, time.UTC),
	}

	msg := formatInsight(record)

	for _, want := range []string{"SET verdict: WAIT", "35%", "low conviction", "Prop trading", "too ambiguous"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatConflicts(t *testing.T) {
	detection := &domain.ConflictDetectionResult{
		Conflicts: []domain.Conflict{
			{Severity: domain.SeverityHigh, Description: "Market regime is Risk-On but the smart money score is 25, below the 40 confirmation level"},
			{Severity: domain.SeverityMedium, Description: "Foreign investors are Strong Buy while local institutions are Strong Sell"},
		},
		ConflictLevel:       domain.SeverityHigh,
		HasCriticalConflict: true,
	}

	msg := formatConflicts("SET", detection)

	if !strings.Contains(msg, "SET conflicts (level HIGH):") {
		t.Fatalf("missing header:\n%s", msg)
	}
	if !strings.Contains(msg, "[HIGH]") || !strings.Contains(msg, "[MEDIUM]") {
		t.Fatalf("missing severity tags:\n%s", msg)
	}
}

func TestFormatConflictsEmpty(t *testing.T) {
	msg := formatConflicts("MAI", &domain.ConflictDetectionResult{ConflictLevel: domain.SeverityNone})
	if !strings.Contains(msg, "no conflicts") {
		t.Fatalf("unexpected message: %s", msg)
	}
}
