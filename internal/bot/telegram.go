package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

type InsightReader interface {
	LatestInsight(ctx context.Context, market string) (*domain.InsightRecord, error)
	LatestConflicts(ctx context.Context, market string) (*domain.ConflictDetectionResult, error)
}

func StartTelegramBot(token string, insightService InsightReader) *AlertDispatcher {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	alerts := NewAlertDispatcher(b)

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/verdict", func(c tele.Context) error {
		if insightService == nil {
			return c.Send("Insight service unavailable")
		}
		market, err := parseMarketArg(c.Args())
		if err != nil {
			return c.Send(fmt.Sprintf("Usage: /verdict SET\nSupported: %s", strings.Join(domain.SupportedMarkets, ", ")))
		}
		record, err := insightService.LatestInsight(context.Background(), market)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching verdict for %s: %v", market, err))
		}
		if record == nil {
			return c.Send(fmt.Sprintf("No verdict for %s yet.", market))
		}
		return c.Send(formatInsight(record))
	})

	b.Handle("/conflicts", func(c tele.Context) error {
		if insightService == nil {
			return c.Send("Insight service unavailable")
		}
		market, err := parseMarketArg(c.Args())
		if err != nil {
			return c.Send(fmt.Sprintf("Usage: /conflicts SET\nSupported: %s", strings.Join(domain.SupportedMarkets, ", ")))
		}
		detection, err := insightService.LatestConflicts(context.Background(), market)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching conflicts for %s: %v", market, err))
		}
		if detection == nil {
			return c.Send(fmt.Sprintf("No analysis for %s yet.", market))
		}
		return c.Send(formatConflicts(market, detection))
	})

	b.Handle("/alerts", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}

		mode, err := parseAlertMode(c.Args())
		if err != nil {
			return c.Send("Usage: /alerts on | /alerts off | /alerts status")
		}

		switch mode {
		case "on":
			if alerts.Subscribe(chat.ID) {
				return c.Send("Critical-conflict alerts enabled for this chat.")
			}
			return c.Send("Critical-conflict alerts are already enabled for this chat.")
		case "off":
			if alerts.Unsubscribe(chat.ID) {
				return c.Send("Critical-conflict alerts disabled for this chat.")
			}
			return c.Send("Critical-conflict alerts are already disabled for this chat.")
		default:
			if alerts.IsSubscribed(chat.ID) {
				return c.Send("Alerts status: ON")
			}
			return c.Send("Alerts status: OFF")
		}
	})

	log.Println("Telegram bot started")
	go b.Start()
	return alerts
}

func parseMarketArg(args []string) (string, error) {
	if len(args) == 0 {
		return "SET", nil
	}
	market := strings.ToUpper(strings.TrimSpace(args[0]))
	if !domain.IsSupportedMarket(market) {
		return "", fmt.Errorf("unsupported market: %s", market)
	}
	return market, nil
}

func formatInsight(record *domain.InsightRecord) string {
	in := record.Insight
	lines := []string{
		fmt.Sprintf("%s verdict: %s", record.Market, in.Verdict),
		fmt.Sprintf("Confidence: %.0f%% (%s conviction)", in.Confidence, in.Conviction),
		fmt.Sprintf("Primary driver: %s", in.PrimaryDriver),
	}
	if in.KeyConflictAlert != "" {
		lines = append(lines, "Alert: "+in.KeyConflictAlert)
	}
	if in.ActionableTakeaway != "" {
		lines = append(lines, in.ActionableTakeaway)
	}
	lines = append(lines, "As of "+record.CreatedAt.UTC().Format(time.RFC822))
	return strings.Join(lines, "\n")
}

func formatConflicts(market string, detection *domain.ConflictDetectionResult) string {
	if len(detection.Conflicts) == 0 {
		return fmt.Sprintf("%s: no conflicts detected. Signals agree.", market)
	}
	lines := make([]string, 0, len(detection.Conflicts)+1)
	lines = append(lines, fmt.Sprintf("%s conflicts (level %s):", market, strings.ToUpper(string(detection.ConflictLevel))))
	for _, c := range detection.Conflicts {
		lines = append(lines, fmt.Sprintf("[%s] %s", strings.ToUpper(string(c.Severity)), c.Description))
	}
	return strings.Join(lines, "\n")
}
