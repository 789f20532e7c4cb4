package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
	"github.com/hataichanokpan-dev/fonpick/internal/insight"
)

type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string

	AnalyticsBaseURL      string
	Markets               []string
	InsightPollSecs       int
	CacheTTLSecs          int
	SnapshotRetentionDays int

	MCPTransport          string
	MCPHTTPEnabled        bool
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
	MCPRateLimitPerMin    int

	Thresholds insight.Thresholds
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		MCPAuthToken:     os.Getenv("MCP_AUTH_TOKEN"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.AnalyticsBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("ANALYTICS_BASE_URL")), "/")
	if cfg.AnalyticsBaseURL == "" {
		log.Println("Warning: ANALYTICS_BASE_URL not set, defaulting to http://localhost:8081")
		cfg.AnalyticsBaseURL = "http://localhost:8081"
	}

	cfg.Markets = parseMarkets(os.Getenv("MARKETS"))

	cfg.InsightPollSecs = 300
	if v := strings.TrimSpace(os.Getenv("INSIGHT_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.InsightPollSecs = n
		}
	}

	cfg.CacheTTLSecs = 90
	if v := strings.TrimSpace(os.Getenv("INSIGHT_CACHE_TTL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheTTLSecs = n
		}
	}

	cfg.SnapshotRetentionDays = 30
	if v := strings.TrimSpace(os.Getenv("SNAPSHOT_RETENTION_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.SnapshotRetentionDays = n
		}
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("MCP_HTTP_ENABLED")), "true")

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = 8090
	if v := strings.TrimSpace(os.Getenv("MCP_HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPHTTPPort = n
		}
	}

	cfg.MCPRequestTimeoutSecs = 5
	if v := strings.TrimSpace(os.Getenv("MCP_REQUEST_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRequestTimeoutSecs = n
		}
	}

	cfg.MCPRateLimitPerMin = 60
	if v := strings.TrimSpace(os.Getenv("MCP_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRateLimitPerMin = n
		}
	}

	cfg.Thresholds = loadThresholds()

	return cfg
}

// loadThresholds starts from the production defaults and applies any INSIGHT_*
// override that parses and falls in range. A bad value keeps the default.
func loadThresholds() insight.Thresholds {
	th := insight.DefaultThresholds()

	overrideFloat("INSIGHT_SMART_MONEY_LOW", &th.SmartMoneyLow, 0, 100)
	overrideFloat("INSIGHT_SMART_MONEY_HIGH", &th.SmartMoneyHigh, 0, 100)
	overrideFloat("INSIGHT_PROP_NOISE_RATIO", &th.PropNoiseRatio, 0, 1)
	overrideFloat("INSIGHT_REGIME_CONFIDENCE_FLOOR", &th.RegimeConfidenceFloor, 0, 100)
	overrideFloat("INSIGHT_PENALTY_HIGH", &th.ConfidencePenaltyHigh, 0, 100)
	overrideFloat("INSIGHT_PENALTY_MEDIUM", &th.ConfidencePenaltyMedium, 0, 100)
	overrideFloat("INSIGHT_CONVICTION_HIGH", &th.ConvictionHigh, 0, 100)
	overrideFloat("INSIGHT_CONVICTION_MEDIUM", &th.ConvictionMedium, 0, 100)
	overrideFloat("INSIGHT_DRIVER_FLOOR", &th.DriverFloor, 0, 100)

	if v := strings.TrimSpace(os.Getenv("INSIGHT_DIVERGENCE_SCORE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 3 {
			th.DivergenceScore = n
		} else {
			log.Printf("Warning: ignoring INSIGHT_DIVERGENCE_SCORE=%q", v)
		}
	}

	if th.SmartMoneyLow >= th.SmartMoneyHigh {
		log.Printf("Warning: smart money band inverted (%.0f >= %.0f), using defaults",
			th.SmartMoneyLow, th.SmartMoneyHigh)
		def := insight.DefaultThresholds()
		th.SmartMoneyLow = def.SmartMoneyLow
		th.SmartMoneyHigh = def.SmartMoneyHigh
	}

	return th
}

func overrideFloat(key string, dst *float64, min, max float64) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n < min || n > max {
		log.Printf("Warning: ignoring %s=%q", key, v)
		return
	}
	*dst = n
}

func parseMarkets(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return append([]string(nil), domain.SupportedMarkets...)
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		market := strings.ToUpper(strings.TrimSpace(part))
		if market == "" {
			continue
		}
		if !domain.IsSupportedMarket(market) {
			log.Printf("Warning: ignoring unsupported market %q", market)
			continue
		}
		if _, ok := seen[market]; ok {
			continue
		}
		seen[market] = struct{}{}
		out = append(out, market)
	}
	if len(out) == 0 {
		return append([]string(nil), domain.SupportedMarkets...)
	}
	return out
}
