package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	LLM struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
	} `yaml:"llm"`
	Broker struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		Paper     bool   `yaml:"paper"`
	} `yaml:"broker"`
	Telegram struct {
		BotToken string   `yaml:"bot_token"`
		ChatIDs  []string `yaml:"chat_ids"`
	} `yaml:"telegram"`
	Market struct {
		ShortPeriod     string `yaml:"short_period"`
		LongPeriod      string `yaml:"long_period"`
		BarLimit        int    `yaml:"bar_limit"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"market"`
	Trading struct {
		Enabled             bool    `yaml:"enabled"`
		ConfidenceThreshold float64 `yaml:"confidence_threshold"`
		MaxSymbolFraction   float64 `yaml:"max_symbol_fraction"`
		MaxSymbols          int     `yaml:"max_symbols"`
	} `yaml:"trading"`
	Scan struct {
		Cron    string   `yaml:"cron"`
		Symbols []string `yaml:"symbols"`
	} `yaml:"scan"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("BROKER_API_KEY"); v != "" {
		cfg.Broker.APIKey = v
	}
	if v := os.Getenv("BROKER_API_SECRET"); v != "" {
		cfg.Broker.APISecret = v
	}
	if v := os.Getenv("BROKER_PAPER"); v != "" {
		cfg.Broker.Paper = v == "true" || v == "1"
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_IDS"); v != "" {
		cfg.Telegram.ChatIDs = splitList(v)
	}
	if v := os.Getenv("TRADING_ENABLED"); v != "" {
		cfg.Trading.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		cfg.Scan.Cron = v
	}
	if v := os.Getenv("SCAN_SYMBOLS"); v != "" {
		cfg.Scan.Symbols = splitList(v)
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Market.CacheTTLSeconds = n
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o"
	}
	if cfg.Market.ShortPeriod == "" {
		cfg.Market.ShortPeriod = "5Min"
	}
	if cfg.Market.LongPeriod == "" {
		cfg.Market.LongPeriod = "4Hour"
	}
	if cfg.Market.BarLimit == 0 {
		cfg.Market.BarLimit = 100
	}
	if cfg.Market.CacheTTLSeconds == 0 {
		cfg.Market.CacheTTLSeconds = 60
	}
	if cfg.Trading.ConfidenceThreshold == 0 {
		cfg.Trading.ConfidenceThreshold = 70
	}
	if cfg.Trading.MaxSymbolFraction == 0 {
		cfg.Trading.MaxSymbolFraction = 0.5
	}
	if cfg.Trading.MaxSymbols == 0 {
		cfg.Trading.MaxSymbols = 10
	}
	if cfg.Scan.Cron == "" {
		// Every 30 minutes during US regular hours, Monday to Friday.
		cfg.Scan.Cron = "0 */30 9-16 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/tradepilot.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if c.Broker.APIKey == "" {
		return fmt.Errorf("broker.api_key is required")
	}
	if c.Broker.APISecret == "" {
		return fmt.Errorf("broker.api_secret is required")
	}
	if c.Telegram.BotToken != "" && len(c.Telegram.ChatIDs) == 0 {
		return fmt.Errorf("telegram.chat_ids is required when a bot token is set")
	}
	if c.Trading.MaxSymbolFraction < 0 || c.Trading.MaxSymbolFraction > 1 {
		return fmt.Errorf("trading.max_symbol_fraction must be within [0, 1]")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
