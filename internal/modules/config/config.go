package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	apiKeyENV         = "VENUE_API_KEY"
	apiSecretENV      = "VENUE_API_SECRET"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
)

// Config ...
type Config struct {
	Venue struct {
		BaseURL      string `yaml:"base_url"`
		WSURL        string `yaml:"ws_url"`
		APIKey       string `yaml:"api_key"`
		APISecret    string `yaml:"api_secret"`
		RecvWindowMS int64  `yaml:"recv_window_ms"`
	} `yaml:"venue"`
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`
	DB string `yaml:"db_dsn"`

	// Чем торгуем
	Symbols []string `yaml:"symbols"`
	// Таймфрейм свечей для прогрева индикаторов на старте
	WarmupTimeframe string `yaml:"warmup_timeframe"`
	// Бумажный режим: мутирующие вызовы к бирже подменяются симулированным ack.
	Paper bool `yaml:"paper"`

	// Капитал и риск.
	// TotalCapital = 0 => берём реальный баланс с биржи.
	TotalCapital float64 `yaml:"total_capital"` // USDT
	AllocPct     float64 `yaml:"alloc_pct"`     // доля депозита на инструмент, в %
	RiskPct      float64 `yaml:"risk_pct"`      // риск на сделку от депозита, в %

	// Таймеры
	TickInterval      time.Duration
	ReconInterval     time.Duration // заметно реже тиков — те же дорогие вызовы
	ClockSyncInterval time.Duration
	MinActionGap      time.Duration
	RateLimitBackoff  time.Duration
	NotifyCooldown    time.Duration

	// Погоня за входом
	EntryMakerOffsetPct    float64 `yaml:"entry_maker_offset_pct"`     // первая котировка: отступ от рынка
	EntryMinMakerOffsetPct float64 `yaml:"entry_min_maker_offset_pct"` // минимальный шаг агрессии за перевыставление
	EntryMaxChasePct       float64 `yaml:"entry_max_chase_pct"`        // потолок погони от ПЕРВОЙ котировки
	EntryRepriceAfter      time.Duration
	EntryMaxReprices       int `yaml:"entry_max_reprices"`

	// Трейлинг и выход
	TrailInitBufferPct float64 `yaml:"trail_init_buffer_pct"`
	TrailPct           float64 `yaml:"trail_pct"`
	SoftStopPct        float64 `yaml:"soft_stop_pct"` // широкий стоп от якоря
	EMAFast            int     `yaml:"ema_fast"`
	EMASlow            int     `yaml:"ema_slow"`
	EMATolerancePct    float64 `yaml:"ema_tolerance_pct"`
	RSIPeriod          int     `yaml:"rsi_period"`
	ExitMakerOffsetPct float64 `yaml:"exit_maker_offset_pct"`
	ExitRepriceAfter   time.Duration
	ExitMaxReprices    int `yaml:"exit_max_reprices"`
}

func NewConfig() (*Config, error) {

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		log.Fatalf("Failed to open config file: %v", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		AllocPct: floatFromEnv("ALLOC_PCT", 5.0),
		RiskPct:  floatFromEnv("RISK_PCT", 1.0),

		TickInterval:      durationFromEnv("TICK_INTERVAL", "5s"),
		ReconInterval:     durationFromEnv("RECON_INTERVAL", "2m"),
		ClockSyncInterval: durationFromEnv("CLOCK_SYNC_INTERVAL", "5m"),
		MinActionGap:      durationFromEnv("MIN_ACTION_GAP", "10s"),
		RateLimitBackoff:  durationFromEnv("RATE_LIMIT_BACKOFF", "5m"),
		NotifyCooldown:    durationFromEnv("NOTIFY_COOLDOWN", "15m"),

		EntryMakerOffsetPct:    0.002,
		EntryMinMakerOffsetPct: 0.0005,
		EntryMaxChasePct:       0.005,
		EntryRepriceAfter:      durationFromEnv("ENTRY_REPRICE_AFTER", "20s"),
		EntryMaxReprices:       intFromEnv("ENTRY_MAX_REPRICES", 5),

		TrailInitBufferPct: 0.004,
		TrailPct:           0.006,
		SoftStopPct:        0.015,
		EMAFast:            intFromEnv("EMA_FAST", 9),
		EMASlow:            intFromEnv("EMA_SLOW", 21),
		EMATolerancePct:    0.001,
		RSIPeriod:          intFromEnv("RSI_PERIOD", 14),
		ExitMakerOffsetPct: 0.0005,
		ExitRepriceAfter:   durationFromEnv("EXIT_REPRICE_AFTER", "30s"),
		ExitMaxReprices:    intFromEnv("EXIT_MAX_REPRICES", 8),
	}
	err = decoder.Decode(&config)
	if err != nil {
		log.Fatalf("Failed to decode config file: %v", err)
	}

	if key := os.Getenv(apiKeyENV); key != "" {
		config.Venue.APIKey = key
	}
	if secret := os.Getenv(apiSecretENV); secret != "" {
		config.Venue.APISecret = secret
	}
	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}
	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	if config.Venue.BaseURL == "" {
		config.Venue.BaseURL = "https://fapi.binance.com"
	}
	if config.Venue.WSURL == "" {
		config.Venue.WSURL = "wss://fstream.binance.com"
	}
	if config.Venue.RecvWindowMS <= 0 {
		config.Venue.RecvWindowMS = 5000
	}
	if config.WarmupTimeframe == "" {
		config.WarmupTimeframe = "1m"
	}

	return &config, nil
}

func getenvRequired(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("env %s is required", key))
	}
	return v
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
