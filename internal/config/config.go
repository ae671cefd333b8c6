package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Cron   CronConfig   `mapstructure:"cron"`

	Buffer       BufferConfig       `mapstructure:"buffer"`
	LineMovement LineMovementConfig `mapstructure:"line_movement"`
	Arbitrage    ArbitrageConfig    `mapstructure:"arbitrage"`
	Value        ValueConfig        `mapstructure:"value"`
	Correlation  CorrelationConfig  `mapstructure:"correlation"`
	Signals      SignalsConfig      `mapstructure:"signals"`
	Stream       StreamConfig       `mapstructure:"stream"`
	Prediction   PredictionConfig   `mapstructure:"prediction"`
	LiveGame     LiveGameConfig     `mapstructure:"live_game"`
	Risk         RiskConfig         `mapstructure:"risk"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Stream   string `mapstructure:"stream"`
}

type CronConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	SignalCleanup   string `mapstructure:"signal_cleanup"`
	FeedHealthFlush string `mapstructure:"feed_health_flush"`
}

type BufferConfig struct {
	GlobalCapacity int `mapstructure:"global_capacity"`
	MarketCapacity int `mapstructure:"market_capacity"`
}

type LineMovementConfig struct {
	MoneylineThreshold float64 `mapstructure:"moneyline_threshold"`
	SpreadThreshold    float64 `mapstructure:"spread_threshold"`
	TotalThreshold     float64 `mapstructure:"total_threshold"`
	PublicThreshold    float64 `mapstructure:"public_threshold"`
}

type ArbitrageConfig struct {
	MinProfitPercent float64 `mapstructure:"min_profit_percent"`
}

type ValueConfig struct {
	MinEdge       float64 `mapstructure:"min_edge"`
	MaxEdge       float64 `mapstructure:"max_edge"`
	KellyFraction float64 `mapstructure:"kelly_fraction"`
}

type CorrelationConfig struct {
	MinCorrelation  float64 `mapstructure:"min_correlation"`
	MinObservations int     `mapstructure:"min_observations"`
}

type SignalsConfig struct {
	MaxActive   int           `mapstructure:"max_active"`
	MovementTTL time.Duration `mapstructure:"movement_ttl"`
	ValueTTL    time.Duration `mapstructure:"value_ttl"`
}

type StreamConfig struct {
	SubscriberBuffer int `mapstructure:"subscriber_buffer"`
}

type PredictionConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	StdDevRatio float64       `mapstructure:"std_dev_ratio"`
}

type RiskConfig struct {
	MaxStakeFraction float64       `mapstructure:"max_stake_fraction"`
	MaxPerMarket     int           `mapstructure:"max_per_market"`
	MinConfidence    float64       `mapstructure:"min_confidence"`
	MaxSignalAge     time.Duration `mapstructure:"max_signal_age"`
	StaleDataAction  string        `mapstructure:"stale_data_action"`
}

type LiveGameConfig struct {
	HistoryCapacity int `mapstructure:"history_capacity"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "signals.generated")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.signal_cleanup", "@every 10m")
	v.SetDefault("cron.feed_health_flush", "@every 30s")
	v.SetDefault("buffer.global_capacity", 1000)
	v.SetDefault("buffer.market_capacity", 100)
	v.SetDefault("line_movement.moneyline_threshold", 15.0)
	v.SetDefault("line_movement.spread_threshold", 0.5)
	v.SetDefault("line_movement.total_threshold", 0.5)
	v.SetDefault("line_movement.public_threshold", 0.7)
	v.SetDefault("arbitrage.min_profit_percent", 0.5)
	v.SetDefault("value.min_edge", 0.02)
	v.SetDefault("value.max_edge", 0.15)
	v.SetDefault("value.kelly_fraction", 0.25)
	v.SetDefault("correlation.min_correlation", 0.7)
	v.SetDefault("correlation.min_observations", 6)
	v.SetDefault("signals.max_active", 20)
	v.SetDefault("signals.movement_ttl", "15m")
	v.SetDefault("signals.value_ttl", "60m")
	v.SetDefault("stream.subscriber_buffer", 64)
	v.SetDefault("prediction.base_url", "http://localhost:8090")
	v.SetDefault("prediction.timeout", "3s")
	v.SetDefault("prediction.std_dev_ratio", 0.15)
	v.SetDefault("live_game.history_capacity", 100)
	v.SetDefault("risk.max_stake_fraction", 0.10)
	v.SetDefault("risk.max_per_market", 3)
	v.SetDefault("risk.min_confidence", 0.0)
	v.SetDefault("risk.max_signal_age", "5m")
	v.SetDefault("risk.stale_data_action", "block")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
