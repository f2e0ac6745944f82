package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 服务配置，config.yaml + KAVARNA_ 环境变量覆盖
type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
		Mode string `mapstructure:"mode"` // gin mode: debug | release | test
	} `mapstructure:"server"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Database struct {
		Driver       string `mapstructure:"driver"` // sqlite | postgres
		DSN          string `mapstructure:"dsn"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
		MaxIdleConns int    `mapstructure:"max_idle_conns"`
	} `mapstructure:"database"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Sync struct {
		// Channel 远端通道类型：redis | http | off
		Channel   string        `mapstructure:"channel"`
		Key       string        `mapstructure:"key"` // redis key
		URL       string        `mapstructure:"url"` // http blob 地址
		Interval  time.Duration `mapstructure:"interval"`
		QueueSize int           `mapstructure:"queue_size"`
		Workers   int           `mapstructure:"workers"`
	} `mapstructure:"sync"`

	Auth struct {
		JWTSecret     string            `mapstructure:"jwt_secret"`
		SessionCookie string            `mapstructure:"session_cookie"`
		TokenTTL      time.Duration     `mapstructure:"token_ttl"`
		// Credentials 固定的 barista 凭据表（信任桩，不是真正的鉴权）
		Credentials map[string]string `mapstructure:"credentials"`
	} `mapstructure:"auth"`

	Legacy struct {
		FilePath string `mapstructure:"file_path"`
	} `mapstructure:"legacy"`

	Telemetry struct {
		SentryDSN    string `mapstructure:"sentry_dsn"`
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
		ServiceName  string `mapstructure:"service_name"`
	} `mapstructure:"telemetry"`

	RateLimit struct {
		RPS   float64 `mapstructure:"rps"`
		Burst int     `mapstructure:"burst"`
	} `mapstructure:"rate_limit"`
}

// Load 读取配置。配置文件缺失不报错，全部回落到默认值。
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("KAVARNA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "kavarna.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("sync.channel", "redis")
	v.SetDefault("sync.key", "kavarna:active-orders")
	v.SetDefault("sync.url", "")
	v.SetDefault("sync.interval", 8*time.Second)
	v.SetDefault("sync.queue_size", 256)
	v.SetDefault("sync.workers", 2)
	v.SetDefault("auth.jwt_secret", "dev-only-secret")
	v.SetDefault("auth.session_cookie", "kavarna_session")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("auth.credentials", map[string]string{
		"Ondrej": "1711",
		"Anet":   "Sunny",
	})
	v.SetDefault("legacy.file_path", "data/orders.json")
	v.SetDefault("telemetry.service_name", "kavarna")
	v.SetDefault("rate_limit.rps", 20.0)
	v.SetDefault("rate_limit.burst", 40)
}
