package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppCfg struct {
	Name                string `mapstructure:"name"`
	Env                 string `mapstructure:"env"`
	Port                int    `mapstructure:"port"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `mapstructure:"idle_timeout_seconds"`
}

type MongoCfg struct {
	URI                    string `mapstructure:"uri"`
	Database               string `mapstructure:"database"`
	ParticipantsCollection string `mapstructure:"participants_collection"`
	MessagesCollection     string `mapstructure:"messages_collection"`
}

type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type KafkaCfg struct {
	Enabled    bool     `mapstructure:"enabled"`
	Brokers    []string `mapstructure:"brokers"`
	Topic      string   `mapstructure:"topic"`
	MaxRetries uint64   `mapstructure:"max_retries"`
	// PublishTimeoutMs bounds one publish, retries included.
	PublishTimeoutMs int `mapstructure:"publish_timeout_ms"`
}

type PresenceCfg struct {
	SweepIntervalSeconds int  `mapstructure:"sweep_interval_seconds"`
	InactivitySeconds    int  `mapstructure:"inactivity_seconds"`
	RemoveInactive       bool `mapstructure:"remove_inactive"`
}

type RateLimitCfg struct {
	Backend   string `mapstructure:"backend"` // memory | redis
	PerMinute int    `mapstructure:"per_minute"`
	Burst     int    `mapstructure:"burst"`
}

type WSCfg struct {
	SendBuffer int `mapstructure:"send_buffer"`
}

type Config struct {
	App       AppCfg       `mapstructure:"app"`
	Mongo     MongoCfg     `mapstructure:"mongo"`
	Redis     RedisCfg     `mapstructure:"redis"`
	Kafka     KafkaCfg     `mapstructure:"kafka"`
	Presence  PresenceCfg  `mapstructure:"presence"`
	RateLimit RateLimitCfg `mapstructure:"rate_limit"`
	WS        WSCfg        `mapstructure:"ws"`

	// Derived
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	SweepInterval  time.Duration
	Inactivity     time.Duration
	PublishTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "chatroom-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 5000)
	v.SetDefault("app.read_timeout_seconds", 15)
	v.SetDefault("app.write_timeout_seconds", 15)
	v.SetDefault("app.idle_timeout_seconds", 60)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "chat_uol")
	v.SetDefault("mongo.participants_collection", "participants")
	v.SetDefault("mongo.messages_collection", "messages")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.prefix", "chatroom:ratelimit")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "chatroom.events")
	v.SetDefault("kafka.max_retries", 3)
	v.SetDefault("kafka.publish_timeout_ms", 1500)

	v.SetDefault("presence.sweep_interval_seconds", 15)
	v.SetDefault("presence.inactivity_seconds", 10)
	v.SetDefault("presence.remove_inactive", true)

	v.SetDefault("rate_limit.backend", "memory")
	v.SetDefault("rate_limit.per_minute", 600)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("ws.send_buffer", 256)
}

// Load reads the yaml file at path (optional) and overlays APP_* environment
// variables, e.g. APP_MONGO_URI. DATABASE_URL overrides the mongo uri.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(path); statErr == nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if uri := os.Getenv("DATABASE_URL"); uri != "" {
		cfg.Mongo.URI = uri
	}

	cfg.ReadTimeout = time.Duration(cfg.App.ReadTimeoutSeconds) * time.Second
	cfg.WriteTimeout = time.Duration(cfg.App.WriteTimeoutSeconds) * time.Second
	cfg.IdleTimeout = time.Duration(cfg.App.IdleTimeoutSeconds) * time.Second
	if cfg.Presence.SweepIntervalSeconds <= 0 {
		cfg.Presence.SweepIntervalSeconds = 15
	}
	if cfg.Presence.InactivitySeconds <= 0 {
		cfg.Presence.InactivitySeconds = 10
	}
	cfg.SweepInterval = time.Duration(cfg.Presence.SweepIntervalSeconds) * time.Second
	cfg.Inactivity = time.Duration(cfg.Presence.InactivitySeconds) * time.Second
	if cfg.Kafka.PublishTimeoutMs <= 0 {
		cfg.Kafka.PublishTimeoutMs = 1500
	}
	cfg.PublishTimeout = time.Duration(cfg.Kafka.PublishTimeoutMs) * time.Millisecond
	return &cfg, nil
}
