package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/dkeye/Plaza/internal/adapters/chatstore"
	"github.com/dkeye/Plaza/internal/domain"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	SendBuffer int           `mapstructure:"send_buffer"`

	LogLevel  string `mapstructure:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty"`

	AuthSecret     string        `mapstructure:"auth_secret"`
	RoomServiceURL string        `mapstructure:"room_service_url"`
	RoomCacheTTL   time.Duration `mapstructure:"room_cache_ttl"`

	HistoryLimit int `mapstructure:"history_limit"`
	SpawnX       int `mapstructure:"spawn_x"`
	SpawnY       int `mapstructure:"spawn_y"`

	ChatBurst  int           `mapstructure:"chat_burst"`
	ChatWindow time.Duration `mapstructure:"chat_window"`

	Redis chatstore.Config `mapstructure:"redis"`
}

// Spawn is where every new session lands on the grid.
func (c *Config) Spawn() domain.Position {
	return domain.Position{X: c.SpawnX, Y: c.SpawnY}
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("room_service_url", "http://localhost:4000")
	v.SetDefault("room_cache_ttl", "30s")
	v.SetDefault("history_limit", 10)
	v.SetDefault("spawn_x", 300)
	v.SetDefault("spawn_y", 300)
	v.SetDefault("chat_burst", 10)
	v.SetDefault("chat_window", "10s")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "chat")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
