package giveawaybot

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/giveaway-bot/giveawaybot/database/models"
	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg := defaultConfig()
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Giveaway: GiveawayConfig{
			SummaryURL:           "https://giveawaybot.party/summary",
			SweepIntervalSeconds: 1,
			MaxWorkers:           16,
			DefaultLevel: LevelConfig{
				MaxGiveaways:    5,
				MaxWinners:      20,
				MaxTimeSeconds:  int((14 * 24 * time.Hour).Seconds()),
				PerChannelLimit: false,
			},
		},
	}
}

type Config struct {
	Log      LogConfig      `toml:"log"`
	Bot      BotConfig      `toml:"bot"`
	DB       DBConfig       `toml:"db"`
	Spaces   SpacesConfig   `toml:"spaces"`
	Giveaway GiveawayConfig `toml:"giveaway"`
	Mongo    MongoConfig    `toml:"mongo"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

type SpacesConfig struct {
	Key         string `toml:"key"`
	Secret      string `toml:"secret"`
	Region      string `toml:"region"`
	Bucket      string `toml:"bucket"`
	SummaryRoot string `toml:"summary_root"`
}

// MongoConfig points at a legacy v2 database, only used by the -migrate flag.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

type GiveawayConfig struct {
	// SummaryURL is the public viewer page the summary link button points at.
	SummaryURL           string      `toml:"summary_url"`
	SweepIntervalSeconds int         `toml:"sweep_interval_seconds"`
	MaxWorkers           int         `toml:"max_workers"`
	DefaultLevel         LevelConfig `toml:"default_level"`
}

func (c GiveawayConfig) SweepInterval() time.Duration {
	if c.SweepIntervalSeconds <= 0 {
		return time.Second
	}
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

type LevelConfig struct {
	MaxGiveaways    int  `toml:"max_giveaways"`
	MaxWinners      int  `toml:"max_winners"`
	MaxTimeSeconds  int  `toml:"max_time_seconds"`
	PerChannelLimit bool `toml:"per_channel_limit"`
}

func (c LevelConfig) PremiumLevel() models.PremiumLevel {
	return models.PremiumLevel{
		MaxGiveaways:           c.MaxGiveaways,
		MaxWinners:             c.MaxWinners,
		MaxTime:                time.Duration(c.MaxTimeSeconds) * time.Second,
		PerChannelMaxGiveaways: c.PerChannelLimit,
	}
}
