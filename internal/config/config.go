// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Bonus     BonusConfig     `mapstructure:"bonus"`
	Games     GamesConfig     `mapstructure:"games"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// RedisConfig controls session snapshots.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LedgerConfig holds balance configuration.
type LedgerConfig struct {
	InitialBalance float64 `mapstructure:"initial_balance"`
}

// Initial returns the starting balance of a new player.
func (l LedgerConfig) Initial() decimal.Decimal {
	return decimal.NewFromFloat(l.InitialBalance).Round(2)
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// BonusConfig holds the periodic bonus configuration.
type BonusConfig struct {
	Amount        float64 `mapstructure:"amount"`
	CooldownHours int     `mapstructure:"cooldown_hours"`
}

// GamesConfig holds game-specific configuration.
type GamesConfig struct {
	TimeoutSeconds   int            `mapstructure:"timeout_seconds"`
	AutoPlayInterval time.Duration  `mapstructure:"autoplay_interval"`
	MinBet           float64        `mapstructure:"min_bet"`
	MaxBet           float64        `mapstructure:"max_bet"`
	Limbo            HouseEdge      `mapstructure:"limbo"`
	HiLo             HouseEdge      `mapstructure:"hilo"`
	Connect4         Connect4Config `mapstructure:"connect4"`
}

// HouseEdge configures a game's edge.
type HouseEdge struct {
	HouseEdge float64 `mapstructure:"house_edge"`
}

// Connect4Config holds Connect-4 configuration.
type Connect4Config struct {
	TimeoutSeconds          int `mapstructure:"timeout_seconds"`
	ChallengeTimeoutSeconds int `mapstructure:"challenge_timeout_seconds"`
}

// Timeout returns the default inactivity window.
func (g GamesConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// Timeouts returns per-game overrides of the inactivity window.
func (g GamesConfig) Timeouts() map[game.Kind]time.Duration {
	m := make(map[game.Kind]time.Duration)
	if g.Connect4.TimeoutSeconds > 0 {
		m[game.KindConnect4] = time.Duration(g.Connect4.TimeoutSeconds) * time.Second
	}
	return m
}

// Limits returns the wager bounds. A zero maximum means unlimited.
func (g GamesConfig) Limits() (min, max decimal.Decimal) {
	return decimal.NewFromFloat(g.MinBet).Round(2), decimal.NewFromFloat(g.MaxBet).Round(2)
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g. BOT_TOKEN, DATABASE_HOST, REDIS_ADDR
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "casino")
	v.SetDefault("database.name", "casino")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "purgatory:session:")
	v.SetDefault("redis.ttl", "24h")

	v.SetDefault("log.level", "info")

	v.SetDefault("ledger.initial_balance", 0)

	v.SetDefault("bonus.amount", 5)
	v.SetDefault("bonus.cooldown_hours", 24)

	v.SetDefault("games.timeout_seconds", 30)
	v.SetDefault("games.autoplay_interval", "2s")
	v.SetDefault("games.min_bet", 0.01)
	v.SetDefault("games.max_bet", 0)
	v.SetDefault("games.limbo.house_edge", 0.03)
	v.SetDefault("games.hilo.house_edge", 0.02)
	v.SetDefault("games.connect4.timeout_seconds", 30)
	v.SetDefault("games.connect4.challenge_timeout_seconds", 60)
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
