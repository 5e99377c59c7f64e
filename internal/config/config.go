package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Event log backends
const (
	EventBackendRedis  = "redis"
	EventBackendSQLite = "sqlite"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Events  EventsConfig  `mapstructure:"events"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Game    GameConfig    `mapstructure:"game"`
	Stories StoriesConfig `mapstructure:"stories"`
	Discord DiscordConfig `mapstructure:"discord"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type EventsConfig struct {
	// Backend is redis or sqlite
	Backend           string        `mapstructure:"backend"`
	SQLitePath        string        `mapstructure:"sqlite_path"`
	UpdateRetention   time.Duration `mapstructure:"update_retention"`
	TimelineRetention time.Duration `mapstructure:"timeline_retention"`
	PurgeInterval     time.Duration `mapstructure:"purge_interval"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type GameConfig struct {
	DefaultMaxPlayers    int           `mapstructure:"default_max_players"`
	OfflineThreshold     time.Duration `mapstructure:"offline_threshold"`
	OfflineSweepInterval time.Duration `mapstructure:"offline_sweep_interval"`
	VotingSweepInterval  time.Duration `mapstructure:"voting_sweep_interval"`
	SkipTurnHeal         int           `mapstructure:"skip_turn_heal"`
}

type StoriesConfig struct {
	Dir string `mapstructure:"dir"`
}

type DiscordConfig struct {
	// Token enables the announcer when set
	Token     string `mapstructure:"token"`
	ChannelID string `mapstructure:"channel_id"`

	// ApplicationID falls back to the bot user when empty
	ApplicationID string `mapstructure:"application_id"`

	// GuildID registers commands for one guild instead of globally
	GuildID string `mapstructure:"guild_id"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`

	// File enables a rotating log file next to the console output
	File         string        `mapstructure:"file"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
}

// Load reads configuration from the file at CONFIG_PATH and the environment
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}
	return LoadFile(configPath)
}

// LoadFile reads configuration from a YAML file, defaults and environment variables.
// A missing file is not an error.
func LoadFile(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.Events.Backend {
	case EventBackendRedis:
	case EventBackendSQLite:
		if c.Events.SQLitePath == "" {
			return errors.New("events.sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown events backend %q", c.Events.Backend)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}

	if c.Discord.Token != "" && c.Discord.ChannelID == "" {
		return errors.New("discord.channel_id is required when a discord token is set")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Events
	v.SetDefault("events.backend", EventBackendRedis)
	v.SetDefault("events.sqlite_path", "./data/events.db")
	v.SetDefault("events.update_retention", "24h")
	v.SetDefault("events.timeline_retention", "720h") // 30 days
	v.SetDefault("events.purge_interval", "1h")

	// Auth
	v.SetDefault("auth.token_ttl", "24h")

	// Game
	v.SetDefault("game.default_max_players", 4)
	v.SetDefault("game.offline_threshold", "5m")
	v.SetDefault("game.offline_sweep_interval", "60s")
	v.SetDefault("game.voting_sweep_interval", "30s")
	v.SetDefault("game.skip_turn_heal", 2)

	// Stories
	v.SetDefault("stories.dir", "./stories")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.max_age", "168h")
	v.SetDefault("logging.rotation_time", "24h")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("server.port", "SERVER_PORT")

	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	v.BindEnv("events.backend", "EVENTS_BACKEND")
	v.BindEnv("events.sqlite_path", "EVENTS_SQLITE_PATH")

	v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	v.BindEnv("stories.dir", "STORIES_DIR")

	// Discord, named as the bot always was
	v.BindEnv("discord.token", "DISCORD_TOKEN")
	v.BindEnv("discord.channel_id", "DISCORD_CHANNEL_ID")
	v.BindEnv("discord.application_id", "APPLICATION_ID")
	v.BindEnv("discord.guild_id", "GUILD_ID")

	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.file", "LOG_FILE")
}
