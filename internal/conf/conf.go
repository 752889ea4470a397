package conf

import (
	"os"
	"strconv"
	"time"
)

// Config represents application configuration.
type Config struct {
	// Feishu credentials
	Feishu FeishuConfig

	// Bot behavior (keyword, cooldown, relay remap)
	Bot BotConfig

	// Read-only query API
	API APIConfig
}

// FeishuConfig contains platform credentials and outbound throttles.
type FeishuConfig struct {
	AppID     string
	AppSecret string
	SendRPS   float64
	LookupRPS float64
}

// BotConfig contains trigger and command settings.
type BotConfig struct {
	Keyword         string
	CommandPrefix   string
	RelayBotID      string
	DataPath        string
	CooldownSeconds int
	ProfileTTLSecs  int
	LeaderboardSize int
}

// APIConfig contains query API settings.
type APIConfig struct {
	Addr string
}

// LoadFromEnv loads configuration from environment variables, then applies
// the optional YAML overlay on top.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Feishu: FeishuConfig{
			AppID:     os.Getenv("FEISHU_APP_ID"),
			AppSecret: os.Getenv("FEISHU_APP_SECRET"),
			SendRPS:   envFloat("TWO_SEND_RPS", 2),
			LookupRPS: envFloat("TWO_LOOKUP_RPS", 5),
		},
		Bot: BotConfig{
			Keyword:         os.Getenv("TWO_KEYWORD"),
			CommandPrefix:   os.Getenv("TWO_COMMAND_PREFIX"),
			RelayBotID:      os.Getenv("TWO_RELAY_BOT_ID"),
			DataPath:        envString("TWO_DATA_PATH", "twodata.json"),
			CooldownSeconds: envInt("TWO_COOLDOWN_SECONDS", 600),
			ProfileTTLSecs:  envInt("TWO_PROFILE_TTL_SECONDS", 900),
			LeaderboardSize: envInt("TWO_LEADERBOARD_SIZE", 5),
		},
		API: APIConfig{
			Addr: envString("TWO_API_ADDR", "0.0.0.0:2222"),
		},
	}

	overlay, err := LoadOverlay(os.Getenv("TWO_CONFIG_PATH"))
	if err != nil {
		return nil, err
	}
	overlay.apply(cfg)

	if cfg.Bot.CommandPrefix == "" && cfg.Bot.Keyword != "" {
		cfg.Bot.CommandPrefix = "!" + cfg.Bot.Keyword
	}

	return cfg, nil
}

// Cooldown returns the suppression window as a duration.
func (c *BotConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// ProfileTTL returns the profile cache freshness window as a duration.
func (c *BotConfig) ProfileTTL() time.Duration {
	return time.Duration(c.ProfileTTLSecs) * time.Second
}

// Validate validates the configuration. A partially-configured process must
// not start.
func (c *Config) Validate() error {
	if c.Feishu.AppID == "" || c.Feishu.AppSecret == "" {
		return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET", Message: "required"}
	}
	if c.Bot.Keyword == "" {
		return &ConfigError{Field: "TWO_KEYWORD", Message: "required"}
	}
	if c.Bot.DataPath == "" {
		return &ConfigError{Field: "TWO_DATA_PATH", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func envString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
