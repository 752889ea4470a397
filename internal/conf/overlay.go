package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Overlay is the optional YAML configuration file. Every field is optional;
// set fields override what the environment provided. Credentials stay in
// the environment on purpose.
type Overlay struct {
	Bot struct {
		Keyword         string `yaml:"keyword"`
		CommandPrefix   string `yaml:"command_prefix"`
		RelayBotID      string `yaml:"relay_bot_id"`
		DataPath        string `yaml:"data_path"`
		CooldownSeconds int    `yaml:"cooldown_seconds"`
		ProfileTTLSecs  int    `yaml:"profile_ttl_seconds"`
		LeaderboardSize int    `yaml:"leaderboard_size"`
	} `yaml:"bot"`
	API struct {
		Addr string `yaml:"addr"`
	} `yaml:"api"`
}

// LoadOverlay loads the YAML overlay from configPath, probing the usual
// locations when no path is given. A missing file is not an error; a file
// that exists but does not parse is.
func LoadOverlay(configPath string) (*Overlay, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/twobot.yaml",
			"./configs/twobot.yaml",
			"/etc/twobot/twobot.yaml",
		}
		if wd, err := os.Getwd(); err == nil {
			paths = append(paths, filepath.Join(wd, "configs", "twobot.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if raw, err := os.ReadFile(p); err == nil {
			data = raw
			loadedPath = p
			break
		}
	}

	if data == nil {
		return &Overlay{}, nil
	}

	fmt.Printf("[Config] Loading overlay from: %s\n", loadedPath)

	var overlay Overlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", loadedPath, err)
	}
	return &overlay, nil
}

// apply copies the overlay's set fields onto cfg.
func (o *Overlay) apply(cfg *Config) {
	if o.Bot.Keyword != "" {
		cfg.Bot.Keyword = o.Bot.Keyword
	}
	if o.Bot.CommandPrefix != "" {
		cfg.Bot.CommandPrefix = o.Bot.CommandPrefix
	}
	if o.Bot.RelayBotID != "" {
		cfg.Bot.RelayBotID = o.Bot.RelayBotID
	}
	if o.Bot.DataPath != "" {
		cfg.Bot.DataPath = o.Bot.DataPath
	}
	if o.Bot.CooldownSeconds > 0 {
		cfg.Bot.CooldownSeconds = o.Bot.CooldownSeconds
	}
	if o.Bot.ProfileTTLSecs > 0 {
		cfg.Bot.ProfileTTLSecs = o.Bot.ProfileTTLSecs
	}
	if o.Bot.LeaderboardSize > 0 {
		cfg.Bot.LeaderboardSize = o.Bot.LeaderboardSize
	}
	if o.API.Addr != "" {
		cfg.API.Addr = o.API.Addr
	}
}
