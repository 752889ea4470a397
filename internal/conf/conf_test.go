package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("FEISHU_APP_ID", "cli_test")
	t.Setenv("FEISHU_APP_SECRET", "secret")
	t.Setenv("TWO_KEYWORD", "two")
	t.Setenv("TWO_CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	// Clear anything the host environment might set so the asserted
	// defaults are really the built-in ones.
	for _, key := range []string{
		"TWO_COMMAND_PREFIX", "TWO_RELAY_BOT_ID", "TWO_DATA_PATH",
		"TWO_COOLDOWN_SECONDS", "TWO_PROFILE_TTL_SECONDS",
		"TWO_LEADERBOARD_SIZE", "TWO_API_ADDR",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Bot.CommandPrefix != "!two" {
		t.Errorf("CommandPrefix = %q, want derived !two", cfg.Bot.CommandPrefix)
	}
	if cfg.Bot.Cooldown() != 600*time.Second {
		t.Errorf("Cooldown = %v", cfg.Bot.Cooldown())
	}
	if cfg.Bot.ProfileTTL() != 900*time.Second {
		t.Errorf("ProfileTTL = %v", cfg.Bot.ProfileTTL())
	}
	if cfg.Bot.DataPath != "twodata.json" {
		t.Errorf("DataPath = %q", cfg.Bot.DataPath)
	}
	if cfg.API.Addr != "0.0.0.0:2222" {
		t.Errorf("API.Addr = %q", cfg.API.Addr)
	}
}

func TestLoadFromEnv_OverlayWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twobot.yaml")
	overlay := "bot:\n  keyword: three\n  cooldown_seconds: 60\napi:\n  addr: 127.0.0.1:9000\n"
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	t.Setenv("FEISHU_APP_ID", "cli_test")
	t.Setenv("FEISHU_APP_SECRET", "secret")
	t.Setenv("TWO_KEYWORD", "two")
	t.Setenv("TWO_CONFIG_PATH", path)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Bot.Keyword != "three" {
		t.Errorf("Keyword = %q, want overlay value", cfg.Bot.Keyword)
	}
	if cfg.Bot.CooldownSeconds != 60 {
		t.Errorf("CooldownSeconds = %d, want 60", cfg.Bot.CooldownSeconds)
	}
	if cfg.API.Addr != "127.0.0.1:9000" {
		t.Errorf("API.Addr = %q", cfg.API.Addr)
	}
}

func TestLoadFromEnv_BadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twobot.yaml")
	if err := os.WriteFile(path, []byte("bot: ["), 0644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	t.Setenv("TWO_CONFIG_PATH", path)
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected parse error for malformed overlay")
	}
}

func TestValidate_MissingFields(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty config")
	}

	cfg.Feishu.AppID = "cli_test"
	cfg.Feishu.AppSecret = "secret"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing keyword")
	}
}
